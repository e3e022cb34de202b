package webui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/rules"
	"github.com/okanmail/okan/pkg/server/web"
	"github.com/okanmail/okan/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = "From: alice@example.com\r\n" +
	"To: bob@client.com\r\n" +
	"Subject: Hello\r\n" +
	"\r\n" +
	"Hi Bob\r\n"

func setupWebUI(t *testing.T) *test.ManagerStub {
	t.Helper()
	mm := test.NewManager(&rules.Snapshot{})
	conf := &config.Root{
		Lang:  "en-US",
		Rules: config.Rules{Path: "rules", Format: config.FormatCSV, Encoding: "shift_jis"},
		Check: config.Check{OversizeBytes: 10485760, SkipConfirmAllWhite: true},
		Web:   config.Web{Addr: "127.0.0.1:9000", MonitorVisible: true},
		Storage: config.Storage{
			Type:            "memory",
			MaxRecords:      50,
			RetentionPeriod: 24 * time.Hour,
		},
	}
	SetupRoutes(web.Router)
	web.NewServer(conf, mm, nil)
	return mm
}

func TestRootStatus(t *testing.T) {
	mm := setupWebUI(t)
	_, err := mm.Check(context.Background(), []byte(source))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()
	web.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"version": "",
		"build-date": "",
		"web-listener": "127.0.0.1:9000",
		"lang": "en-US",
		"monitor-visible": true,
		"record-count": 1,
		"rules-config": {"path": "rules", "format": "csv", "encoding": "shift_jis"},
		"check-config": {
			"oversize-bytes": 10485760,
			"oversize-size": "10 MiB",
			"skip-confirm-same-domain": false,
			"skip-confirm-all-white": true,
			"auto-check-same-domain": false
		},
		"storage-config": {"max-records": 50, "store-type": "memory", "retention-period": "24h0m0s"}
	}`, w.Body.String())
}

func TestRootIndexRedirects(t *testing.T) {
	setupWebUI(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	web.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/status", w.Header().Get("Location"))
}
