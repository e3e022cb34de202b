package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/gate"
	"github.com/okanmail/okan/pkg/msghub"
	"github.com/okanmail/okan/pkg/server/web"
)

func testRestGet(url string) (*httptest.ResponseRecorder, error) {
	return testRestRequest("GET", url, nil, "")
}

func testRestPost(url string, contentType string, body string) (*httptest.ResponseRecorder, error) {
	return testRestRequest("POST", url, strings.NewReader(body), contentType)
}

func testRestDelete(url string) (*httptest.ResponseRecorder, error) {
	return testRestRequest("DELETE", url, nil, "")
}

func testRestRequest(
	method string,
	url string,
	body io.Reader,
	contentType string,
) (*httptest.ResponseRecorder, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	web.Router.ServeHTTP(w, req)
	return w, nil
}

// setupWebServer registers the REST routes and a running msghub fed by a fresh extension host.
func setupWebServer(t *testing.T, mm gate.Manager) (*msghub.Hub, *extension.Host) {
	t.Helper()
	cfg := &config.Root{
		Web: config.Web{
			MonitorVisible: true,
			MonitorHistory: 10,
			SanitizeHTML:   true,
			MaxBodyBytes:   4096,
		},
	}
	extHost := extension.NewHost()
	hub := msghub.New(cfg.Web.MonitorHistory, extHost)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Start(ctx)

	SetupRoutes(web.Router.PathPrefix("/api/").Subrouter())
	web.NewServer(cfg, mm, hub)

	return hub, extHost
}

func decodedBoolEquals(t *testing.T, json interface{}, path string, want bool) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(bool); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

func decodedNumberEquals(t *testing.T, json interface{}, path string, want float64) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	got, ok := val.(float64)
	if ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T) %v (int64),\nwant: %v / %v",
		path, val, val, int64(got), want, int64(want))
}

func decodedStringEquals(t *testing.T, json interface{}, path string, want string) {
	t.Helper()
	els := strings.Split(path, "/")
	val, msg := getDecodedPath(json, els...)
	if msg != "" {
		t.Errorf("JSON result%s", msg)
		return
	}
	if got, ok := val.(string); ok {
		if got == want {
			return
		}
	}
	t.Errorf("JSON result/%s == %v (%T), want: %v", path, val, val, want)
}

// getDecodedPath recursively navigates the specified path, returing the requested element.  If
// something goes wrong, the returned string will contain an explanation.
//
// Named path elements require the parent element to be a map[string]interface{}, numbers in square
// brackets require the parent element to be a []interface{}.
//
//	getDecodedPath(o, "to", "[1]", "display")
//
// is equivalent to the JavaScript:
//
//	o.to[1].display
func getDecodedPath(o interface{}, path ...string) (interface{}, string) {
	if len(path) == 0 {
		return o, ""
	}
	if o == nil {
		return nil, " is nil"
	}
	key := path[0]
	present := false
	var val interface{}
	if key[0] == '[' {
		// Expecting slice.
		index, err := strconv.Atoi(strings.Trim(key, "[]"))
		if err != nil {
			return nil, "/" + key + " is not a slice index"
		}
		oslice, ok := o.([]interface{})
		if !ok {
			return nil, " is not a slice"
		}
		if index >= len(oslice) {
			return nil, "/" + key + " is out of bounds"
		}
		val, present = oslice[index], true
	} else {
		// Expecting map.
		omap, ok := o.(map[string]interface{})
		if !ok {
			return nil, " is not a map"
		}
		val, present = omap[key]
	}
	if !present {
		return nil, "/" + key + " is missing"
	}
	result, msg := getDecodedPath(val, path[1:]...)
	if msg != "" {
		return nil, "/" + key + msg
	}
	return result, ""
}
