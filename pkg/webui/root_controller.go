package webui

import (
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/server/web"
)

// RootIndex sends browsers on to the status page.
func RootIndex(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	http.Redirect(w, req, web.Reverse("RootStatus"), http.StatusSeeOther)
	return nil
}

// RootStatus serves the okan configuration and audit trail status.
func RootStatus(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	root := ctx.RootConfig
	records, err := ctx.Manager.ListRecords(0)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	retention := "disabled"
	if root.Storage.RetentionPeriod > 0 {
		retention = root.Storage.RetentionPeriod.String()
	}

	return web.RenderJSON(w, http.StatusOK, &jsonServerConfig{
		Version:        config.Version,
		BuildDate:      config.BuildDate,
		WebListener:    root.Web.Addr,
		Lang:           root.Lang,
		MonitorVisible: root.Web.MonitorVisible,
		RecordCount:    len(records),
		RulesConfig: jsonRulesConfig{
			Path:     root.Rules.Path,
			Format:   root.Rules.Format,
			Encoding: root.Rules.Encoding,
		},
		CheckConfig: jsonCheckConfig{
			OversizeBytes:         root.Check.OversizeBytes,
			OversizeSize:          humanize.IBytes(uint64(root.Check.OversizeBytes)),
			SkipConfirmSameDomain: root.Check.SkipConfirmSameDomain,
			SkipConfirmAllWhite:   root.Check.SkipConfirmAllWhite,
			AutoCheckSameDomain:   root.Check.AutoCheckSameDomain,
		},
		StorageConfig: jsonStorageConfig{
			MaxRecords:      root.Storage.MaxRecords,
			StoreType:       root.Storage.Type,
			RetentionPeriod: retention,
		},
	})
}
