// Package webui serves okan's browser facing status pages.
package webui

import (
	"github.com/gorilla/mux"
	"github.com/okanmail/okan/pkg/server/web"
)

// SetupRoutes populates routes for the webui into the provided Router.
func SetupRoutes(r *mux.Router) {
	r.Path("/").Handler(
		web.Handler(RootIndex)).Name("RootIndex").Methods("GET")
	r.Path("/status").Handler(
		web.Handler(RootStatus)).Name("RootStatus").Methods("GET")
}
