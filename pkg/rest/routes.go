package rest

import (
	"github.com/gorilla/mux"
	"github.com/okanmail/okan/pkg/server/web"
)

// SetupRoutes populates the routes for the REST interface
func SetupRoutes(r *mux.Router) {
	r.MethodNotAllowedHandler = web.MethodNotAllowed()

	// API v1
	r.Path("/v1/checklist").Handler(
		web.Handler(CheckListV1)).Name("CheckListV1").Methods("POST")
	r.Path("/v1/audit").Handler(
		web.Handler(AuditListV1)).Name("AuditListV1").Methods("GET")
	r.Path("/v1/audit").Handler(
		web.Handler(AuditPurgeV1)).Name("AuditPurgeV1").Methods("DELETE")
	r.Path("/v1/audit/{id}").Handler(
		web.Handler(AuditShowV1)).Name("AuditShowV1").Methods("GET")
	r.Path("/v1/audit/{id}").Handler(
		web.Handler(AuditDeleteV1)).Name("AuditDeleteV1").Methods("DELETE")
	r.Path("/v1/monitor/checks").Handler(
		web.Handler(MonitorChecksV1)).Name("MonitorChecksV1").Methods("GET")
}
