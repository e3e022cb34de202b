package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// RenderJSON sends data as a JSON document with the given status code.
func RenderJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Expires", "-1")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Reverse routing function.  things are route variable name and value pairs.
func Reverse(name string, things ...any) string {
	// Convert the things to strings.
	strs := make([]string, len(things))
	for i, th := range things {
		strs[i] = fmt.Sprint(th)
	}
	// Grab the route.
	route := Router.Get(name)
	if route == nil {
		log.Error().Str("module", "web").Str("name", name).Msg("Unknown route")
		return "/ROUTE-ERROR"
	}
	u, err := route.URL(strs...)
	if err != nil {
		log.Error().Str("module", "web").Str("name", name).Err(err).
			Msg("Failed to reverse route")
		return "/ROUTE-ERROR"
	}
	return u.Path
}
