// Package web provides the plumbing for okan's RESTful API.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/gate"
	"github.com/okanmail/okan/pkg/metric"
	"github.com/okanmail/okan/pkg/msghub"
	"github.com/okanmail/okan/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

var (
	// msgHub holds a reference to the check result pub/sub system.
	msgHub  *msghub.Hub
	manager gate.Manager

	// Router is shared between the rest and webui packages.  It sends incoming requests to the
	// correct handler function.
	Router = mux.NewRouter()

	rootConfig *config.Root
)

// Server defines an instance of the web server.
type Server struct {
	// TODO Refactor globals into this struct.
	http     *http.Server
	listener net.Listener
	notify   chan error
}

// NewServer sets up things for unit tests or the Start() method.
func NewServer(conf *config.Root, mm gate.Manager, mh *msghub.Hub) *Server {
	rootConfig = conf

	// NewContext() will use this Manager for the web handlers.
	msgHub = mh
	manager = mm

	prefix := stringutil.MakePathPrefixer(conf.Web.BasePath)
	Router.Path(prefix("/metrics")).Handler(metric.Handler()).Name("Metrics").Methods("GET")
	Router.NotFoundHandler = noMatchHandler(http.StatusNotFound, "No route matches URI path")
	Router.MethodNotAllowedHandler = MethodNotAllowed()

	s := &Server{
		http: &http.Server{
			Addr:         conf.Web.Addr,
			Handler:      requestLoggingWrapper(Router),
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		notify: make(chan error, 1),
	}

	return s
}

// Start begins listening for HTTP requests.  readyFunc is called once the listener is open.
func (s *Server) Start(ctx context.Context, readyFunc func()) {
	slog := log.With().Str("module", "web").Str("phase", "startup").Str("addr", s.http.Addr).
		Logger()

	// We don't use ListenAndServe because it lacks a way to close the listener.
	var err error
	s.listener, err = net.Listen("tcp", s.http.Addr)
	if err != nil {
		slog.Error().Err(err).Msg("HTTP failed to start TCP listener")
		s.notify <- err
		close(s.notify)
		return
	}

	slog.Info().Msg("HTTP listening on TCP")
	readyFunc()

	// Listener go routine.
	go s.serve(ctx)

	// Wait for shutdown.
	<-ctx.Done()
	log.Debug().Str("module", "web").Str("phase", "shutdown").Msg("HTTP server shutting down on request")

	// Closing the listener will cause the serve() go routine to exit.
	if err := s.listener.Close(); err != nil {
		log.Debug().Str("module", "web").Str("phase", "shutdown").Err(err).
			Msg("Failed to close HTTP listener")
	}
}

// serve begins serving HTTP requests.
func (s *Server) serve(ctx context.Context) {
	// server.Serve blocks until we close the listener.
	err := s.http.Serve(s.listener)

	select {
	case <-ctx.Done():
		// Nop
	default:
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error().Str("module", "web").Str("phase", "runtime").Err(err).Msg("HTTP server failed")
		s.notify <- err
		close(s.notify)
	}
}

// Notify allows the running Web server to be monitored for a fatal error.
func (s *Server) Notify() <-chan error {
	return s.notify
}
