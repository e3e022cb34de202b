// Package server wires okan's services together.
package server

import (
	"context"
	"fmt"

	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/extension/luahost"
	"github.com/okanmail/okan/pkg/gate"
	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/message"
	"github.com/okanmail/okan/pkg/msghub"
	"github.com/okanmail/okan/pkg/rest"
	"github.com/okanmail/okan/pkg/rules"
	"github.com/okanmail/okan/pkg/server/web"
	"github.com/okanmail/okan/pkg/storage"
	"github.com/okanmail/okan/pkg/stringutil"
	"github.com/okanmail/okan/pkg/webui"
	"github.com/rs/zerolog/log"
)

// Services holds the configured services.
type Services struct {
	ExtHost          *extension.Host
	LuaHost          *luahost.Host
	Manager          *gate.RuleManager
	MsgHub           *msghub.Hub
	RetentionScanner *storage.RetentionScanner
	WebServer        *web.Server
}

// Prod wires up the production okan environment.
func Prod(shutdownChan chan bool, conf *config.Root) (*Services, error) {
	// Configure extensions.
	extHost := extension.NewHost()
	luaHost, err := luahost.New(log.Logger, conf.Lua, extHost)
	if err != nil {
		return nil, fmt.Errorf("lua initialization failed: %w", err)
	}

	// Configure storage.
	store, err := storage.FromConfig(conf.Storage, extHost)
	if err != nil {
		return nil, err
	}

	msgHub := msghub.New(conf.Web.MonitorHistory, extHost)
	manager, err := NewRuleManager(conf, store, extHost)
	if err != nil {
		return nil, err
	}

	// Start Retention scanner.
	retentionScanner := storage.NewRetentionScanner(conf.Storage, store, shutdownChan)
	retentionScanner.Start()

	// Configure routes and HTTP server.
	prefix := stringutil.MakePathPrefixer(conf.Web.BasePath)
	webServer := web.NewServer(conf, manager, msgHub)
	rest.SetupRoutes(web.Router.PathPrefix(prefix("/api/")).Subrouter())
	webui.SetupRoutes(web.Router.PathPrefix(prefix("/")).Subrouter())

	return &Services{
		ExtHost:          extHost,
		LuaHost:          luaHost,
		Manager:          manager,
		MsgHub:           msgHub,
		RetentionScanner: retentionScanner,
		WebServer:        webServer,
	}, nil
}

// NewRuleManager builds a check list manager from conf.  store and extHost may be nil.
func NewRuleManager(
	conf *config.Root,
	store storage.Store,
	extHost *extension.Host,
) (*gate.RuleManager, error) {
	provider, err := RulesProvider(conf.Rules)
	if err != nil {
		return nil, err
	}
	m := &gate.RuleManager{
		Rules:       provider,
		Text:        l10n.For(conf.Lang).WithAttachmentWords(conf.Check.AttachmentWords),
		Store:       store,
		ExtHost:     extHost,
		CheckConfig: conf.Check,
	}
	if conf.Directory != "" {
		book, err := message.LoadBook(conf.Directory)
		if err != nil {
			return nil, fmt.Errorf("loading directory %v: %w", conf.Directory, err)
		}
		m.Directory = book
	}
	return m, nil
}

// RulesProvider returns the rule table source described by conf.
func RulesProvider(conf config.Rules) (rules.Provider, error) {
	switch conf.Format {
	case config.FormatCSV, "":
		return &rules.CSVDir{Path: conf.Path, Encoding: conf.Encoding}, nil
	case config.FormatYAML:
		return &rules.YAMLFile{Path: conf.Path}, nil
	}
	return nil, fmt.Errorf("unknown rules format %q", conf.Format)
}

// Start the services.  readyFunc is called once the web server is listening.
func (s *Services) Start(ctx context.Context, readyFunc func()) {
	go s.MsgHub.Start(ctx)
	go s.WebServer.Start(ctx, readyFunc)
}

// Notify merges the error notification channels of all fallible services, allowing the process to
// be shutdown if needed.
func (s *Services) Notify() <-chan error {
	return s.WebServer.Notify()
}
