package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	prefix      = "okan"
	tableFormat = `Okan is configured via the environment. The following environment
variables can be used:

KEY	DEFAULT	REQUIRED	DESCRIPTION
{{range .}}{{usage_key .}}	{{usage_default .}}	{{usage_required .}}	{{usage_description .}}
{{end}}`
)

var (
	// Version of this build, set by main
	Version = ""

	// BuildDate for this build, set by main
	BuildDate = ""
)

// Rule table formats.
const (
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Root wraps all other configurations.
type Root struct {
	LogLevel  string `required:"true" default:"info" desc:"debug, info, warn, or error"`
	Lang      string `required:"true" default:"ja-JP" desc:"Check list language: ja-JP or en-US"`
	Directory string `desc:"YAML address book used to resolve recipients"`
	Rules     Rules
	Check     Check
	Lua       Lua
	Web       Web
	Storage   Storage
}

// Rules contains the rule table source configuration.
type Rules struct {
	Path     string `required:"true" default:"rules" desc:"Rule CSV directory or YAML file"`
	Format   string `required:"true" default:"csv" desc:"csv or yaml"`
	Encoding string `required:"true" default:"utf-8" desc:"CSV encoding: utf-8 or shift_jis"`
}

// Check contains check list generation settings.
type Check struct {
	AttachmentWords       []string `desc:"Body words implying an attachment, overrides the language default"`
	OversizeBytes         int64    `required:"true" default:"10485760" desc:"Attachment size reported as too big"`
	SkipConfirmSameDomain bool     `default:"false" desc:"No review when all recipients share the sender domain"`
	SkipConfirmAllWhite   bool     `default:"false" desc:"No review when all recipients are whitelisted"`
	AutoCheckSameDomain   bool     `default:"false" desc:"Pre-check recipients in the sender domain"`
}

// Lua contains the Lua extension host configuration.
type Lua struct {
	Path string `required:"true" default:"okan.lua" desc:"Lua script path"`
}

// Web contains the HTTP server configuration.
type Web struct {
	Addr           string `required:"true" default:"0.0.0.0:9000" desc:"Web server IP4 host:port"`
	BasePath       string `default:"" desc:"Base path prefix for URLs"`
	MonitorVisible bool   `required:"true" default:"true" desc:"Enable the check monitor?"`
	MonitorHistory int    `required:"true" default:"30" desc:"Monitor remembered checks"`
	SanitizeHTML   bool   `required:"true" default:"true" desc:"Sanitize HTML bodies in API responses?"`
	MaxBodyBytes   int64  `required:"true" default:"26214400" desc:"Largest message accepted for checking"`
}

// Storage contains the audit record store configuration.
type Storage struct {
	Type            string            `required:"true" default:"memory" desc:"Storage impl: memory or sqlite"`
	Params          map[string]string `desc:"Storage impl parameters, see docs."`
	RetentionPeriod time.Duration     `required:"true" default:"720h" desc:"Duration to retain records"`
	RetentionSleep  time.Duration     `required:"true" default:"50ms" desc:"Duration to sleep between batches"`
	MaxRecords      int               `required:"true" default:"1000" desc:"Maximum records kept in memory"`
}

// Process loads and parses configuration from the environment.
func Process() (*Root, error) {
	c := &Root{}
	err := envconfig.Process(prefix, c)
	if err != nil {
		return c, err
	}
	return c, c.validate()
}

func (c *Root) validate() error {
	c.Rules.Format = strings.ToLower(c.Rules.Format)
	switch c.Rules.Format {
	case FormatCSV, FormatYAML:
	default:
		return fmt.Errorf("unknown rules format %q", c.Rules.Format)
	}
	if c.Check.OversizeBytes <= 0 {
		return fmt.Errorf("oversize bytes must be positive, got %v", c.Check.OversizeBytes)
	}
	return nil
}

// Usage prints out the envconfig usage to Stderr.
func Usage() {
	tabs := tabwriter.NewWriter(os.Stderr, 1, 0, 4, ' ', 0)
	if err := envconfig.Usagef(prefix, &Root{}, tabs, tableFormat); err != nil {
		log.Fatalf("Unable to parse env config: %v", err)
	}
	tabs.Flush()
}
