// Package main implements a command line client for okan
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"

	"github.com/google/subcommands"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/rules"
	"github.com/okanmail/okan/pkg/server"
)

var host = flag.String("host", "localhost", "host/IP of okan server")
var port = flag.Uint("port", 9000, "HTTP port of okan server")

// Allow subcommands to accept regular expressions as flags
type regexFlag struct {
	*regexp.Regexp
}

func (r *regexFlag) Defined() bool {
	return r.Regexp != nil
}

func (r *regexFlag) Set(pattern string) error {
	if pattern == "" {
		r.Regexp = nil
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r.Regexp = re
	return nil
}

func (r *regexFlag) String() string {
	if r.Regexp == nil {
		return ""
	}
	return r.Regexp.String()
}

// regexFlag must implement flag.Value
var _ flag.Value = &regexFlag{}

// rulesFlags locates a rule table source on the local disk.
type rulesFlags struct {
	config.Rules
}

func (r *rulesFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.Path, "rules", "rules", "rule CSV directory or YAML file")
	f.StringVar(&r.Format, "format", config.FormatCSV, "rule format: csv or yaml")
	f.StringVar(&r.Encoding, "encoding", "utf-8", "CSV encoding: utf-8 or shift_jis")
}

func (r *rulesFlags) load(ctx context.Context) (*rules.Snapshot, error) {
	p, err := server.RulesProvider(r.Rules)
	if err != nil {
		return nil, err
	}
	return p.Load(ctx)
}

func main() {
	// Important top-level flags
	subcommands.ImportantFlag("host")
	subcommands.ImportantFlag("port")

	// Setup standard helpers
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	// Setup my commands
	subcommands.Register(&checkCmd{}, "")
	subcommands.Register(&auditCmd{}, "")
	subcommands.Register(&lintCmd{}, "rules")
	subcommands.Register(&exportCmd{}, "rules")

	// Parse and execute
	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

func baseURL() string {
	return "http://" + net.JoinHostPort(*host, strconv.FormatUint(uint64(*port), 10))
}

func fatal(msg string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return subcommands.ExitFailure
}

func usage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	return subcommands.ExitUsageError
}
