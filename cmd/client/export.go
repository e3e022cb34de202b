package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/rules"
)

type exportCmd struct {
	rules    rulesFlags
	to       string
	encoding string
}

func (*exportCmd) Name() string {
	return "export"
}

func (*exportCmd) Synopsis() string {
	return "convert rule tables between CSV and YAML"
}

func (*exportCmd) Usage() string {
	return `export [flags] <destination | ->:
	write the rule tables as a CSV directory, or as a YAML file ("-" for stdout)
`
}

func (e *exportCmd) SetFlags(f *flag.FlagSet) {
	e.rules.SetFlags(f)
	f.StringVar(&e.to, "to", config.FormatYAML, "destination format: csv or yaml")
	f.StringVar(&e.encoding, "to-encoding", "utf-8", "destination CSV encoding: utf-8 or shift_jis")
}

func (e *exportCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dest := f.Arg(0)
	if dest == "" {
		return usage("destination required")
	}
	snap, err := e.rules.load(ctx)
	if err != nil {
		return fatal("Couldn't load rules", err)
	}

	switch e.to {
	case config.FormatCSV:
		err = rules.WriteCSV(dest, snap, e.encoding)
	case config.FormatYAML:
		err = writeYAML(dest, snap)
	default:
		return usage("unknown destination format: " + e.to)
	}
	if err != nil {
		return fatal("Export failed", err)
	}
	return subcommands.ExitSuccess
}

func writeYAML(dest string, snap *rules.Snapshot) (err error) {
	if dest == "-" {
		return rules.WriteYAML(os.Stdout, snap)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return rules.WriteYAML(f, snap)
}
