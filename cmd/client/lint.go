package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type lintCmd struct {
	rules rulesFlags
}

func (*lintCmd) Name() string {
	return "lint"
}

func (*lintCmd) Synopsis() string {
	return "report suspicious rule table rows"
}

func (*lintCmd) Usage() string {
	return `lint [flags]:
	load the rule tables and report rows that match everything, never match, or add unusable
	recipients; exit status will be 1 if anything was reported, otherwise 0
`
}

func (l *lintCmd) SetFlags(f *flag.FlagSet) {
	l.rules.SetFlags(f)
}

func (l *lintCmd) Execute(
	ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	snap, err := l.rules.load(ctx)
	if err != nil {
		return fatal("Couldn't load rules", err)
	}
	findings := snap.Validate()
	for _, f := range findings {
		fmt.Println(f)
	}
	if len(findings) > 0 {
		return subcommands.ExitFailure
	}
	fmt.Printf("%d rows OK\n", snap.Len())
	return subcommands.ExitSuccess
}
