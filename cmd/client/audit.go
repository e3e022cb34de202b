package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/okanmail/okan/pkg/rest/client"
	"github.com/okanmail/okan/pkg/stringutil"
)

type auditCmd struct {
	output  string
	outFunc func(headers []*client.RecordHeader) error
	delete  bool
	purge   bool
	limit   int
	// match criteria
	sender  regexFlag
	subject regexFlag
	blocked bool
	maxAge  time.Duration
}

func (*auditCmd) Name() string {
	return "audit"
}

func (*auditCmd) Synopsis() string {
	return "output audit records matching criteria"
}

func (*auditCmd) Usage() string {
	return `audit [flags]:
	output audit records matching all specified criteria, newest first
	exit status will be 1 if no matches were found, otherwise 0
`
}

func (a *auditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.output, "output", "id", "output format: id, summary, or json")
	f.BoolVar(&a.delete, "delete", false, "delete matched records after output")
	f.BoolVar(&a.purge, "purge", false, "delete every record and exit")
	f.IntVar(&a.limit, "limit", 0, "examine at most this many of the newest records")
	f.Var(&a.sender, "sender", "sender address matching regexp")
	f.Var(&a.subject, "subject", "Subject matching regexp")
	f.BoolVar(&a.blocked, "blocked", false, "only match checks that blocked sending")
	f.DurationVar(
		&a.maxAge, "maxage", 0,
		"Matches must have been checked in this time frame (ex: \"10s\", \"5m\")")
}

func (a *auditCmd) Execute(
	ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// Select output function
	switch a.output {
	case "id":
		a.outFunc = outputID
	case "summary":
		a.outFunc = outputSummary
	case "json":
		a.outFunc = outputJSON
	default:
		return usage("unknown output type: " + a.output)
	}
	// Setup REST client
	c, err := client.New(baseURL())
	if err != nil {
		return fatal("Couldn't build client", err)
	}
	if a.purge {
		if err := c.PurgeRecords(ctx); err != nil {
			return fatal("Purge REST call failed", err)
		}
		return subcommands.ExitSuccess
	}
	// Get list
	headers, err := c.ListRecords(ctx, a.limit)
	if err != nil {
		return fatal("List REST call failed", err)
	}
	// Find matches
	matches := make([]*client.RecordHeader, 0, len(headers))
	for _, h := range headers {
		if a.match(h) {
			matches = append(matches, h)
		}
	}
	// Return error status if no matches
	if len(matches) == 0 {
		return subcommands.ExitFailure
	}
	// Output matches
	if err := a.outFunc(matches); err != nil {
		return fatal("Error", err)
	}
	if a.delete {
		// Delete matches
		for _, h := range matches {
			if err := h.Delete(ctx); err != nil {
				return fatal("Delete REST call failed", err)
			}
		}
	}
	return subcommands.ExitSuccess
}

// match returns true if header matches all defined criteria
func (a *auditCmd) match(header *client.RecordHeader) bool {
	if a.maxAge > 0 {
		if time.Since(header.Date) > a.maxAge {
			return false
		}
	}
	if a.blocked && !header.CannotSend {
		return false
	}
	if a.subject.Defined() {
		if !a.subject.MatchString(header.Subject) {
			return false
		}
	}
	if a.sender.Defined() {
		if !a.sender.MatchString(header.Sender) {
			return false
		}
	}
	return true
}

func outputID(headers []*client.RecordHeader) error {
	for _, h := range headers {
		fmt.Println(h.ID)
	}
	return nil
}

func outputSummary(headers []*client.RecordHeader) error {
	for _, h := range headers {
		status := "ok"
		switch {
		case h.CannotSend:
			status = "blocked: " + h.Reason
		case h.NeedsConfirmation:
			status = "review"
		}
		fmt.Printf("%s\t%s\t%s\t%d alerts\t%s\n",
			h.ID, h.Date.Format(time.RFC3339), stringutil.Ellipsis(h.Subject, 40), h.AlertCount, status)
	}
	return nil
}

func outputJSON(headers []*client.RecordHeader) error {
	jsonEncoder := json.NewEncoder(os.Stdout)
	jsonEncoder.SetEscapeHTML(false)
	jsonEncoder.SetIndent("", "  ")
	return jsonEncoder.Encode(headers)
}
