package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/rest"
	"github.com/okanmail/okan/pkg/rest/client"
	"github.com/okanmail/okan/pkg/rest/model"
	"github.com/okanmail/okan/pkg/server"
	"github.com/okanmail/okan/pkg/stringutil"
)

type checkCmd struct {
	local  bool
	output string
	rules  rulesFlags
	lang   string
	dir    string
}

func (*checkCmd) Name() string {
	return "check"
}

func (*checkCmd) Synopsis() string {
	return "generate the check list of a message"
}

func (*checkCmd) Usage() string {
	return `check [flags] <message.eml | ->:
	generate the check list of an RFC 5322 message, read from stdin when "-"
	exit status will be 1 if the message cannot be sent, otherwise 0
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.local, "local", false, "check in-process instead of calling the server")
	f.StringVar(&c.output, "output", "text", "output format: text or json")
	f.StringVar(&c.lang, "lang", "ja-JP", "check list language for -local: ja-JP or en-US")
	f.StringVar(&c.dir, "directory", "", "YAML address book for -local")
	c.rules.SetFlags(f)
}

func (c *checkCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := f.Arg(0)
	if name == "" {
		return usage("message file required")
	}
	if c.output != "text" && c.output != "json" {
		return usage("unknown output type: " + c.output)
	}
	source, err := readSource(name)
	if err != nil {
		return fatal("Couldn't read message", err)
	}

	var cl *model.JSONCheckListV1
	if c.local {
		cl, err = c.checkLocal(ctx, source)
	} else {
		cl, err = checkRemote(ctx, source)
	}
	if err != nil {
		return fatal("Check failed", err)
	}

	if c.output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(cl)
	} else {
		err = writeCheckList(os.Stdout, cl)
	}
	if err != nil {
		return fatal("Error", err)
	}
	if cl.CannotSend {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *checkCmd) checkLocal(ctx context.Context, source []byte) (*model.JSONCheckListV1, error) {
	conf := &config.Root{
		Lang:      c.lang,
		Directory: c.dir,
		Rules:     c.rules.Rules,
		Check:     config.Check{OversizeBytes: 10485760},
	}
	m, err := server.NewRuleManager(conf, nil, nil)
	if err != nil {
		return nil, err
	}
	res, err := m.Check(ctx, source)
	if err != nil {
		return nil, err
	}
	cl, err := rest.CheckListToJSON(res.CheckList, false)
	if err != nil {
		return nil, err
	}
	cl.Date = res.Date
	cl.NeedsConfirmation = res.NeedsConfirmation
	return cl, nil
}

func checkRemote(ctx context.Context, source []byte) (*model.JSONCheckListV1, error) {
	c, err := client.New(baseURL())
	if err != nil {
		return nil, err
	}
	cl, err := c.CheckMessage(ctx, source)
	if err != nil {
		return nil, err
	}
	return cl.JSONCheckListV1, nil
}

func readSource(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

// writeCheckList renders cl for a terminal, marking checked rows with [x].
func writeCheckList(w io.Writer, cl *model.JSONCheckListV1) error {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Sender:  %s\n", cl.Sender)
	fmt.Fprintf(b, "Subject: %s\n", cl.Subject)
	fmt.Fprintf(b, "Type:    %s\n", cl.MailType)
	if cl.CannotSend {
		fmt.Fprintf(b, "\nCANNOT SEND: %s\n", cl.CannotSendReason)
	}
	if len(cl.Alerts) > 0 {
		b.WriteString("\nAlerts:\n")
		for _, a := range cl.Alerts {
			mark := " "
			if a.Important {
				mark = "!"
			}
			fmt.Fprintf(b, "  %s %s %s\n", checkbox(a.Checked), mark, a.Message)
		}
	}
	for _, bucket := range []struct {
		label string
		rows  []*model.JSONAddressV1
	}{{"To", cl.To}, {"Cc", cl.Cc}, {"Bcc", cl.Bcc}} {
		if len(bucket.rows) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s:\n", bucket.label)
		for _, r := range bucket.rows {
			scope := "internal"
			if r.External {
				scope = "external"
			}
			fmt.Fprintf(b, "  %s %s (%s)\n", checkbox(r.Checked), r.Display, scope)
		}
	}
	if len(cl.Attachments) > 0 {
		b.WriteString("\nAttachments:\n")
		for _, a := range cl.Attachments {
			fmt.Fprintf(b, "  [ ] %s\n", stringutil.JoinNonEmpty([]string{
				a.FileName, a.Size, flagged(a.Dangerous, "dangerous"), flagged(a.TooBig, "too big"),
			}, " "))
		}
	}
	if cl.NeedsConfirmation {
		b.WriteString("\nReview required before sending.\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func flagged(set bool, label string) string {
	if set {
		return label
	}
	return ""
}
