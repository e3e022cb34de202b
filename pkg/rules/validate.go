package rules

import (
	"fmt"
	"strings"

	"github.com/okanmail/okan/pkg/message"
	"github.com/okanmail/okan/pkg/policy"
)

// Finding describes a suspicious rule row.
type Finding struct {
	Table   string // Table file name, such as Whitelist.csv.
	Row     int    // 1-based row number.
	Problem string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: %s", f.Table, f.Row, f.Problem)
}

// Validate lints the snapshot.  None of the findings prevent the rules from being used; they point
// at rows that match everything, can never match, or add unusable recipients.
func (s *Snapshot) Validate() []Finding {
	var fs []Finding
	add := func(table string, i int, format string, args ...any) {
		fs = append(fs, Finding{Table: table, Row: i + 1, Problem: fmt.Sprintf(format, args...)})
	}
	for i, r := range s.Whitelist {
		if r.Fragment == "" {
			add(WhitelistFile, i, "empty fragment whitelists every recipient")
		}
	}
	for i, r := range s.AlertAddresses {
		if r.Fragment == "" {
			add(AlertAddressFile, i, "empty fragment alerts on every recipient")
		}
	}
	for i, r := range s.AlertKeywords {
		if r.Keyword == "" {
			add(AlertKeywordFile, i, "empty keyword matches every body")
		}
		if r.Message == "" {
			add(AlertKeywordFile, i, "empty alert message")
		}
	}
	for i, r := range s.AutoCcBccKeywords {
		if r.Keyword == "" {
			add(AutoCcBccKeywordFile, i, "empty keyword matches every body")
		}
		for _, p := range checkAutoAdd(r.Class, r.Target) {
			add(AutoCcBccKeywordFile, i, "%s", p)
		}
	}
	for i, r := range s.AutoCcBccRecipients {
		if r.Trigger == "" {
			add(AutoCcBccRecipientFile, i, "empty trigger matches every recipient")
		}
		for _, p := range checkAutoAdd(r.Class, r.Target) {
			add(AutoCcBccRecipientFile, i, "%s", p)
		}
	}
	for i, r := range s.NameAndDomains {
		if r.Name == "" {
			add(NameAndDomainFile, i, "empty name matches every body")
		}
		if !strings.HasPrefix(r.Domain, "@") {
			add(NameAndDomainFile, i, "domain %q does not start with @ and will never match", r.Domain)
		}
	}
	return fs
}

func checkAutoAdd(class message.RecipientClass, target string) []string {
	var ps []string
	if class != message.Cc && class != message.Bcc {
		ps = append(ps, fmt.Sprintf("class %v is not CC or BCC", class))
	}
	if _, _, err := policy.ParseEmailAddress(target); err != nil {
		ps = append(ps, fmt.Sprintf("target %q: %v", target, err))
	}
	return ps
}
