// Package rules holds the rule tables consulted when a check list is generated, and the providers
// that load them.
package rules

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/okanmail/okan/pkg/message"
)

// ErrUnknownTable is returned when a table name does not match any rule table.
var ErrUnknownTable = errors.New("unknown rule table")

// Whitelist marks every recipient whose address contains Fragment as pre-approved.
type Whitelist struct {
	Fragment string `yaml:"fragment"`
}

// AlertAddress raises an alert for recipients whose address contains Fragment, and blocks sending
// when CannotSend is set.
type AlertAddress struct {
	Fragment   string `yaml:"fragment"`
	CannotSend bool   `yaml:"cannotSend,omitempty"`
}

// AlertKeyword raises Message as an alert when the body contains Keyword, and blocks sending when
// CannotSend is set.
type AlertKeyword struct {
	Keyword    string `yaml:"keyword"`
	Message    string `yaml:"message"`
	CannotSend bool   `yaml:"cannotSend,omitempty"`
}

// AutoCcBccKeyword adds Target as a Cc or Bcc recipient when the body contains Keyword.
type AutoCcBccKeyword struct {
	Keyword string                 `yaml:"keyword"`
	Class   message.RecipientClass `yaml:"class"`
	Target  string                 `yaml:"target"`
}

// AutoCcBccRecipient adds Target as a Cc or Bcc recipient when any recipient address contains
// Trigger.
type AutoCcBccRecipient struct {
	Trigger string                 `yaml:"trigger"`
	Class   message.RecipientClass `yaml:"class"`
	Target  string                 `yaml:"target"`
}

// NameAndDomain associates a name that may appear in a body with a recipient domain, such as
// "Acme" with "@acme.com".
type NameAndDomain struct {
	Name   string `yaml:"name"`
	Domain string `yaml:"domain"`
}

// Snapshot is an immutable set of rule tables.  Row order is significant.
type Snapshot struct {
	Whitelist           []Whitelist          `yaml:"whitelist"`
	AlertAddresses      []AlertAddress       `yaml:"alertAddresses"`
	AlertKeywords       []AlertKeyword       `yaml:"alertKeywords"`
	AutoCcBccKeywords   []AutoCcBccKeyword   `yaml:"autoCcBccKeywords"`
	AutoCcBccRecipients []AutoCcBccRecipient `yaml:"autoCcBccRecipients"`
	NameAndDomains      []NameAndDomain      `yaml:"nameAndDomains"`
}

// Len returns the total number of rows across all tables.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Whitelist) + len(s.AlertAddresses) + len(s.AlertKeywords) +
		len(s.AutoCcBccKeywords) + len(s.AutoCcBccRecipients) + len(s.NameAndDomains)
}

// checkAutoClasses requires every auto-add row to add as Cc or Bcc.
func (s *Snapshot) checkAutoClasses() error {
	for i, row := range s.AutoCcBccKeywords {
		if err := checkAutoClass(row.Class); err != nil {
			return fmt.Errorf("autoCcBccKeywords[%d]: %w", i, err)
		}
	}
	for i, row := range s.AutoCcBccRecipients {
		if err := checkAutoClass(row.Class); err != nil {
			return fmt.Errorf("autoCcBccRecipients[%d]: %w", i, err)
		}
	}
	return nil
}

// dropEmptyKeys removes rows whose match key is empty.
func (s *Snapshot) dropEmptyKeys() {
	s.Whitelist = slices.DeleteFunc(s.Whitelist, func(r Whitelist) bool {
		return r.Fragment == ""
	})
	s.AlertAddresses = slices.DeleteFunc(s.AlertAddresses, func(r AlertAddress) bool {
		return r.Fragment == ""
	})
	s.AlertKeywords = slices.DeleteFunc(s.AlertKeywords, func(r AlertKeyword) bool {
		return r.Keyword == ""
	})
	s.AutoCcBccKeywords = slices.DeleteFunc(s.AutoCcBccKeywords, func(r AutoCcBccKeyword) bool {
		return r.Keyword == ""
	})
	s.AutoCcBccRecipients = slices.DeleteFunc(s.AutoCcBccRecipients, func(r AutoCcBccRecipient) bool {
		return r.Trigger == ""
	})
	s.NameAndDomains = slices.DeleteFunc(s.NameAndDomains, func(r NameAndDomain) bool {
		return r.Name == ""
	})
}

// checkAutoClass accepts Cc or Bcc; To is not a valid auto-add class.
func checkAutoClass(c message.RecipientClass) error {
	if c != message.Cc && c != message.Bcc {
		return fmt.Errorf("auto-add class must be CC or BCC, got %v", c)
	}
	return nil
}

// Provider loads a rule Snapshot.  Implementations return an empty Snapshot, not an error, when
// no rules are configured.
type Provider interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Static is a Provider that always returns the same Snapshot.
type Static struct {
	Snapshot *Snapshot
}

var _ Provider = &Static{}

// Load implements Provider.
func (s *Static) Load(ctx context.Context) (*Snapshot, error) {
	if s.Snapshot == nil {
		return &Snapshot{}, nil
	}
	return s.Snapshot, nil
}
