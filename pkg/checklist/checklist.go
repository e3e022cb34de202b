// Package checklist generates the check list a reviewer works through before an outgoing message
// is sent.  Generation reads the message and a rule snapshot, appends auto-added recipients to the
// message, and returns a CheckList that is never modified afterward.
package checklist

import (
	"encoding/json"
	"slices"

	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/message"
	"github.com/okanmail/okan/pkg/rules"
)

// DefaultOversizeBytes is the attachment size at which an attachment is reported as too big.
const DefaultOversizeBytes = 10485760

// Text supplies the localized strings placed in a CheckList.
type Text interface {
	Message(id l10n.ID) string
	// AttachmentWords returns the body words that suggest a file was meant to be attached.
	AttachmentWords() []string
}

// Alert is one item the reviewer must acknowledge.
type Alert struct {
	Message     string `json:"message"`
	IsImportant bool   `json:"important"`
	IsWhite     bool   `json:"white"`
	IsChecked   bool   `json:"checked"`
}

// Address is a recipient as shown to the reviewer.
type Address struct {
	Display    string `json:"display"`
	IsExternal bool   `json:"external"`
	IsWhite    bool   `json:"white"`
	IsChecked  bool   `json:"checked"`
}

// AttachmentReport describes one attachment.
type AttachmentReport struct {
	FileName    string `json:"fileName"`
	Size        string `json:"size"`
	Type        string `json:"type"`
	IsTooBig    bool   `json:"tooBig"`
	IsDangerous bool   `json:"dangerous"`
	IsEncrypted bool   `json:"encrypted"`
}

// Settings adjust how a CheckList is pre-checked and whether it needs review at all.
type Settings struct {
	// SkipConfirmSameDomain skips review when every recipient shares the sender domain.
	SkipConfirmSameDomain bool
	// SkipConfirmAllWhite skips review when every recipient is whitelisted.
	SkipConfirmAllWhite bool
	// AutoCheckSameDomain pre-checks recipients in the sender domain.
	AutoCheckSameDomain bool
}

// CheckList is the result of checking one outgoing message.
type CheckList struct {
	sender       string
	senderDomain string
	subject      string
	body         string
	htmlBody     string
	mailType     string
	alerts       []Alert
	to           []Address
	cc           []Address
	bcc          []Address
	attachments  []AttachmentReport
	cannotSend   bool
	reason       string
}

// Sender returns the sender address, or a failure label when it could not be read.
func (c *CheckList) Sender() string { return c.sender }

// SenderDomain returns the sender domain including its leading '@'.
func (c *CheckList) SenderDomain() string { return c.senderDomain }

// Subject returns the message subject.
func (c *CheckList) Subject() string { return c.subject }

// Body returns the plain text body.
func (c *CheckList) Body() string { return c.body }

// HTMLBody returns the HTML body.
func (c *CheckList) HTMLBody() string { return c.htmlBody }

// MailType returns the localized body format label.
func (c *CheckList) MailType() string { return c.mailType }

// Alerts returns the alerts in the order they were raised.
func (c *CheckList) Alerts() []Alert { return slices.Clone(c.alerts) }

// To returns the To recipients.
func (c *CheckList) To() []Address { return slices.Clone(c.to) }

// Cc returns the Cc recipients.
func (c *CheckList) Cc() []Address { return slices.Clone(c.cc) }

// Bcc returns the Bcc recipients.
func (c *CheckList) Bcc() []Address { return slices.Clone(c.bcc) }

// Attachments returns the attachment reports in message order.
func (c *CheckList) Attachments() []AttachmentReport { return slices.Clone(c.attachments) }

// CannotSend reports whether sending must be blocked.
func (c *CheckList) CannotSend() bool { return c.cannotSend }

// CannotSendReason explains the block, or is empty.
func (c *CheckList) CannotSendReason() string { return c.reason }

// NeedsConfirmation reports whether the reviewer must still be shown the check list.  A blocked
// message, or one with an important alert, always needs it.
func (c *CheckList) NeedsConfirmation(s Settings) bool {
	if c.cannotSend {
		return true
	}
	for _, a := range c.alerts {
		if a.IsImportant {
			return true
		}
	}
	all := slices.Concat(c.to, c.cc, c.bcc)
	if s.SkipConfirmAllWhite && !slices.ContainsFunc(all, func(a Address) bool { return !a.IsWhite }) {
		return false
	}
	if s.SkipConfirmSameDomain && !slices.ContainsFunc(all, func(a Address) bool { return a.IsExternal }) {
		return false
	}
	return true
}

type checkListJSON struct {
	Sender           string             `json:"sender"`
	SenderDomain     string             `json:"senderDomain"`
	Subject          string             `json:"subject"`
	Body             string             `json:"body"`
	HTMLBody         string             `json:"htmlBody,omitempty"`
	MailType         string             `json:"mailType"`
	Alerts           []Alert            `json:"alerts"`
	To               []Address          `json:"to"`
	Cc               []Address          `json:"cc"`
	Bcc              []Address          `json:"bcc"`
	Attachments      []AttachmentReport `json:"attachments"`
	CannotSend       bool               `json:"cannotSend"`
	CannotSendReason string             `json:"cannotSendReason,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c *CheckList) MarshalJSON() ([]byte, error) {
	return json.Marshal(checkListJSON{
		Sender:           c.sender,
		SenderDomain:     c.senderDomain,
		Subject:          c.subject,
		Body:             c.body,
		HTMLBody:         c.htmlBody,
		MailType:         c.mailType,
		Alerts:           nonNil(c.alerts),
		To:               nonNil(c.to),
		Cc:               nonNil(c.cc),
		Bcc:              nonNil(c.bcc),
		Attachments:      nonNil(c.attachments),
		CannotSend:       c.cannotSend,
		CannotSendReason: c.reason,
	})
}

// UnmarshalJSON implements json.Unmarshaler, restoring a stored CheckList.
func (c *CheckList) UnmarshalJSON(data []byte) error {
	var j checkListJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*c = CheckList{
		sender:       j.Sender,
		senderDomain: j.SenderDomain,
		subject:      j.Subject,
		body:         j.Body,
		htmlBody:     j.HTMLBody,
		mailType:     j.MailType,
		alerts:       j.Alerts,
		to:           j.To,
		cc:           j.Cc,
		bcc:          j.Bcc,
		attachments:  j.Attachments,
		cannotSend:   j.CannotSend,
		reason:       j.CannotSendReason,
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Generator produces check lists from a fixed rule snapshot.  It holds no mutable state and may be
// shared between goroutines, but each message may only be checked by one goroutine at a time.
type Generator struct {
	Rules         *rules.Snapshot
	Text          Text     // Defaults to l10n.Japanese.
	Hook          Hook     // Optional extension verdict.
	Settings      Settings // Only AutoCheckSameDomain affects generation.
	OversizeBytes int64    // Defaults to DefaultOversizeBytes.
}

// Generate checks msg against snap using text for labels.  It appends auto-added recipients to
// msg and always returns a CheckList.
func Generate(msg message.Outgoing, snap *rules.Snapshot, text Text) *CheckList {
	g := &Generator{Rules: snap, Text: text}
	return g.Generate(msg)
}

// Generate checks msg.  It appends auto-added recipients to msg and always returns a CheckList.
func (g *Generator) Generate(msg message.Outgoing) *CheckList {
	p := newPass(g, msg)
	p.resolved = Resolve(msg.Recipients())
	p.extractGeneral()
	p.inspectAttachments()
	p.checkKeywords()
	p.autoAdd()
	p.resolved = Resolve(msg.Recipients())
	p.classifyRecipients()
	p.checkDomainRelevance()
	p.applyHook()
	return p.assemble()
}
