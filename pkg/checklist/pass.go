package checklist

import (
	"strings"

	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/message"
	"github.com/okanmail/okan/pkg/policy"
	"github.com/okanmail/okan/pkg/rules"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// pass holds the state of a single Generate call.
type pass struct {
	msg      message.Outgoing
	snap     *rules.Snapshot
	text     Text
	hook     Hook
	settings Settings
	oversize int64
	logger   zerolog.Logger

	resolved      *Resolution
	implicitWhite []string
	cl            CheckList
}

func newPass(g *Generator, msg message.Outgoing) *pass {
	p := &pass{
		msg:      msg,
		snap:     g.Rules,
		text:     g.Text,
		hook:     g.Hook,
		settings: g.Settings,
		oversize: g.OversizeBytes,
		logger:   log.With().Str("module", "checklist").Logger(),
	}
	if p.snap == nil {
		p.snap = &rules.Snapshot{}
	}
	if p.text == nil {
		p.text = l10n.Japanese
	}
	if p.oversize <= 0 {
		p.oversize = DefaultOversizeBytes
	}
	return p
}

func (p *pass) alert(text string, important bool) {
	p.cl.alerts = append(p.cl.alerts, Alert{Message: text, IsImportant: important})
}

// block sets the send-block.  Nothing ever clears it; reason replaces any earlier reason.
func (p *pass) block(reason string) {
	p.cl.cannotSend = true
	p.cl.reason = reason
}

func (p *pass) label(id l10n.ID) string {
	return p.text.Message(id)
}

// extractGeneral copies the sender, subject and bodies.
func (p *pass) extractGeneral() {
	primary, primaryErr := p.msg.Sender()
	fallback, fallbackErr := p.msg.SenderFallback()

	switch {
	case primaryErr == nil && primary != "":
		p.cl.sender = primary
	case fallbackErr == nil && strings.Contains(fallback, "@"):
		p.cl.sender = fallback
	default:
		p.cl.sender = p.label(l10n.FailedToGetInformation)
	}

	switch {
	case primaryErr == nil && strings.Contains(primary, "@"):
		p.cl.senderDomain = policy.DomainOf(primary)
	case fallbackErr == nil && strings.Contains(fallback, "@"):
		p.cl.senderDomain = policy.DomainOf(fallback)
	default:
		p.cl.senderDomain = policy.NoDomain
	}
	p.logger.Debug().Str("sender", p.cl.sender).Str("domain", p.cl.senderDomain).
		Msg("Resolved sender")

	p.cl.subject = p.msg.Subject()
	p.cl.body = p.msg.Body()
	p.cl.htmlBody = p.msg.HTMLBody()
	p.cl.mailType = p.label(formatLabel(p.msg.BodyFormat()))
}

func formatLabel(f message.BodyFormat) l10n.ID {
	switch f {
	case message.FormatPlain:
		return l10n.FormatText
	case message.FormatHTML:
		return l10n.FormatHTML
	case message.FormatRichText:
		return l10n.FormatRichText
	}
	return l10n.Unknown
}

// assemble returns the finished CheckList.  Slices are copied so later use of the pass cannot
// reach it.
func (p *pass) assemble() *CheckList {
	cl := p.cl
	cl.alerts = append([]Alert(nil), p.cl.alerts...)
	cl.to = append([]Address(nil), p.cl.to...)
	cl.cc = append([]Address(nil), p.cl.cc...)
	cl.bcc = append([]Address(nil), p.cl.bcc...)
	cl.attachments = append([]AttachmentReport(nil), p.cl.attachments...)
	p.logger.Debug().Int("alerts", len(cl.alerts)).Bool("cannotSend", cl.cannotSend).
		Msg("Check list generated")
	return &cl
}
