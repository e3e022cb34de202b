package checklist

import "github.com/okanmail/okan/pkg/l10n"

// Inspection is the read-only view of a check in progress handed to a Hook.
type Inspection struct {
	Sender       string
	SenderDomain string
	Subject      string
	Body         string
	To           []string
	Cc           []string
	Bcc          []string
	Attachments  []string
	Alerts       []string
	CannotSend   bool
}

// Verdict is a Hook's contribution to a check list.
type Verdict struct {
	Alerts []string // Raised as important alerts, in order.
	Block  bool     // Sets the send-block.
	Reason string   // Block reason; a generic label is used when empty.
}

// Hook lets an extension add alerts or block sending once every built-in check has run.
type Hook interface {
	Verdict(in *Inspection) *Verdict
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(in *Inspection) *Verdict

// Verdict implements Hook.
func (f HookFunc) Verdict(in *Inspection) *Verdict {
	return f(in)
}

// applyHook consults the hook, if any.  A hook can add alerts and set the send-block, but cannot
// remove anything.
func (p *pass) applyHook() {
	if p.hook == nil {
		return
	}
	v := p.callHook(p.inspection())
	if v == nil {
		return
	}
	for _, a := range v.Alerts {
		p.alert(a, true)
	}
	if v.Block {
		reason := v.Reason
		if reason == "" {
			reason = p.label(l10n.ExtensionAlert)
		}
		p.block(reason)
	}
}

func (p *pass) callHook(in *Inspection) (v *Verdict) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("Check list hook panicked")
			v = nil
		}
	}()
	return p.hook.Verdict(in)
}

func (p *pass) inspection() *Inspection {
	in := &Inspection{
		Sender:       p.cl.sender,
		SenderDomain: p.cl.senderDomain,
		Subject:      p.cl.subject,
		Body:         p.cl.body,
		To:           p.resolved.To.Addresses(),
		Cc:           p.resolved.Cc.Addresses(),
		Bcc:          p.resolved.Bcc.Addresses(),
		CannotSend:   p.cl.cannotSend,
	}
	for _, a := range p.cl.attachments {
		in.Attachments = append(in.Attachments, a.FileName)
	}
	for _, a := range p.cl.alerts {
		in.Alerts = append(in.Alerts, a.Message)
	}
	return in
}
