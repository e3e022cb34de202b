package checklist

import (
	"slices"
	"strings"

	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/message"
)

// autoAdder applies the auto Cc/Bcc rules against the recipients present before any were added.
type autoAdder struct {
	p        *pass
	existing []string
	added    map[message.RecipientClass][]string
}

// autoAdd appends rule targets as Cc or Bcc recipients, then has the message resolve them.
func (p *pass) autoAdd() {
	a := &autoAdder{
		p:        p,
		existing: p.resolved.All.Addresses(),
		added:    make(map[message.RecipientClass][]string),
	}
	for _, row := range p.snap.AutoCcBccKeywords {
		if strings.Contains(p.cl.body, row.Keyword) {
			a.add(row.Target, row.Class, p.label(l10n.ByKeyword), row.Keyword)
		}
	}
	for _, row := range p.snap.AutoCcBccRecipients {
		if a.anyExistingContains(row.Trigger) {
			a.add(row.Target, row.Class, p.label(l10n.ByRecipient), row.Trigger)
		}
	}
	if err := p.msg.ResolveAll(); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to resolve recipients after auto-add")
	}
}

func (a *autoAdder) anyExistingContains(fragment string) bool {
	return slices.ContainsFunc(a.existing, func(addr string) bool {
		return strings.Contains(addr, fragment)
	})
}

// add appends target as a Cc or Bcc recipient unless an existing recipient already contains it or
// it was added to the same class earlier in this pass.
func (a *autoAdder) add(target string, class message.RecipientClass, cause, matched string) {
	p := a.p
	if class != message.Cc && class != message.Bcc {
		p.logger.Debug().Str("target", target).Stringer("class", class).
			Msg("Ignoring auto-add rule without a Cc or Bcc class")
		return
	}
	if a.anyExistingContains(target) || slices.Contains(a.added[class], target) {
		return
	}
	if err := p.msg.AddRecipient(target, class); err != nil {
		p.logger.Debug().Err(err).Str("target", target).Msg("Failed to auto-add recipient")
		return
	}
	a.added[class] = append(a.added[class], target)
	p.implicitWhite = append(p.implicitWhite, target)
	label, _ := class.MarshalText()
	p.cl.alerts = append(p.cl.alerts, Alert{
		Message: p.label(l10n.AutoAdd) + "[" + string(label) + "] [" + target + "] (" +
			cause + " 「" + matched + "」)",
		IsWhite:   true,
		IsChecked: true,
	})
	p.logger.Debug().Str("target", target).Stringer("class", class).Str("cause", matched).
		Msg("Auto-added recipient")
}
