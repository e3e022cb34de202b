package checklist

import (
	"slices"
	"strings"

	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/policy"
)

// classifyRecipients builds the To, Cc and Bcc rows and raises alert-address alerts and blocks.
func (p *pass) classifyRecipients() {
	p.cl.to = p.classifyBucket(&p.resolved.To, l10n.AlertTo)
	p.cl.cc = p.classifyBucket(&p.resolved.Cc, l10n.AlertCc)
	p.cl.bcc = p.classifyBucket(&p.resolved.Bcc, l10n.AlertBcc)
}

func (p *pass) classifyBucket(m *AddressMap, alertID l10n.ID) []Address {
	var rows []Address
	m.Each(func(addr, display string) {
		external := !policy.IsInternal(addr, p.cl.senderDomain)
		white := p.isWhite(addr)
		rows = append(rows, Address{
			Display:    display,
			IsExternal: external,
			IsWhite:    white,
			IsChecked:  white || (p.settings.AutoCheckSameDomain && !external),
		})

		alerted := false
		for _, row := range p.snap.AlertAddresses {
			if !strings.Contains(addr, row.Fragment) {
				continue
			}
			if !alerted {
				p.alert(p.label(alertID)+"["+display+"]", true)
				alerted = true
			}
			if row.CannotSend {
				p.block(p.label(l10n.ForbiddenAddress) + "[" + display + "]")
			}
		}
	})
	return rows
}

func (p *pass) isWhite(addr string) bool {
	contained := func(fragment string) bool { return strings.Contains(addr, fragment) }
	for _, row := range p.snap.Whitelist {
		if contained(row.Fragment) {
			return true
		}
	}
	return slices.ContainsFunc(p.implicitWhite, contained)
}
