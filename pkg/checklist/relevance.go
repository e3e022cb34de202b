package checklist

import (
	"slices"
	"strings"

	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/policy"
)

// checkDomainRelevance flags recipients outside the sender domain whose domain belongs to none of
// the names mentioned in the body.  Nothing is flagged when the body mentions no known name.
func (p *pass) checkDomainRelevance() {
	var candidates []string
	for _, row := range p.snap.NameAndDomains {
		if strings.Contains(p.cl.body, row.Name) {
			candidates = append(candidates, row.Domain)
		}
	}
	if len(candidates) == 0 {
		return
	}
	p.resolved.All.Each(func(addr, display string) {
		if slices.Contains(candidates, policy.DomainOf(addr)) {
			return
		}
		if policy.IsInternal(addr, p.cl.senderDomain) {
			return
		}
		p.alert(display+" : "+p.label(l10n.MaybeIrrelevant), true)
	})
}
