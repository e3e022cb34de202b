package checklist

import "strings"

// checkKeywords raises each matching keyword row's message.  Blocking rows set the send-block, the
// last one supplying the reason.
func (p *pass) checkKeywords() {
	for _, row := range p.snap.AlertKeywords {
		if !strings.Contains(p.cl.body, row.Keyword) {
			continue
		}
		p.alert(row.Message, true)
		if row.CannotSend {
			p.block(row.Message)
		}
	}
}
