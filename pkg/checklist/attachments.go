package checklist

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/message"
)

const dangerousExtension = ".exe"

// inspectAttachments reports every attachment and raises the forgotten-attachment, oversize and
// executable alerts.
func (p *pass) inspectAttachments() {
	atts := p.msg.Attachments()
	if len(atts) == 0 {
		for _, w := range p.text.AttachmentWords() {
			if w != "" && strings.Contains(p.cl.body, w) {
				p.alert(p.label(l10n.ForgottenAttachment), true)
				break
			}
		}
	}
	for _, a := range atts {
		p.cl.attachments = append(p.cl.attachments, p.inspect(a))
	}
}

// inspect reports a single attachment.  A panic while reading it leaves the unknown labels in place.
func (p *pass) inspect(a message.Attachment) (r AttachmentReport) {
	unknown := p.label(l10n.Unknown)
	r = AttachmentReport{FileName: unknown, Type: unknown}
	defer func() {
		if v := recover(); v != nil {
			p.logger.Debug().Interface("panic", v).Msg("Attachment inspection panicked")
		}
	}()

	size := a.Size()
	r.Size = FormatSize(size)
	r.IsTooBig = size >= p.oversize
	name, err := a.FileName()
	if err != nil {
		p.logger.Debug().Err(err).Msg("Attachment file name unavailable")
	} else {
		r.FileName = name
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			r.Type = name[i:]
		}
	}
	if r.IsTooBig {
		p.alert(p.label(l10n.BigAttachment)+"["+r.FileName+"]", true)
	}
	if r.Type == dangerousExtension {
		r.IsDangerous = true
		p.alert(p.label(l10n.ExeAttachment)+"["+r.FileName+"]", true)
	}
	return r
}

// FormatSize renders a byte count as whole kilobytes with thousands separators, such as
// "1,235KB".  Halves round away from zero.
func FormatSize(bytes int64) string {
	return humanize.Comma(int64(math.Round(float64(bytes)/1024))) + "KB"
}
