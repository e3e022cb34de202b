package message

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/jhillyerd/enmime/v2"
	"github.com/rs/zerolog/log"
)

// ErrNoFileName is returned by File.FileName for attachment parts without a usable name.
var ErrNoFileName = errors.New("attachment has no file name")

// ParseDraft reads an RFC 5322 message into a resolved Draft.  The Sender header supplies the
// sending account and the From header the fallback sender.
func ParseDraft(r io.Reader, dir Directory) (*Draft, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	for _, perr := range env.Errors {
		log.Debug().Str("module", "message").Str("error", perr.Error()).
			Msg("Message parsed with errors")
	}

	d := &Draft{
		AccountAddress: firstAddress(env, "Sender"),
		FromAddress:    firstAddress(env, "From"),
		SubjectLine:    env.GetHeader("Subject"),
		PlainBody:      env.Text,
		HTML:           env.HTML,
		Format:         bodyFormat(env),
		Directory:      dir,
	}
	for _, class := range []RecipientClass{To, Cc, Bcc} {
		addrs, err := env.AddressList(class.String())
		if err != nil {
			if errors.Is(err, mail.ErrHeaderNotPresent) {
				continue
			}
			return nil, fmt.Errorf("failed to parse %v header: %w", class, err)
		}
		for _, a := range addrs {
			if err := d.AddNamed(a.Name, a.Address, class); err != nil {
				return nil, err
			}
		}
	}
	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	for _, p := range parts {
		f := &File{Name: p.FileName, Bytes: int64(len(p.Content))}
		if strings.TrimSpace(p.FileName) == "" {
			f.Err = ErrNoFileName
		}
		d.Files = append(d.Files, f)
	}
	if err := d.ResolveAll(); err != nil {
		return nil, err
	}
	return d, nil
}

// firstAddress returns the first address in the named header, or "" if there is none.
func firstAddress(env *enmime.Envelope, header string) string {
	addrs, err := env.AddressList(header)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	return addrs[0].Address
}

func bodyFormat(env *enmime.Envelope) BodyFormat {
	if env.HTML != "" {
		return FormatHTML
	}
	ct := strings.ToLower(env.GetHeader("Content-Type"))
	switch {
	case strings.HasPrefix(ct, "text/enriched"), strings.HasPrefix(ct, "text/rtf"),
		strings.HasPrefix(ct, "application/rtf"):
		return FormatRichText
	case env.Text != "":
		return FormatPlain
	}
	return FormatUnspecified
}
