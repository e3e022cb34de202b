package checklist_test

import (
	"errors"

	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/message"
)

// stubText renders every label as its ID.
type stubText struct {
	words []string
}

func (s stubText) Message(id l10n.ID) string { return string(id) }

func (s stubText) AttachmentWords() []string {
	if s.words == nil {
		return []string{"添付"}
	}
	return s.words
}

var errLookup = errors.New("lookup failed")

type fakeEntry struct {
	user, list, contact *message.Entry
	err                 error
	panics              bool
}

func (e *fakeEntry) DirectoryUser() (*message.Entry, error) {
	if e.panics {
		panic("directory unavailable")
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.user, nil
}

func (e *fakeEntry) DistributionList() (*message.Entry, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.list, nil
}

func (e *fakeEntry) Contact() (*message.Entry, error) {
	return e.contact, nil
}

type fakeRecipient struct {
	name, addr string
	class      message.RecipientClass
	entry      *fakeEntry
}

func (r *fakeRecipient) Name() string                  { return r.name }
func (r *fakeRecipient) Address() string               { return r.addr }
func (r *fakeRecipient) Class() message.RecipientClass { return r.class }

func (r *fakeRecipient) Entry() message.AddressEntry {
	if r.entry == nil {
		return nil
	}
	return r.entry
}

type fakeAttachment struct {
	name string
	size int64
	err  error
}

func (a *fakeAttachment) FileName() (string, error) { return a.name, a.err }
func (a *fakeAttachment) Size() int64               { return a.size }

// fakeMessage is an Outgoing whose every property can be set directly.
type fakeMessage struct {
	sender, fallback       string
	senderErr, fallbackErr error
	subject, body, html    string
	format                 message.BodyFormat
	recipients             []message.Recipient
	attachments            []message.Attachment
	addErr                 error
	resolveErr             error
	added                  []string
	resolveCalls           int
}

func newMessage(body string) *fakeMessage {
	return &fakeMessage{sender: "a@x.com", subject: "Subject", body: body, format: message.FormatPlain}
}

func (m *fakeMessage) to(addrs ...string) *fakeMessage {
	return m.recipient(message.To, addrs...)
}

func (m *fakeMessage) cc(addrs ...string) *fakeMessage {
	return m.recipient(message.Cc, addrs...)
}

func (m *fakeMessage) bcc(addrs ...string) *fakeMessage {
	return m.recipient(message.Bcc, addrs...)
}

func (m *fakeMessage) recipient(class message.RecipientClass, addrs ...string) *fakeMessage {
	for _, a := range addrs {
		m.recipients = append(m.recipients, &fakeRecipient{name: a, addr: a, class: class})
	}
	return m
}

func (m *fakeMessage) attach(name string, size int64) *fakeMessage {
	m.attachments = append(m.attachments, &fakeAttachment{name: name, size: size})
	return m
}

func (m *fakeMessage) Sender() (string, error)         { return m.sender, m.senderErr }
func (m *fakeMessage) SenderFallback() (string, error) { return m.fallback, m.fallbackErr }
func (m *fakeMessage) Subject() string                 { return m.subject }
func (m *fakeMessage) Body() string                    { return m.body }
func (m *fakeMessage) HTMLBody() string                { return m.html }
func (m *fakeMessage) BodyFormat() message.BodyFormat  { return m.format }
func (m *fakeMessage) Recipients() []message.Recipient { return append([]message.Recipient(nil), m.recipients...) }

func (m *fakeMessage) Attachments() []message.Attachment {
	return append([]message.Attachment(nil), m.attachments...)
}

func (m *fakeMessage) AddRecipient(address string, class message.RecipientClass) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, address)
	m.recipients = append(m.recipients, &fakeRecipient{name: address, addr: address, class: class})
	return nil
}

func (m *fakeMessage) ResolveAll() error {
	m.resolveCalls++
	return m.resolveErr
}
