package message

import (
	"errors"
	"strings"
)

// Draft is an in-memory Outgoing message.  Recipients appended with AddRecipient or AddNamed
// stay unresolved until ResolveAll looks them up in the Directory.
type Draft struct {
	AccountAddress string     // Address of the sending account, may be empty.
	FromAddress    string     // Address from the From header, may be empty.
	SubjectLine    string     // Subject header.
	PlainBody      string     // Plain text body.
	HTML           string     // HTML body, may be empty.
	Format         BodyFormat // Format the body was composed in.
	Files          []*File    // Attachments.
	Directory      Directory  // Address book used by ResolveAll, may be nil.

	recipients []*DraftRecipient
}

var _ Outgoing = &Draft{}

// Sender implements Outgoing.
func (d *Draft) Sender() (string, error) {
	if d.AccountAddress == "" {
		return "", ErrNoSender
	}
	return d.AccountAddress, nil
}

// SenderFallback implements Outgoing.
func (d *Draft) SenderFallback() (string, error) {
	if d.FromAddress == "" {
		return "", ErrNoSender
	}
	return d.FromAddress, nil
}

// Subject implements Outgoing.
func (d *Draft) Subject() string {
	return d.SubjectLine
}

// Body implements Outgoing.
func (d *Draft) Body() string {
	return d.PlainBody
}

// HTMLBody implements Outgoing.
func (d *Draft) HTMLBody() string {
	return d.HTML
}

// BodyFormat implements Outgoing.
func (d *Draft) BodyFormat() BodyFormat {
	return d.Format
}

// Recipients implements Outgoing.
func (d *Draft) Recipients() []Recipient {
	rs := make([]Recipient, len(d.recipients))
	for i, r := range d.recipients {
		rs[i] = r
	}
	return rs
}

// Attachments implements Outgoing.
func (d *Draft) Attachments() []Attachment {
	as := make([]Attachment, len(d.Files))
	for i, f := range d.Files {
		as[i] = f
	}
	return as
}

// AddRecipient implements Outgoing.
func (d *Draft) AddRecipient(address string, class RecipientClass) error {
	return d.AddNamed("", address, class)
}

// AddNamed appends an unresolved recipient with a display name.
func (d *Draft) AddNamed(name, address string, class RecipientClass) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errors.New("empty recipient address")
	}
	switch class {
	case To, Cc, Bcc:
	default:
		return errors.New("unknown recipient class " + class.String())
	}
	d.recipients = append(d.recipients, &DraftRecipient{
		name:    name,
		address: address,
		class:   class,
	})
	return nil
}

// ResolveAll implements Outgoing.
func (d *Draft) ResolveAll() error {
	for _, r := range d.recipients {
		if r.entry != nil {
			continue
		}
		e := &bookEntry{}
		if d.Directory != nil {
			e.user = d.Directory.User(r.address)
			e.list = d.Directory.List(r.address)
			e.contact = d.Directory.Contact(r.address)
		}
		if r.name == "" && e.contact != nil {
			r.name = e.contact.Name
		}
		r.entry = e
	}
	return nil
}

// DraftRecipient is a Recipient of a Draft.
type DraftRecipient struct {
	name    string
	address string
	class   RecipientClass
	entry   *bookEntry
}

var _ Recipient = &DraftRecipient{}

// Name implements Recipient.  Unnamed recipients are named by their address.
func (r *DraftRecipient) Name() string {
	if r.name == "" {
		return r.address
	}
	return r.name
}

// Address implements Recipient.
func (r *DraftRecipient) Address() string {
	return r.address
}

// Class implements Recipient.
func (r *DraftRecipient) Class() RecipientClass {
	return r.class
}

// Entry implements Recipient.
func (r *DraftRecipient) Entry() AddressEntry {
	if r.entry == nil {
		return nil
	}
	return r.entry
}

// bookEntry holds the results of the Directory lookups for one recipient.
type bookEntry struct {
	user    *Entry
	list    *Entry
	contact *Entry
}

func (e *bookEntry) DirectoryUser() (*Entry, error) {
	return e.user, nil
}

func (e *bookEntry) DistributionList() (*Entry, error) {
	return e.list, nil
}

func (e *bookEntry) Contact() (*Entry, error) {
	return e.contact, nil
}

// File is an Attachment of a Draft.  A non-nil Err is returned by FileName in place of the name,
// for attachments whose name could not be decoded.
type File struct {
	Name  string
	Bytes int64
	Err   error
}

var _ Attachment = &File{}

// FileName implements Attachment.
func (f *File) FileName() (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return f.Name, nil
}

// Size implements Attachment.
func (f *File) Size() int64 {
	return f.Bytes
}
