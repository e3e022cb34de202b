// Package message contains the outgoing message model the check pipeline reads from and appends
// recipients to.
package message

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSender indicates a sender address could not be read from the message.
var ErrNoSender = errors.New("sender address unavailable")

// RecipientClass is the To, Cc or Bcc role of a recipient.
type RecipientClass int

// Recipient classes, numbered the way mail clients number them.
const (
	To RecipientClass = iota + 1
	Cc
	Bcc
)

func (c RecipientClass) String() string {
	switch c {
	case To:
		return "To"
	case Cc:
		return "Cc"
	case Bcc:
		return "Bcc"
	}
	return fmt.Sprintf("RecipientClass(%d)", int(c))
}

// MarshalText renders the class as an upper case label: TO, CC or BCC.
func (c RecipientClass) MarshalText() ([]byte, error) {
	switch c {
	case To, Cc, Bcc:
		return []byte(strings.ToUpper(c.String())), nil
	}
	return nil, fmt.Errorf("unknown recipient class %d", int(c))
}

// UnmarshalText parses a class label, ignoring case.
func (c *RecipientClass) UnmarshalText(text []byte) error {
	rc, err := ParseRecipientClass(string(text))
	if err != nil {
		return err
	}
	*c = rc
	return nil
}

// ParseRecipientClass parses TO, CC or BCC, ignoring case and surrounding space.
func ParseRecipientClass(s string) (RecipientClass, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TO":
		return To, nil
	case "CC":
		return Cc, nil
	case "BCC":
		return Bcc, nil
	}
	return 0, fmt.Errorf("unknown recipient class %q", s)
}

// BodyFormat is the format the message body was composed in.
type BodyFormat int

// Body formats.
const (
	FormatUnspecified BodyFormat = iota
	FormatPlain
	FormatHTML
	FormatRichText
)

// Outgoing is a message about to be sent.  Only recipients are ever written, and only by
// appending.
type Outgoing interface {
	// Sender returns the address of the sending account.
	Sender() (string, error)
	// SenderFallback returns the sender address recorded on the message itself, consulted when
	// the sending account cannot be read.
	SenderFallback() (string, error)
	Subject() string
	Body() string
	HTMLBody() string
	BodyFormat() BodyFormat
	Recipients() []Recipient
	Attachments() []Attachment
	// AddRecipient appends an unresolved recipient.
	AddRecipient(address string, class RecipientClass) error
	// ResolveAll resolves any recipients appended since the last call.
	ResolveAll() error
}

// Recipient is a single addressee of an Outgoing message.
type Recipient interface {
	Name() string
	Address() string
	Class() RecipientClass
	// Entry returns the address book lookups for this recipient, or nil if it is unresolved.
	Entry() AddressEntry
}

// AddressEntry exposes the address book records a recipient resolved to.  Each lookup returns
// nil when there is no matching record.
type AddressEntry interface {
	DirectoryUser() (*Entry, error)
	DistributionList() (*Entry, error)
	Contact() (*Entry, error)
}

// Entry is an address book record.
type Entry struct {
	Name    string   `yaml:"name"`
	Address string   `yaml:"address"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Attachment is a file attached to an Outgoing message.
type Attachment interface {
	FileName() (string, error)
	Size() int64
}
