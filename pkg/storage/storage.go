// Package storage keeps an audit trail of check lists.  Only the check summary and the check list
// are stored, never the message source.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okanmail/okan/pkg/checklist"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/extension/event"
)

var (
	// ErrNotExist indicates the requested record does not exist.
	ErrNotExist = errors.New("record does not exist")

	// Constructors tracks registered storage constructors.
	Constructors = make(map[string]StoreConstructor)
)

// Store is the interface okan uses to keep audit records.
type Store interface {
	// AddRecord stores r, assigning a new ID.  The ID of r is ignored.
	AddRecord(r *Record) (id string, err error)
	// GetRecord returns the record, or ErrNotExist.
	GetRecord(id string) (*Record, error)
	// GetRecords returns up to limit records, newest first.  A limit <= 0 returns all records.
	GetRecords(limit int) ([]*Record, error)
	RemoveRecord(id string) error
	PurgeRecords() error
	// VisitRecords calls f with batches of records, oldest first, while it returns true.
	VisitRecords(f func([]*Record) (cont bool)) error
}

// StoreConstructor constructs a Store from the storage configuration.
type StoreConstructor func(c config.Storage, extHost *extension.Host) (Store, error)

// Record summarizes one completed check.
type Record struct {
	ID                string          `json:"id"`
	Date              time.Time       `json:"date"`
	Sender            string          `json:"sender"`
	Subject           string          `json:"subject"`
	ToCount           int             `json:"toCount"`
	CcCount           int             `json:"ccCount"`
	BccCount          int             `json:"bccCount"`
	AlertCount        int             `json:"alertCount"`
	CannotSend        bool            `json:"cannotSend"`
	Reason            string          `json:"reason,omitempty"`
	NeedsConfirmation bool            `json:"needsConfirmation"`
	CheckList         json.RawMessage `json:"checkList"`
}

// NewRecord summarizes cl, taken at date.
func NewRecord(cl *checklist.CheckList, needsConfirmation bool, date time.Time) (*Record, error) {
	raw, err := json.Marshal(cl)
	if err != nil {
		return nil, fmt.Errorf("encoding check list: %w", err)
	}
	return &Record{
		Date:              date,
		Sender:            cl.Sender(),
		Subject:           cl.Subject(),
		ToCount:           len(cl.To()),
		CcCount:           len(cl.Cc()),
		BccCount:          len(cl.Bcc()),
		AlertCount:        len(cl.Alerts()),
		CannotSend:        cl.CannotSend(),
		Reason:            cl.CannotSendReason(),
		NeedsConfirmation: needsConfirmation,
		CheckList:         raw,
	}, nil
}

// Size is the stored size of the record's check list in bytes.
func (r *Record) Size() int64 {
	return int64(len(r.CheckList))
}

// DecodeCheckList restores the stored check list.
func (r *Record) DecodeCheckList() (*checklist.CheckList, error) {
	cl := &checklist.CheckList{}
	if err := json.Unmarshal(r.CheckList, cl); err != nil {
		return nil, fmt.Errorf("decoding check list of record %s: %w", r.ID, err)
	}
	return cl, nil
}

// Metadata returns the extension event view of r.
func (r *Record) Metadata() *event.RecordMetadata {
	return &event.RecordMetadata{
		ID:         r.ID,
		Date:       r.Date,
		Sender:     r.Sender,
		Subject:    r.Subject,
		AlertCount: r.AlertCount,
		CannotSend: r.CannotSend,
	}
}

// FromConfig creates an instance of the Store based on the provided configuration.
func FromConfig(c config.Storage, extHost *extension.Host) (store Store, err error) {
	if cf := Constructors[c.Type]; cf != nil {
		return cf(c, extHost)
	}
	return nil, fmt.Errorf("unknown storage type configured: %q", c.Type)
}
