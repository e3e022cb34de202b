package test

import (
	"testing"
	"time"

	"github.com/okanmail/okan/pkg/checklist"
	"github.com/okanmail/okan/pkg/l10n"
	"github.com/okanmail/okan/pkg/message"
	"github.com/okanmail/okan/pkg/storage"
)

// NewRecord checks a small draft with the given subject and returns its audit record.
func NewRecord(t *testing.T, subject string, date time.Time) *storage.Record {
	t.Helper()
	d := &message.Draft{
		AccountAddress: "sender@example.com",
		SubjectLine:    subject,
		PlainBody:      "Test Body",
		Files:          []*message.File{{Name: "report.pdf", Bytes: 2048}},
	}
	if err := d.AddRecipient("somebody@client.com", message.To); err != nil {
		t.Fatal(err)
	}
	cl := checklist.Generate(d, nil, l10n.English)
	rec, err := storage.NewRecord(cl, true, date)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

// StoreRecord adds a record with the given subject and date to store, returning its ID.
func StoreRecord(t *testing.T, store storage.Store, subject string, date time.Time) string {
	t.Helper()
	id, err := store.AddRecord(NewRecord(t, subject, date))
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// GetAndCountRecords expects to receive count records or fails the test.
func GetAndCountRecords(t *testing.T, s storage.Store, count int) []*storage.Record {
	t.Helper()
	records, err := s.GetRecords(0)
	if err != nil {
		t.Fatalf("Failed to GetRecords: %v", err)
	}
	if len(records) != count {
		t.Errorf("Got %v records, want: %v", len(records), count)
	}
	return records
}
