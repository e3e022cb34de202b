package test

import (
	"fmt"
	"testing"
	"time"

	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory returns a new store for the test suite.
type StoreFactory func(
	config.Storage, *extension.Host) (store storage.Store, destroy func(), err error)

// StoreSuite runs a set of general tests on the provided Store.
func StoreSuite(t *testing.T, factory StoreFactory) {
	t.Helper()
	testCases := []struct {
		name string
		test func(*testing.T, storage.Store, *extension.Host)
		conf config.Storage
	}{
		{"metadata", testMetadata, config.Storage{}},
		{"check list", testCheckList, config.Storage{}},
		{"newest first", testNewestFirst, config.Storage{}},
		{"limit", testLimit, config.Storage{}},
		{"delete", testDelete, config.Storage{}},
		{"purge", testPurge, config.Storage{}},
		{"visit records", testVisitRecords, config.Storage{}},
		{"record cap", testRecordCap, config.Storage{MaxRecords: 3}},
		{"events", testEvents, config.Storage{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			extHost := extension.NewHost()
			store, destroy, err := factory(tc.conf, extHost)
			require.NoError(t, err)
			tc.test(t, store, extHost)
			destroy()
		})
	}
}

// testMetadata verifies record summary fields are stored and retrieved correctly.
func testMetadata(t *testing.T, store storage.Store, _ *extension.Host) {
	date := time.Date(2024, time.March, 4, 5, 6, 7, 0, time.UTC)
	want := &storage.Record{
		ID:                "ignored",
		Date:              date,
		Sender:            "sender@example.com",
		Subject:           "fantastic test subject line",
		ToCount:           2,
		CcCount:           1,
		BccCount:          3,
		AlertCount:        4,
		CannotSend:        true,
		Reason:            "ForbiddenAddress[bad@example.com]",
		NeedsConfirmation: true,
		CheckList:         []byte(`{"subject":"fantastic test subject line"}`),
	}
	id, err := store.AddRecord(want)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.NotEqual(t, "ignored", id, "store assigns IDs")

	got, err := store.GetRecord(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.True(t, got.Date.Equal(date), "got date %v, want %v", got.Date, date)
	assert.Equal(t, want.Sender, got.Sender)
	assert.Equal(t, want.Subject, got.Subject)
	assert.Equal(t, 2, got.ToCount)
	assert.Equal(t, 1, got.CcCount)
	assert.Equal(t, 3, got.BccCount)
	assert.Equal(t, 4, got.AlertCount)
	assert.True(t, got.CannotSend)
	assert.Equal(t, want.Reason, got.Reason)
	assert.True(t, got.NeedsConfirmation)
	assert.JSONEq(t, string(want.CheckList), string(got.CheckList))

	_, err = store.GetRecord("missing")
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

// testCheckList verifies a stored check list can be restored.
func testCheckList(t *testing.T, store storage.Store, _ *extension.Host) {
	rec := NewRecord(t, "restore me", time.Now())
	id, err := store.AddRecord(rec)
	require.NoError(t, err)

	got, err := store.GetRecord(id)
	require.NoError(t, err)
	cl, err := got.DecodeCheckList()
	require.NoError(t, err)
	assert.Equal(t, "restore me", cl.Subject())
	assert.Equal(t, "sender@example.com", cl.Sender())
	require.Len(t, cl.Attachments(), 1)
	assert.Equal(t, "report.pdf", cl.Attachments()[0].FileName)
}

// testNewestFirst verifies GetRecords orders by insertion, newest first.
func testNewestFirst(t *testing.T, store storage.Store, _ *extension.Host) {
	subjects := []string{"alpha", "bravo", "charlie", "delta"}
	for _, subj := range subjects {
		StoreRecord(t, store, subj, time.Now())
	}
	records := GetAndCountRecords(t, store, len(subjects))
	for i, r := range records {
		assert.Equal(t, subjects[len(subjects)-1-i], r.Subject)
	}
}

func testLimit(t *testing.T, store storage.Store, _ *extension.Host) {
	for i := range 5 {
		StoreRecord(t, store, fmt.Sprintf("subject %d", i), time.Now())
	}
	records, err := store.GetRecords(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "subject 4", records[0].Subject)
	assert.Equal(t, "subject 3", records[1].Subject)
}

func testDelete(t *testing.T, store storage.Store, _ *extension.Host) {
	ids := make([]string, 0, 3)
	for _, subj := range []string{"alpha", "bravo", "charlie"} {
		ids = append(ids, StoreRecord(t, store, subj, time.Now()))
	}
	require.NoError(t, store.RemoveRecord(ids[1]))

	records := GetAndCountRecords(t, store, 2)
	assert.Equal(t, "charlie", records[0].Subject)
	assert.Equal(t, "alpha", records[1].Subject)
	_, err := store.GetRecord(ids[1])
	assert.ErrorIs(t, err, storage.ErrNotExist)

	assert.NoError(t, store.RemoveRecord(ids[1]), "removing a missing record")
}

func testPurge(t *testing.T, store storage.Store, _ *extension.Host) {
	for _, subj := range []string{"alpha", "bravo", "charlie"} {
		StoreRecord(t, store, subj, time.Now())
	}
	require.NoError(t, store.PurgeRecords())
	GetAndCountRecords(t, store, 0)
}

func testVisitRecords(t *testing.T, store storage.Store, _ *extension.Host) {
	for i := range 250 {
		StoreRecord(t, store, fmt.Sprintf("subject %d", i), time.Now())
	}

	seen := 0
	batches := 0
	var first string
	require.NoError(t, store.VisitRecords(func(records []*storage.Record) bool {
		if batches == 0 {
			first = records[0].Subject
		}
		batches++
		seen += len(records)
		return true
	}))
	assert.Equal(t, 250, seen)
	assert.Equal(t, "subject 0", first, "oldest first")

	batches = 0
	require.NoError(t, store.VisitRecords(func([]*storage.Record) bool {
		batches++
		return false
	}))
	assert.Equal(t, 1, batches, "visit stops when f returns false")
}

func testRecordCap(t *testing.T, store storage.Store, _ *extension.Host) {
	for i := range 5 {
		StoreRecord(t, store, fmt.Sprintf("subject %d", i), time.Now())
	}
	records := GetAndCountRecords(t, store, 3)
	assert.Equal(t, "subject 4", records[0].Subject)
	assert.Equal(t, "subject 2", records[2].Subject)
}

func testEvents(t *testing.T, store storage.Store, extHost *extension.Host) {
	stored := extHost.Events.AfterRecordStored.AsyncTestListener("test", 1)
	deleted := extHost.Events.AfterRecordDeleted.AsyncTestListener("test", 1)

	id := StoreRecord(t, store, "evented", time.Now())
	meta, err := stored()
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
	assert.Equal(t, "evented", meta.Subject)

	require.NoError(t, store.RemoveRecord(id))
	meta, err = deleted()
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
}
