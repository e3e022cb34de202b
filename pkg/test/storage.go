package test

import (
	"errors"
	"slices"
	"strconv"

	"github.com/okanmail/okan/pkg/storage"
)

// StoreStub stubs storage.Store for testing.  Records are kept in insertion order; the ID
// "recorderr" makes GetRecord fail.
type StoreStub struct {
	storage.Store
	records []*storage.Record
	deleted map[string]struct{}
	nextID  int
	// GetRecordsErr is returned by GetRecords when set.
	GetRecordsErr error
}

// NewStore creates a new StoreStub.
func NewStore() *StoreStub {
	return &StoreStub{deleted: make(map[string]struct{})}
}

// AddRecord stores r, keeping its ID when set.
func (s *StoreStub) AddRecord(r *storage.Record) (string, error) {
	if r.ID == "" {
		s.nextID++
		r.ID = strconv.Itoa(s.nextID)
	}
	s.records = append(s.records, r)
	return r.ID, nil
}

// GetRecord gets a record by ID.
func (s *StoreStub) GetRecord(id string) (*storage.Record, error) {
	if id == "recorderr" {
		return nil, errors.New("internal error")
	}
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, storage.ErrNotExist
}

// GetRecords returns up to limit records, newest first.
func (s *StoreStub) GetRecords(limit int) ([]*storage.Record, error) {
	if s.GetRecordsErr != nil {
		return nil, s.GetRecordsErr
	}
	records := slices.Clone(s.records)
	slices.Reverse(records)
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

// RemoveRecord deletes a record by ID.
func (s *StoreStub) RemoveRecord(id string) error {
	i := slices.IndexFunc(s.records, func(r *storage.Record) bool { return r.ID == id })
	if i < 0 {
		return storage.ErrNotExist
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.deleted[id] = struct{}{}
	return nil
}

// PurgeRecords deletes all records.
func (s *StoreStub) PurgeRecords() error {
	for _, r := range s.records {
		s.deleted[r.ID] = struct{}{}
	}
	s.records = nil
	return nil
}

// VisitRecords calls f once with every record.
func (s *StoreStub) VisitRecords(f func([]*storage.Record) (cont bool)) error {
	if len(s.records) > 0 {
		f(slices.Clone(s.records))
	}
	return nil
}

// RecordDeleted returns true if the record with id was deleted.
func (s *StoreStub) RecordDeleted(id string) bool {
	_, ok := s.deleted[id]
	return ok
}
