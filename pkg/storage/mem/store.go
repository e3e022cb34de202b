// Package mem implements an in-memory audit record store.
package mem

import (
	"container/list"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/storage"
)

// visitBatch is the number of records passed to each VisitRecords callback.
const visitBatch = 100

// Store implements an in-memory record store.  Records are kept oldest first; the oldest are
// dropped once MaxRecords or the maxkb parameter is exceeded.
type Store struct {
	sync.RWMutex
	order    *list.List               // *storage.Record, oldest first.
	index    map[string]*list.Element // Record ID to order element.
	cap      int                      // Record cap, 0 for none.
	maxBytes int64                    // Total check list size cap, 0 for none.
	size     int64                    // Current total check list size.
	extHost  *extension.Host
}

var _ storage.Store = &Store{}

// New returns an empty memory store.
func New(cfg config.Storage, extHost *extension.Host) (storage.Store, error) {
	s := &Store{
		order:   list.New(),
		index:   make(map[string]*list.Element),
		cap:     cfg.MaxRecords,
		extHost: extHost,
	}
	if str, ok := cfg.Params["maxkb"]; ok {
		maxKB, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse maxkb: %v", err)
		}
		if maxKB > 0 {
			s.maxBytes = maxKB * 1024
		}
	}
	return s, nil
}

// AddRecord stores a copy of r under a new ID.
func (s *Store) AddRecord(r *storage.Record) (string, error) {
	rec := *r
	rec.ID = uuid.NewString()

	s.Lock()
	s.index[rec.ID] = s.order.PushBack(&rec)
	s.size += rec.Size()
	dropped := s.enforceLimits()
	s.Unlock()

	s.emitStored(&rec)
	s.emitDeleted(dropped...)
	return rec.ID, nil
}

// GetRecord returns a copy of the record.
func (s *Store) GetRecord(id string) (*storage.Record, error) {
	s.RLock()
	defer s.RUnlock()

	el, ok := s.index[id]
	if !ok {
		return nil, storage.ErrNotExist
	}
	rec := *el.Value.(*storage.Record)
	return &rec, nil
}

// GetRecords returns up to limit records, newest first.
func (s *Store) GetRecords(limit int) ([]*storage.Record, error) {
	s.RLock()
	defer s.RUnlock()

	n := s.order.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	records := make([]*storage.Record, 0, n)
	for el := s.order.Back(); el != nil && len(records) < n; el = el.Prev() {
		rec := *el.Value.(*storage.Record)
		records = append(records, &rec)
	}
	return records, nil
}

// RemoveRecord deletes a single record.  Removing a missing record is not an error.
func (s *Store) RemoveRecord(id string) error {
	s.Lock()
	rec := s.remove(id)
	s.Unlock()

	if rec != nil {
		s.emitDeleted(rec)
	}
	return nil
}

// PurgeRecords deletes every record.
func (s *Store) PurgeRecords() error {
	s.Lock()
	removed := make([]*storage.Record, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		removed = append(removed, el.Value.(*storage.Record))
	}
	s.order.Init()
	s.index = make(map[string]*list.Element)
	s.size = 0
	s.Unlock()

	s.emitDeleted(removed...)
	return nil
}

// VisitRecords calls f with batches of records, oldest first.  The store is not locked while f
// runs, so f may remove records.
func (s *Store) VisitRecords(f func([]*storage.Record) (cont bool)) error {
	s.RLock()
	all := make([]*storage.Record, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		rec := *el.Value.(*storage.Record)
		all = append(all, &rec)
	}
	s.RUnlock()

	for start := 0; start < len(all); start += visitBatch {
		end := min(start+visitBatch, len(all))
		if !f(all[start:end]) {
			break
		}
	}
	return nil
}

// remove unlinks the record from the store and returns it, or nil.  Lock must be held.
func (s *Store) remove(id string) *storage.Record {
	el, ok := s.index[id]
	if !ok {
		return nil
	}
	delete(s.index, id)
	rec := s.order.Remove(el).(*storage.Record)
	s.size -= rec.Size()
	return rec
}

func (s *Store) emitStored(rec *storage.Record) {
	if s.extHost != nil {
		s.extHost.Events.AfterRecordStored.Emit(rec.Metadata())
	}
}

func (s *Store) emitDeleted(recs ...*storage.Record) {
	if s.extHost == nil {
		return
	}
	for _, rec := range recs {
		s.extHost.Events.AfterRecordDeleted.Emit(rec.Metadata())
	}
}
