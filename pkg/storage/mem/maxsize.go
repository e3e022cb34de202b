package mem

import "github.com/okanmail/okan/pkg/storage"

// enforceLimits deletes the oldest records until the store is within both its record cap and its
// total size cap.  The newest record is always kept.  Lock must be held.
func (s *Store) enforceLimits() []*storage.Record {
	var dropped []*storage.Record
	for s.order.Len() > 1 && s.overLimit() {
		oldest := s.order.Front().Value.(*storage.Record)
		dropped = append(dropped, s.remove(oldest.ID))
	}
	return dropped
}

func (s *Store) overLimit() bool {
	if s.cap > 0 && s.order.Len() > s.cap {
		return true
	}
	return s.maxBytes > 0 && s.size > s.maxBytes
}
