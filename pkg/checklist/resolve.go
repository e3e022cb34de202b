package checklist

import (
	"github.com/okanmail/okan/pkg/message"
	"github.com/rs/zerolog/log"
)

// AddressMap maps canonical addresses to display text, remembering the order addresses were first
// set in.
type AddressMap struct {
	keys   []string
	values map[string]string
}

// Set records display for addr.  An address already present keeps its position and takes the new
// display text.
func (m *AddressMap) Set(addr, display string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[addr]; !ok {
		m.keys = append(m.keys, addr)
	}
	m.values[addr] = display
}

// Get returns the display text for addr.
func (m *AddressMap) Get(addr string) (string, bool) {
	display, ok := m.values[addr]
	return display, ok
}

// Len returns the number of addresses.
func (m *AddressMap) Len() int {
	return len(m.keys)
}

// Addresses returns the addresses in insertion order.
func (m *AddressMap) Addresses() []string {
	return append([]string(nil), m.keys...)
}

// Each calls fn for every address in insertion order.
func (m *AddressMap) Each(fn func(addr, display string)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Resolution is the result of resolving a message's recipients.
type Resolution struct {
	All AddressMap
	To  AddressMap
	Cc  AddressMap
	Bcc AddressMap
}

// Resolve maps every recipient to its canonical address and display text.  It reads nothing but
// recipients, so calling it again without changing them yields the same Resolution.  Recipients
// that resolve to an empty address are dropped.
func Resolve(recipients []message.Recipient) *Resolution {
	res := &Resolution{}
	for _, r := range recipients {
		addr, display := resolveRecipient(r)
		if addr == "" {
			log.Debug().Str("module", "checklist").Str("name", r.Name()).
				Msg("Dropping recipient without address")
			continue
		}
		res.All.Set(addr, display)
		switch r.Class() {
		case message.To:
			res.To.Set(addr, display)
		case message.Cc:
			res.Cc.Set(addr, display)
		case message.Bcc:
			res.Bcc.Set(addr, display)
		}
	}
	return res
}

// resolveRecipient tries the directory user, then the distribution list, then the local contact,
// then falls back to the raw address.  A failed lookup falls through to the next step.
func resolveRecipient(r message.Recipient) (addr, display string) {
	raw := r.Address()
	entry := r.Entry()
	if entry == nil {
		return raw, raw
	}
	if u := lookup("user", raw, entry.DirectoryUser); u != nil {
		return u.Address, u.Name + " (" + u.Address + ")"
	}
	if l := lookup("list", raw, entry.DistributionList); l != nil {
		return l.Address, l.Name + " (" + l.Address + ")"
	}
	if c := lookup("contact", raw, entry.Contact); c != nil {
		return raw, r.Name() + " (" + raw + ")"
	}
	return raw, raw
}

// lookup runs one address book lookup, converting errors and panics into a miss.
func lookup(kind, raw string, fn func() (*message.Entry, error)) (e *message.Entry) {
	defer func() {
		if p := recover(); p != nil {
			log.Debug().Str("module", "checklist").Str("lookup", kind).Str("address", raw).
				Interface("panic", p).Msg("Recipient lookup panicked")
			e = nil
		}
	}()
	e, err := fn()
	if err != nil {
		log.Debug().Str("module", "checklist").Str("lookup", kind).Str("address", raw).Err(err).
			Msg("Recipient lookup failed")
		return nil
	}
	return e
}
