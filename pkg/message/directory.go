package message

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Directory looks up address book records by address or alias.  Lookups return nil when nothing
// matches.
type Directory interface {
	User(address string) *Entry
	List(address string) *Entry
	Contact(address string) *Entry
}

// Book is a Directory held in memory, typically loaded from YAML:
//
//	users:
//	  - name: Taro Yamada
//	    address: taro@example.co.jp
//	    aliases: [taro, /o=example/cn=taro]
//	lists:
//	  - name: Sales
//	    address: sales@example.co.jp
//	contacts:
//	  - name: Acme Support
//	    address: support@acme.com
type Book struct {
	Users    []Entry `yaml:"users"`
	Lists    []Entry `yaml:"lists"`
	Contacts []Entry `yaml:"contacts"`
}

var _ Directory = &Book{}

// LoadBook reads a YAML address book from path.  A missing file yields an empty Book.
func LoadBook(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Book{}, nil
		}
		return nil, err
	}
	defer f.Close()
	return ReadBook(f)
}

// ReadBook decodes a YAML address book.
func ReadBook(r io.Reader) (*Book, error) {
	b := &Book{}
	if err := yaml.NewDecoder(r).Decode(b); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse address book: %w", err)
	}
	return b, nil
}

// User implements Directory.
func (b *Book) User(address string) *Entry {
	return lookup(b.Users, address)
}

// List implements Directory.
func (b *Book) List(address string) *Entry {
	return lookup(b.Lists, address)
}

// Contact implements Directory.
func (b *Book) Contact(address string) *Entry {
	return lookup(b.Contacts, address)
}

// lookup finds the first entry whose address or alias equals address, ignoring case.
func lookup(entries []Entry, address string) *Entry {
	if address == "" {
		return nil
	}
	for i := range entries {
		e := &entries[i]
		if strings.EqualFold(e.Address, address) {
			return e
		}
		for _, alias := range e.Aliases {
			if strings.EqualFold(alias, address) {
				return e
			}
		}
	}
	return nil
}
