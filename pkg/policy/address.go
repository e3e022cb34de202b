// Package policy holds address rules shared by the check pipeline and the rule linter.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAddress wraps every address validation failure.
var ErrInvalidAddress = errors.New("invalid address")

// NoDomain stands in for the sender domain when no sender address could be read.  It never
// occurs inside a real address.
const NoDomain = "--------------------"

const (
	maxAddressLen = 320
	maxLocalLen   = 128
	maxDomainLen  = 255
	maxLabelLen   = 63
	plainSpecials = "!#$%&'*+-/=?^_`{|}~"
)

// DomainOf returns the suffix of address starting at its first '@', or "" when address has
// none.
func DomainOf(address string) string {
	if i := strings.IndexByte(address, '@'); i >= 0 {
		return address[i:]
	}
	return ""
}

// IsInternal reports whether address belongs to senderDomain, by substring containment.
func IsInternal(address, senderDomain string) bool {
	return strings.Contains(address, senderDomain)
}

// ParseEmailAddress unescapes an email address, and splits the local part from the domain part.
// An error wrapping ErrInvalidAddress is returned if either part fails validation following the
// guidelines in RFC3696.
func ParseEmailAddress(address string) (local string, domain string, err error) {
	local, domain, err = splitAddress(address)
	if err != nil {
		return "", "", err
	}
	if !ValidateDomainPart(domain) {
		return "", "", invalid("domain part %q failed validation", domain)
	}
	return local, domain, nil
}

// ValidateDomainPart returns true if the domain part complies to RFC3696, RFC1035.
func ValidateDomainPart(domain string) bool {
	if domain == "" || len(domain) > maxDomainLen {
		return false
	}
	domain = strings.TrimSuffix(domain, ".")
	for _, label := range strings.Split(domain, ".") {
		if !validLabel(label) {
			return false
		}
	}
	return true
}

// validLabel checks a single DNS label: 1-63 characters of letters, digits, underscore and
// interior hyphens, with at least one non-hyphen.
func validLabel(label string) bool {
	if label == "" || len(label) > maxLabelLen {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if !isAlphaNum(c) && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

// splitAddress unescapes the local part of address and splits off the domain, which is returned
// unvalidated.
func splitAddress(address string) (local string, domain string, err error) {
	switch {
	case address == "":
		return "", "", invalid("empty address")
	case len(address) > maxAddressLen:
		return "", "", invalid("address exceeds %d characters", maxAddressLen)
	case address[0] == '@':
		return "", "", invalid("address cannot start with @ symbol")
	case address[0] == '.':
		return "", "", invalid("address cannot start with a period")
	}

	var sb strings.Builder
	prev := byte('.')
	escaped := false
	quoted := false
	for i := 0; i < len(address); i++ {
		c := address[i]
		switch {
		case c > 127:
			return "", "", invalid("characters outside of US-ASCII range not permitted")
		case escaped:
			sb.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			if quoted {
				quoted = false
			} else if i == 0 {
				quoted = true
			} else {
				return "", "", invalid("quoted string can only begin at start of address")
			}
		case quoted:
			sb.WriteByte(c)
		case c == '@':
			if i > maxLocalLen {
				return "", "", invalid("local part must not exceed %d characters", maxLocalLen)
			}
			if prev == '.' {
				return "", "", invalid("local part cannot end with a period")
			}
			return sb.String(), address[i+1:], nil
		case c == '.':
			if prev == '.' {
				return "", "", invalid("sequence of periods is not permitted")
			}
			sb.WriteByte(c)
		case isAlphaNum(c) || strings.IndexByte(plainSpecials, c) >= 0:
			sb.WriteByte(c)
		default:
			return "", "", invalid("character %q must be quoted", c)
		}
		prev = c
	}
	if escaped {
		return "", "", invalid("cannot end address with unterminated quoted-pair")
	}
	if quoted {
		return "", "", invalid("cannot end address with unterminated string quote")
	}
	return sb.String(), "", nil
}

func isAlphaNum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAddress, fmt.Sprintf(format, args...))
}
