// Package target decides whether a lookup target is an IP address or a
// domain name. Classification is pure: no DNS lookups are made.
package target

import (
	"net/netip"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// Kind is the classification of a target string.
type Kind int

const (
	Invalid Kind = iota
	IPv4
	IPv6
	Domain
)

func (k Kind) String() string {
	switch k {
	case IPv4:
		return "IPv4"
	case IPv6:
		return "IPv6"
	case Domain:
		return "domain"
	default:
		return "invalid"
	}
}

// IsIP reports whether k is an IPv4 or IPv6 address.
func (k Kind) IsIP() bool {
	return k == IPv4 || k == IPv6
}

// Class groups kinds the way providers declare applicability.
type Class int

const (
	ClassIP Class = 1 << iota
	ClassDomain
)

// Class maps a kind to its applicability class. Invalid maps to zero.
func (k Kind) Class() Class {
	switch {
	case k.IsIP():
		return ClassIP
	case k == Domain:
		return ClassDomain
	default:
		return 0
	}
}

// Has reports whether c includes every bit of other.
func (c Class) Has(other Class) bool {
	return other != 0 && c&other == other
}

func (c Class) String() string {
	var parts []string
	if c&ClassIP != 0 {
		parts = append(parts, "ip")
	}
	if c&ClassDomain != 0 {
		parts = append(parts, "domain")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// RFC 1035 labels; the top-level label is alphabetic (or an IDNA A-label).
var domainRegexp = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+(?:[a-zA-Z]{2,63}|xn--[a-zA-Z0-9-]{1,59})$`)

const maxDomainLength = 253

// Classify returns the kind of s. Strict address parsing is tried first,
// so "999.999.999.999" and "1.2.3" are never taken for domain names.
func Classify(s string) Kind {
	kind, _ := classify(s)
	return kind
}

// Target is a classified lookup target.
type Target struct {
	Raw   string // as given
	Value string // normalized form sent to providers
	Kind  Kind
}

// Parse trims s and classifies it. Unicode domain names are converted to
// their ASCII (punycode) form in Value.
func Parse(s string) Target {
	raw := strings.TrimSpace(s)
	kind, value := classify(raw)
	if kind == Invalid {
		value = raw
	}
	return Target{Raw: raw, Value: value, Kind: kind}
}

func (t Target) String() string {
	return t.Value
}

func classify(s string) (Kind, string) {
	if s == "" {
		return Invalid, ""
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		if addr.Zone() != "" {
			return Invalid, ""
		}
		if addr.Is4() {
			return IPv4, addr.String()
		}
		return IPv6, addr.String()
	}

	ascii, err := idna.Punycode.ToASCII(s)
	if err != nil {
		return Invalid, ""
	}
	if len(ascii) > maxDomainLength || !domainRegexp.MatchString(ascii) {
		return Invalid, ""
	}
	return Domain, ascii
}
