// Package parse turns a raw string into the internal Address
// representation used by every validation stage. Parsing enforces
// RFC 5321/5322 with pragmatic relaxations; the Address is immutable
// after construction.
package parse

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// Limits from RFC 5321 with the relaxed 320-byte total
// (64 local + 1 separator + 255 domain).
const (
	maxAddressLen = 320
	maxLocalLen   = 64
	maxDomainLen  = 255
	maxLabelLen   = 63
)

// atext per RFC 5322, besides letters and digits.
const localSpecials = "!#$%&'*+/=?^_`{|}~-"

// Address is a parsed email address. Domain is always the lowercased
// ASCII (punycode) form; DomainUnicode keeps the original spelling for
// echoing back to the caller.
type Address struct {
	Raw           string
	Local         string
	Domain        string
	DomainUnicode string
	QuotedLocal   bool
	International bool
	Valid         bool
	Reason        string // first rule that failed, empty when Valid
}

// Options control the pragmatic relaxations.
type Options struct {
	// Strict rejects quoted local parts and plus addressing.
	Strict bool
	// AllowInternational accepts IDN domains (converted to punycode).
	AllowInternational bool
}

// Parse validates raw against RFC 5321/5322 and decomposes it.
// Rules are enforced in order; the first failure is recorded in Reason.
func Parse(raw string, opts Options) Address {
	raw = strings.TrimSpace(raw)
	addr := Address{Raw: raw}

	if raw == "" {
		return addr.reject("email address is empty")
	}
	if len(raw) > maxAddressLen {
		return addr.reject("email exceeds maximum length of 320 characters")
	}

	local, domain, reason := split(raw)
	if reason != "" {
		return addr.reject(reason)
	}

	quoted := len(local) >= 2 && strings.HasPrefix(local, `"`) && strings.HasSuffix(local, `"`)
	if reason := validateLocal(local, quoted, opts.Strict); reason != "" {
		return addr.reject(reason)
	}

	asciiDomain, unicodeDomain, international, reason := normalizeDomain(domain, opts.AllowInternational)
	if reason != "" {
		return addr.reject(reason)
	}

	addr.Local = local
	addr.Domain = asciiDomain
	addr.DomainUnicode = unicodeDomain
	addr.QuotedLocal = quoted
	addr.International = international
	addr.Valid = true
	return addr
}

func (a Address) reject(reason string) Address {
	a.Valid = false
	a.Reason = reason
	return a
}

// split locates the separating @ outside of any quoted section.
// Exactly one such @ must exist.
func split(raw string) (local, domain, reason string) {
	inQuotes := false
	atIdx := -1
	atCount := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			if inQuotes {
				i++ // skip escaped character
			}
		case '"':
			inQuotes = !inQuotes
		case '@':
			if !inQuotes {
				atCount++
				atIdx = i
			}
		}
	}
	if atCount != 1 {
		return "", "", "email must contain exactly one @"
	}
	return raw[:atIdx], raw[atIdx+1:], ""
}

// validateLocal checks the part before the @. The local part is either
// a dot-atom or, outside strict mode, a quoted string.
func validateLocal(local string, quoted, strict bool) string {
	if local == "" {
		return "local part is empty"
	}
	if len(local) > maxLocalLen {
		return "local part exceeds 64 characters"
	}

	if quoted {
		if strict {
			return "quoted local parts are not allowed in strict mode"
		}
		// Inside quotes all printable characters are allowed.
		for i := 1; i < len(local)-1; i++ {
			if local[i] < 32 || local[i] == 127 {
				return "local part contains a control character"
			}
		}
		return ""
	}

	if strict && strings.Contains(local, "+") {
		return "plus addressing is not allowed in strict mode"
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return "local part cannot start or end with a dot"
	}
	if strings.Contains(local, "..") {
		return "local part cannot contain consecutive dots"
	}
	for _, ch := range local {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '.':
		case ch < 128 && strings.ContainsRune(localSpecials, ch):
		case ch == ' ':
			return "local part contains an unescaped space"
		default:
			return "local part contains invalid character " + string(ch)
		}
	}
	return ""
}

// normalizeDomain validates the part after the @ and returns its
// lowercased ASCII form. Non-ASCII labels go through IDNA/punycode and
// the encoded result is validated again.
func normalizeDomain(domain string, allowInternational bool) (ascii, unicode string, international bool, reason string) {
	if domain == "" {
		return "", "", false, "domain is empty"
	}
	if len(domain) > maxDomainLen {
		return "", "", false, "domain exceeds 255 characters"
	}

	lower := strings.ToLower(domain)

	// Bracketed IP literal: [192.0.2.1] or [IPv6:2001:db8::1].
	if strings.HasPrefix(lower, "[") && strings.HasSuffix(lower, "]") {
		if reason := validateIPLiteral(lower); reason != "" {
			return "", "", false, reason
		}
		return lower, lower, false, ""
	}

	if hasNonASCII(lower) {
		if !allowInternational {
			return "", "", false, "internationalized domains are not allowed"
		}
		encoded, err := idna.Lookup.ToASCII(lower)
		if err != nil {
			return "", "", false, "internationalized domain could not be encoded"
		}
		if reason := validateLabels(encoded); reason != "" {
			return "", "", false, reason
		}
		return encoded, lower, true, ""
	}

	if reason := validateLabels(lower); reason != "" {
		return "", "", false, reason
	}
	return lower, lower, false, ""
}

func validateIPLiteral(lit string) string {
	inner := lit[1 : len(lit)-1]
	if v6, ok := strings.CutPrefix(inner, "ipv6:"); ok {
		ip := net.ParseIP(v6)
		if ip == nil || ip.To4() != nil {
			return "invalid IPv6 address literal"
		}
		return ""
	}
	ip := net.ParseIP(inner)
	if ip == nil || ip.To4() == nil {
		return "invalid IPv4 address literal"
	}
	return ""
}

func validateLabels(domain string) string {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "domain must have at least two labels"
	}
	for _, label := range labels {
		if label == "" {
			return "domain contains an empty label"
		}
		if len(label) > maxLabelLen {
			return "domain label exceeds 63 characters"
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return "domain label cannot start or end with a hyphen"
		}
		for _, ch := range label {
			if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') && ch != '-' {
				if ch == ' ' {
					return "domain contains an unescaped space"
				}
				return "domain label contains invalid character " + string(ch)
			}
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return "top-level domain must be at least two characters"
	}
	// Punycode TLDs (xn--…) carry digits and hyphens by construction.
	if !strings.HasPrefix(tld, "xn--") {
		for _, ch := range tld {
			if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') {
				return "top-level domain must be alphabetic"
			}
		}
	}
	return ""
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}
