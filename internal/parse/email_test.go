package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		wantOK bool
	}{
		{"valid simple", "user@example.com", true},
		{"valid with plus", "user+tag@example.com", true},
		{"valid with dots", "first.last@example.com", true},
		{"valid quoted local", `"user name"@example.com`, true},
		{"valid subdomain", "user@mail.example.co.uk", true},
		{"valid specials", "o'brien!#$%@example.com", true},
		{"empty", "", false},
		{"no at sign", "userexample.com", false},
		{"two at signs", "user@host@example.com", false},
		{"no domain", "user@", false},
		{"no local", "@example.com", false},
		{"double dot local", "user..name@example.com", false},
		{"leading dot local", ".user@example.com", false},
		{"trailing dot local", "user.@example.com", false},
		{"space in local", "user name@example.com", false},
		{"single label domain", "a@b", false},
		{"one letter TLD", "user@example.c", false},
		{"numeric TLD", "user@example.123", false},
		{"empty domain label", "user@exam..ple.com", false},
		{"label starts with hyphen", "user@-example.com", false},
		{"label ends with hyphen", "user@example-.com", false},
		{"IPv4 literal", "user@[192.0.2.1]", true},
		{"IPv6 literal", "user@[IPv6:2001:db8::1]", true},
		{"bad IPv4 literal", "user@[300.0.2.1]", false},
		{"IDN german", "user@münchen.de", true},
		{"IDN cyrillic", "user@почта.рф", true},
		{"existing punycode", "user@xn--mnchen-3ya.de", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := Parse(tt.email, Options{AllowInternational: true})
			assert.Equal(t, tt.wantOK, addr.Valid, "reason: %s", addr.Reason)
			if !tt.wantOK {
				assert.NotEmpty(t, addr.Reason)
			}
		})
	}
}

func TestParseLengthBoundaries(t *testing.T) {
	local := strings.Repeat("a", 64)
	domain := strings.Repeat("b", 63) + "." + strings.Repeat("c", 63) + "." + strings.Repeat("d", 63) + "." + strings.Repeat("e", 59) + ".com"
	email := local + "@" + domain
	assert.Len(t, email, 320)
	assert.True(t, Parse(email, Options{}).Valid)

	// 321 bytes total must be rejected.
	tooLong := "a" + email
	assert.Len(t, tooLong, 321)
	assert.False(t, Parse(tooLong, Options{}).Valid)

	// 65-byte local part must be rejected.
	assert.False(t, Parse(strings.Repeat("a", 65)+"@example.com", Options{}).Valid)
}

func TestParseStrictMode(t *testing.T) {
	assert.False(t, Parse(`"quoted"@example.com`, Options{Strict: true}).Valid)
	assert.False(t, Parse("user+tag@example.com", Options{Strict: true}).Valid)
	assert.True(t, Parse("user.tag@example.com", Options{Strict: true}).Valid)
}

func TestParseInternational(t *testing.T) {
	addr := Parse("user@münchen.de", Options{AllowInternational: true})
	assert.True(t, addr.Valid)
	assert.True(t, addr.International)
	assert.Equal(t, "xn--mnchen-3ya.de", addr.Domain)
	assert.Equal(t, "münchen.de", addr.DomainUnicode)

	denied := Parse("user@münchen.de", Options{AllowInternational: false})
	assert.False(t, denied.Valid)

	// Pure ASCII input is never flagged international.
	plain := Parse("user@example.com", Options{AllowInternational: true})
	assert.True(t, plain.Valid)
	assert.False(t, plain.International)
}

func TestParseNormalizesDomainCase(t *testing.T) {
	addr := Parse("User@EXAMPLE.Com", Options{})
	assert.True(t, addr.Valid)
	assert.Equal(t, "example.com", addr.Domain)
	assert.Equal(t, "User", addr.Local)
}
