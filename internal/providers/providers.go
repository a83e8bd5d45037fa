// Package providers holds the fixed corpora shared by the pipeline
// stages: popular consumer domains, misspelling mappings, free and
// trusted provider sets, and role-account local parts. Everything here
// is immutable after process start.
package providers

import "strings"

// Popular is the whitelist of well-known consumer domains used as
// targets for bounded edit-distance typo search. A domain on this list
// is never itself "corrected".
var Popular = []string{
	"gmail.com", "googlemail.com",
	"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de",
	"outlook.com", "hotmail.com", "hotmail.co.uk", "live.com", "msn.com",
	"icloud.com", "me.com", "mac.com",
	"protonmail.com", "proton.me",
	"aol.com",
	"zoho.com",
	"yandex.com", "yandex.ru",
	"mail.com",
	"gmx.com", "gmx.net", "gmx.de",
	"fastmail.com",
	"tutanota.com",
	"comcast.net", "verizon.net", "att.net",
}

// Misspellings maps frequently mistyped domains to their canonical
// spelling. Exact hits are the highest-confidence corrections.
var Misspellings = map[string]string{
	"gmial.com":      "gmail.com",
	"gmal.com":       "gmail.com",
	"gamil.com":      "gmail.com",
	"gmaill.com":     "gmail.com",
	"gmali.com":      "gmail.com",
	"gnail.com":      "gmail.com",
	"gmil.com":       "gmail.com",
	"yaho.com":       "yahoo.com",
	"yahooo.com":     "yahoo.com",
	"yhoo.com":       "yahoo.com",
	"yahou.com":      "yahoo.com",
	"hotmai.com":     "hotmail.com",
	"hotmal.com":     "hotmail.com",
	"hotmial.com":    "hotmail.com",
	"hotamil.com":    "hotmail.com",
	"outlok.com":     "outlook.com",
	"outloook.com":   "outlook.com",
	"outlookk.com":   "outlook.com",
	"iclou.com":      "icloud.com",
	"icloude.com":    "icloud.com",
	"protonmial.com": "protonmail.com",
}

// TLDFixes maps mistyped TLDs to the intended one. A hit counts as a
// TLD-only substitution and ranks just below an exact misspelling hit.
var TLDFixes = map[string]string{
	"con":  "com",
	"cmo":  "com",
	"vom":  "com",
	"comm": "com",
	"cm":   "com",
	"om":   "com",
	"ner":  "net",
	"nte":  "net",
	"ogr":  "org",
	"orgg": "org",
}

// free is the set of providers handing out mailboxes to anyone.
var free = toSet(
	"gmail.com", "googlemail.com", "yahoo.com", "yahoo.co.uk", "yahoo.fr",
	"yahoo.de", "outlook.com", "hotmail.com", "hotmail.co.uk", "live.com",
	"msn.com", "icloud.com", "me.com", "mac.com", "aol.com", "zoho.com",
	"protonmail.com", "proton.me", "yandex.com", "yandex.ru", "mail.com",
	"gmx.com", "gmx.net", "gmx.de", "fastmail.com", "tutanota.com",
)

// trusted is the reputation bonus set of the domain-health probe.
var trusted = toSet(
	"gmail.com", "outlook.com", "yahoo.com", "hotmail.com",
	"icloud.com", "aol.com", "protonmail.com",
)

// gmailFamily are the aliases that share Gmail's dot- and
// plus-insensitive mailbox semantics.
var gmailFamily = toSet("gmail.com", "googlemail.com")

// roleAccounts are local parts addressing a function, not a person.
var roleAccounts = toSet(
	"admin", "administrator", "webmaster", "hostmaster", "postmaster",
	"info", "contact", "support", "help", "sales", "marketing",
	"billing", "accounts", "abuse", "security", "noc", "office",
	"mail", "team", "hello", "hr", "jobs", "careers", "press",
	"media", "legal", "privacy", "feedback", "enquiries", "newsletter",
	"noreply", "no-reply", "donotreply",
)

// IsFree reports whether domain belongs to a free mailbox provider.
func IsFree(domain string) bool {
	_, ok := free[strings.ToLower(domain)]
	return ok
}

// IsTrusted reports whether domain is in the trusted-provider set.
func IsTrusted(domain string) bool {
	_, ok := trusted[strings.ToLower(domain)]
	return ok
}

// IsGmailFamily reports whether domain shares Gmail mailbox semantics.
func IsGmailFamily(domain string) bool {
	_, ok := gmailFamily[strings.ToLower(domain)]
	return ok
}

// IsRole reports whether the local part addresses a role rather than a
// person. A plus suffix does not change the role nature of the base.
func IsRole(local string) bool {
	local = strings.ToLower(local)
	if i := strings.IndexByte(local, '+'); i >= 0 {
		local = local[:i]
	}
	_, ok := roleAccounts[local]
	return ok
}

// IsPopular reports whether domain is on the popular whitelist.
func IsPopular(domain string) bool {
	domain = strings.ToLower(domain)
	for _, p := range Popular {
		if domain == p {
			return true
		}
	}
	return false
}

// GmailNormalize maps a Gmail-family address to its canonical mailbox:
// dots removed, +tag stripped, domain folded to gmail.com. The second
// return value is false when the domain is not in the Gmail family.
func GmailNormalize(local, domain string) (string, bool) {
	if !IsGmailFamily(domain) {
		return "", false
	}
	local = strings.ToLower(local)
	if i := strings.IndexByte(local, '+'); i >= 0 {
		local = local[:i]
	}
	local = strings.ReplaceAll(local, ".", "")
	return local + "@gmail.com", true
}

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
