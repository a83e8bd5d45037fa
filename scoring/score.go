// Package scoring derives the confidence score and the address
// reputation from a completed validation record. Both functions are
// pure: the same record always yields the same number, so a score can
// be re-derived from a stored result at any time.
package scoring

import (
	"strings"

	"github.com/verimail/verimail/types"
)

// Weights of the positive signals.
const (
	weightSyntax      = 25
	weightDomain      = 20
	weightMX          = 25
	weightSMTPYes     = 20
	weightSMTPUnknown = 5
	weightSPF         = 5
	weightDMARC       = 7
	weightDKIM        = 3
	weightTLS         = 5
	weightBusiness    = 10
)

type penalties struct {
	disposable  int
	blacklisted int
	role        int
	free        int
	typo        int
}

var (
	defaultPenalties = penalties{disposable: 40, blacklisted: 50, role: 15, free: 5, typo: 15}
	strictPenalties  = penalties{disposable: 50, blacklisted: 60, role: 25, free: 10, typo: 25}
)

// Score computes the confidence score in [0,100] from the signals
// already recorded on res. Strict mode only changes the penalty
// coefficients; the positive weights are fixed.
func Score(res *types.ValidationResult, strict bool) int {
	pen := defaultPenalties
	if strict {
		pen = strictPenalties
	}

	score := 0
	if res.SyntaxValid {
		score += weightSyntax
	}
	if res.DomainValid {
		score += weightDomain
	}
	if res.MXFound {
		score += weightMX
	}
	switch res.SMTPDeliverable {
	case types.DeliverableYes:
		score += weightSMTPYes
	case types.DeliverableUnknown:
		score += weightSMTPUnknown
	}
	if res.DomainHealth.SPF {
		score += weightSPF
	}
	if res.DomainHealth.DMARC {
		score += weightDMARC
	}
	if res.DomainHealth.DKIM {
		score += weightDKIM
	}

	if res.Disposable {
		score -= pen.disposable
	}
	if res.DomainHealth.Blacklisted {
		score -= pen.blacklisted
	}
	if res.IsRoleBased {
		score -= pen.role
	}
	if res.IsFreeProvider {
		score -= pen.free
	}
	if res.TypoDetected && res.Suggestion != "" {
		score -= pen.typo
	}

	if res.TLSSupported {
		score += weightTLS
	}
	score += (res.DomainHealth.Reputation - 50) / 5
	if IsBusiness(res) {
		score += weightBusiness
	}

	return clamp(score)
}

// IsBusiness reports whether the address looks like a business mailbox:
// real MX infrastructure on a domain that is neither a free provider
// nor disposable.
func IsBusiness(res *types.ValidationResult) bool {
	return res.MXFound && !res.IsFreeProvider && !res.Disposable
}

// AddressReputation estimates the standing of the local part in
// [0,100], shifted by half the domain's deviation from a neutral 50.
func AddressReputation(local string, domainReputation int) int {
	rep := 50
	lower := strings.ToLower(local)

	switch {
	case strings.Contains(lower, "noreply") || strings.Contains(lower, "no-reply"):
		rep -= 20
	case strings.Contains(lower, "test") || strings.Contains(lower, "demo"):
		rep -= 15
	}
	if longestDigitRun(lower) >= 5 {
		rep -= 10
	}
	if len(local) < 3 {
		rep -= 10
	}
	if len(local) > 20 {
		rep -= 5
	}
	rep += (domainReputation - 50) / 2

	return clamp(rep)
}

func longestDigitRun(s string) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
