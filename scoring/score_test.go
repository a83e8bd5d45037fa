package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verimail/verimail/scoring"
	"github.com/verimail/verimail/types"
)

func neutral(res types.ValidationResult) *types.ValidationResult {
	if res.DomainHealth.Reputation == 0 {
		res.DomainHealth.Reputation = 50
	}
	return &res
}

func TestScoreFreeProviderMailbox(t *testing.T) {
	res := neutral(types.ValidationResult{
		SyntaxValid:     true,
		DomainValid:     true,
		MXFound:         true,
		SMTPDeliverable: types.DeliverableYes,
		IsFreeProvider:  true,
		TLSSupported:    true,
		DomainHealth:    types.DomainHealth{SPF: true, DMARC: true, Reputation: 100},
	})

	// 25+20+25+20+5+7-5+5+10 clamps at 100.
	assert.Equal(t, 100, scoring.Score(res, false))
}

func TestScoreDisposable(t *testing.T) {
	res := neutral(types.ValidationResult{
		SyntaxValid:     true,
		DomainValid:     true,
		MXFound:         true,
		SMTPDeliverable: types.DeliverableUnknown,
		Disposable:      true,
	})

	assert.Equal(t, 35, scoring.Score(res, false))
	assert.Equal(t, 25, scoring.Score(res, true))
}

func TestScoreBusinessMailbox(t *testing.T) {
	res := neutral(types.ValidationResult{
		SyntaxValid:     true,
		DomainValid:     true,
		MXFound:         true,
		SMTPDeliverable: types.DeliverableUnknown,
		DomainHealth:    types.DomainHealth{SPF: true, Reputation: 70},
	})

	// 25+20+25+5+5 plus reputation +4 plus business +10.
	assert.Equal(t, 94, scoring.Score(res, false))
	assert.True(t, scoring.IsBusiness(res))
}

func TestScoreTypoPenalty(t *testing.T) {
	res := neutral(types.ValidationResult{
		SyntaxValid:  true,
		TypoDetected: true,
		Suggestion:   "user@gmail.com",
	})

	assert.Equal(t, 10, scoring.Score(res, false))
	assert.Equal(t, 0, scoring.Score(res, true))

	// A detected typo with no usable suggestion carries no penalty.
	res.Suggestion = ""
	assert.Equal(t, 25, scoring.Score(res, false))
}

func TestScoreRolePenalty(t *testing.T) {
	res := neutral(types.ValidationResult{
		SyntaxValid:     true,
		DomainValid:     true,
		MXFound:         true,
		SMTPDeliverable: types.DeliverableYes,
		IsRoleBased:     true,
	})

	assert.Equal(t, 85, scoring.Score(res, false))
	assert.Equal(t, 75, scoring.Score(res, true))
}

func TestScoreBlacklistPenalty(t *testing.T) {
	res := neutral(types.ValidationResult{
		SyntaxValid:     true,
		DomainValid:     true,
		MXFound:         true,
		SMTPDeliverable: types.DeliverableYes,
		DomainHealth:    types.DomainHealth{Blacklisted: true, Reputation: 50},
	})

	// 90 + 10 business - 50.
	assert.Equal(t, 50, scoring.Score(res, false))
	assert.Equal(t, 40, scoring.Score(res, true))
}

func TestScoreNeverLeavesRange(t *testing.T) {
	worst := &types.ValidationResult{
		Disposable:   true,
		TypoDetected: true,
		Suggestion:   "x@y.com",
		IsRoleBased:  true,
		DomainHealth: types.DomainHealth{Blacklisted: true},
	}
	assert.Equal(t, 0, scoring.Score(worst, true))
}

func TestScoreIsPure(t *testing.T) {
	res := neutral(types.ValidationResult{
		SyntaxValid:     true,
		DomainValid:     true,
		MXFound:         true,
		SMTPDeliverable: types.DeliverableYes,
		DomainHealth:    types.DomainHealth{SPF: true, DMARC: true, Reputation: 80},
	})

	first := scoring.Score(res, false)
	assert.Equal(t, first, scoring.Score(res, false))
	assert.Equal(t, first, scoring.Score(res, false))
}

func TestAddressReputation(t *testing.T) {
	tests := []struct {
		name      string
		local     string
		domainRep int
		want      int
	}{
		{"plain name", "john.doe", 50, 50},
		{"good domain lifts", "john.doe", 64, 57},
		{"noreply", "noreply", 50, 30},
		{"no-reply variant", "no-reply", 50, 30},
		{"test with digit run", "test123456", 50, 25},
		{"too short", "ab", 50, 40},
		{"too long", "a-very-long-local-part-name", 50, 45},
		{"bad domain drags", "john.doe", 20, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoring.AddressReputation(tt.local, tt.domainRep))
		})
	}
}
