package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verimail/verimail/check"
)

func TestTypoCheckerExactMisspelling(t *testing.T) {
	c := check.NewTypoChecker(check.TypoConfig{})

	res := c.Suggest("user@gmial.com")
	assert.True(t, res.TypoDetected)
	assert.Equal(t, "user@gmail.com", res.Suggestion)
	assert.Equal(t, 95, res.Confidence)
}

func TestTypoCheckerTLDFix(t *testing.T) {
	c := check.NewTypoChecker(check.TypoConfig{})

	res := c.Suggest("user@gmail.con")
	assert.True(t, res.TypoDetected)
	assert.Equal(t, "user@gmail.com", res.Suggestion)
	assert.Equal(t, 90, res.Confidence)
}

func TestTypoCheckerEditDistance(t *testing.T) {
	c := check.NewTypoChecker(check.TypoConfig{})

	res := c.Suggest("user@gmai.com")
	assert.True(t, res.TypoDetected)
	assert.Equal(t, "user@gmail.com", res.Suggestion)
	assert.Equal(t, 80, res.Confidence)

	// Too far from anything popular: no suggestion.
	res = c.Suggest("user@completely-original-domain.com")
	assert.False(t, res.TypoDetected)
	assert.Empty(t, res.Suggestion)
}

func TestTypoCheckerPopularDomainsAreNeverCorrected(t *testing.T) {
	c := check.NewTypoChecker(check.TypoConfig{})

	for _, domain := range []string{"gmail.com", "yahoo.com", "outlook.com", "proton.me"} {
		res := c.Suggest("user@" + domain)
		assert.False(t, res.TypoDetected, domain)
		assert.Empty(t, res.Suggestion, domain)
	}
}

func TestTypoCheckerStructuralIssues(t *testing.T) {
	c := check.NewTypoChecker(check.TypoConfig{})

	res := c.Suggest("no-at-sign")
	assert.False(t, res.TypoDetected)
	assert.NotEmpty(t, res.Issues)

	res = c.Suggest("user@domainwithouttld")
	assert.Contains(t, res.Issues, "domain is missing a TLD")

	res = c.Suggest("user@exam..ple.com")
	assert.Contains(t, res.Issues, "domain contains consecutive dots")
}

func TestTypoCheckerCachesPerInput(t *testing.T) {
	c := check.NewTypoChecker(check.TypoConfig{})

	first := c.Suggest("user@gmial.com")
	second := c.Suggest("USER@GMIAL.COM") // same input modulo case
	assert.Equal(t, first, second)
}
