package check_test

import (
	"context"
	"testing"

	"github.com/foxcpp/go-mockdns"
	"github.com/stretchr/testify/assert"

	"github.com/verimail/verimail/check"
)

func newHealthChecker(zones map[string]mockdns.Zone) *check.HealthChecker {
	return check.NewHealthChecker(check.HealthConfig{
		Resolver: &mockdns.Resolver{Zones: zones},
	})
}

func TestHealthCheckSPFAndDMARC(t *testing.T) {
	c := newHealthChecker(map[string]mockdns.Zone{
		"example.com.":        {TXT: []string{"v=spf1 include:_spf.example.net ~all"}},
		"_dmarc.example.com.": {TXT: []string{"v=DMARC1; p=reject"}},
	})

	h := c.Check(context.Background(), "example.com")
	assert.True(t, h.SPF)
	assert.True(t, h.DMARC)
	assert.False(t, h.DKIM)
	assert.False(t, h.Blacklisted)
	// 50 base, +5 SPF, +10 DMARC.
	assert.Equal(t, 65, h.Reputation)
}

func TestHealthCheckNoRecords(t *testing.T) {
	c := newHealthChecker(map[string]mockdns.Zone{
		"plain.com.": {A: []string{"192.0.2.40"}},
	})

	h := c.Check(context.Background(), "plain.com")
	assert.False(t, h.SPF)
	assert.False(t, h.DMARC)
	assert.Equal(t, 50, h.Reputation)
}

func TestHealthCheckUnrelatedTXTIsNotSPF(t *testing.T) {
	c := newHealthChecker(map[string]mockdns.Zone{
		"verify.com.": {TXT: []string{"google-site-verification=abc123"}},
	})

	h := c.Check(context.Background(), "verify.com")
	assert.False(t, h.SPF)
}

func TestHealthCheckTrustedProviderClampsAt100(t *testing.T) {
	c := newHealthChecker(map[string]mockdns.Zone{
		"gmail.com.":        {TXT: []string{"v=spf1 redirect=_spf.google.com"}},
		"_dmarc.gmail.com.": {TXT: []string{"v=DMARC1; p=none"}},
	})

	h := c.Check(context.Background(), "gmail.com")
	assert.Equal(t, 100, h.Reputation)
}

func TestHealthCheckBlacklist(t *testing.T) {
	c := newHealthChecker(map[string]mockdns.Zone{})

	h := c.Check(context.Background(), "spammer.test")
	assert.True(t, h.Blacklisted)

	h = c.Check(context.Background(), "honest.com")
	assert.False(t, h.Blacklisted)
}

func TestHealthCheckReputationHeuristics(t *testing.T) {
	c := newHealthChecker(map[string]mockdns.Zone{})
	ctx := context.Background()

	// Corporate-looking name gets a bonus over the base.
	assert.Equal(t, 70, c.Check(ctx, "acme-corp.com").Reputation)
	// Throwaway TLD pays a penalty.
	assert.Equal(t, 20, c.Check(ctx, "cheap.tk").Reputation)
}

func TestHealthCheckCaching(t *testing.T) {
	zones := map[string]mockdns.Zone{
		"cached-health.com.": {TXT: []string{"v=spf1 -all"}},
	}
	c := newHealthChecker(zones)
	ctx := context.Background()

	first := c.Check(ctx, "cached-health.com")
	assert.True(t, first.SPF)

	delete(zones, "cached-health.com.")
	second := c.Check(ctx, "cached-health.com")
	assert.Equal(t, first, second)
}
