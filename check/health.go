package check

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verimail/verimail/internal/providers"
	"github.com/verimail/verimail/internal/ttlcache"
	"github.com/verimail/verimail/types"
)

// Static blacklist hook. Real RBL integration would replace this set;
// until then only obviously-bad placeholder domains are listed so the
// field and the scoring path stay exercised.
var staticBlacklist = map[string]struct{}{
	"blacklisted.example":   {},
	"spam-source.example":   {},
	"banned-domain.example": {},
	"blocked.invalid":       {},
	"spammer.test":          {},
}

// TLDs considered common enough that anything else counts toward the
// corporate heuristic.
var commonTLDs = map[string]struct{}{
	"com": {}, "net": {}, "org": {}, "edu": {}, "gov": {}, "mil": {},
	"int": {}, "info": {}, "biz": {}, "io": {}, "co": {}, "me": {},
	"us": {}, "uk": {}, "de": {}, "fr": {}, "es": {}, "it": {}, "nl": {},
	"ru": {}, "jp": {}, "cn": {}, "in": {}, "br": {}, "au": {}, "ca": {},
}

// HealthConfig is the domain-health probe configuration.
type HealthConfig struct {
	// Timeout bounds each TXT lookup. Default: 5s.
	Timeout time.Duration
	// CacheTTL bounds how long probe results are reused. Default: 5m.
	CacheTTL time.Duration
	// Resolver is injectable for testing. Defaults to net.DefaultResolver.
	Resolver Resolver
	// Blacklist overrides the static blacklist set when non-nil.
	Blacklist map[string]struct{}
}

// HealthChecker probes the authentication posture of a domain: SPF and
// DMARC via TXT records, a static blacklist membership test, and a
// reputation estimate. DKIM is never probed because no selector is
// known; it is reported false and remains a scoring input only.
type HealthChecker struct {
	cfg   HealthConfig
	cache *ttlcache.Cache[types.DomainHealth]
}

func NewHealthChecker(cfg HealthConfig) *HealthChecker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Resolver == nil {
		cfg.Resolver = defaultResolver()
	}
	if cfg.Blacklist == nil {
		cfg.Blacklist = staticBlacklist
	}
	return &HealthChecker{
		cfg:   cfg,
		cache: ttlcache.New[types.DomainHealth](cfg.CacheTTL),
	}
}

// Check probes domain. TXT lookups that error out are treated as
// "record not present"; the probe itself never fails a validation.
func (c *HealthChecker) Check(ctx context.Context, domain string) types.DomainHealth {
	domain = strings.ToLower(domain)
	if h, ok := c.cache.Get(domain); ok {
		return h
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var health types.DomainHealth
	g, lookupCtx := errgroup.WithContext(lookupCtx)
	g.Go(func() error {
		health.SPF = c.hasTXTPrefix(lookupCtx, domain, "v=spf1")
		return nil
	})
	g.Go(func() error {
		health.DMARC = c.hasTXTPrefix(lookupCtx, "_dmarc."+domain, "v=DMARC1")
		return nil
	})
	_ = g.Wait() // lookups only report presence, never errors

	_, health.Blacklisted = c.cfg.Blacklist[domain]
	health.Reputation = domainReputation(domain, health)

	c.cache.Set(domain, health)
	return health
}

func (c *HealthChecker) hasTXTPrefix(ctx context.Context, name, prefix string) bool {
	records, err := c.cfg.Resolver.LookupTXT(ctx, name)
	if err != nil {
		return false
	}
	for _, rec := range records {
		if strings.HasPrefix(strings.TrimSpace(rec), prefix) {
			return true
		}
	}
	return false
}

// domainReputation estimates the domain's standing in [0,100]:
// 50 base, trusted providers +40, corporate heuristic +20, +5 per
// positive SPF/DKIM and +10 for DMARC, throwaway TLDs −30.
func domainReputation(domain string, health types.DomainHealth) int {
	rep := 50
	if providers.IsTrusted(domain) {
		rep += 40
	} else if looksCorporate(domain) {
		rep += 20
	}
	if health.SPF {
		rep += 5
	}
	if health.DKIM {
		rep += 5
	}
	if health.DMARC {
		rep += 10
	}
	if _, ok := suspiciousTLDs[tldOf(domain)]; ok {
		rep -= 30
	}
	if rep < 0 {
		rep = 0
	}
	if rep > 100 {
		rep = 100
	}
	return rep
}

func looksCorporate(domain string) bool {
	if strings.Contains(domain, "corp") || strings.Contains(domain, "company") {
		return true
	}
	tld := tldOf(domain)
	if tld == "" {
		return false
	}
	if _, ok := suspiciousTLDs[tld]; ok {
		return false
	}
	_, common := commonTLDs[tld]
	return !common
}
