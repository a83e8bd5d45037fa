package check

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/verimail/verimail/internal/ttlcache"
)

// Resolver is the DNS surface the pipeline needs. *net.Resolver
// satisfies it, as does mockdns.Resolver in tests.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

func defaultResolver() Resolver { return net.DefaultResolver }

// DNSConfig is the domain resolver configuration.
type DNSConfig struct {
	// Timeout bounds each individual lookup. Default: 5s.
	Timeout time.Duration
	// CacheTTL bounds how long lookup results are reused. Default: 5m.
	CacheTTL time.Duration
	// Resolver is injectable for testing. Defaults to net.DefaultResolver.
	Resolver Resolver
}

// DomainResult is the outcome of an A/AAAA existence check.
type DomainResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// MXRecord is one mail exchanger, lowest priority first after sorting.
type MXRecord struct {
	Host     string `json:"host"`
	Priority uint16 `json:"priority"`
}

// MXResult is the outcome of an MX lookup, including the implicit-MX
// fallback of RFC 5321 §5.1.
type MXResult struct {
	Found bool `json:"found"`
	// Records is empty when delivery would go through the implicit MX
	// (an A record on the bare domain).
	Records []MXRecord `json:"records,omitempty"`
	// DeliverabilityScore estimates how well the MX setup can receive
	// mail, in [0,100].
	DeliverabilityScore int    `json:"deliverability_score"`
	Reason              string `json:"reason,omitempty"`
}

// Exchangers whose presence marks a professionally hosted MX setup.
var wellKnownMXProviders = []string{
	"google.com", "outlook.com", "microsoft.com", "amazon.com",
}

// DNSResolver resolves domain existence and MX records with a
// TTL-bounded cache per keyspace.
type DNSResolver struct {
	cfg     DNSConfig
	domains *ttlcache.Cache[DomainResult]
	mx      *ttlcache.Cache[MXResult]
}

func NewDNSResolver(cfg DNSConfig) *DNSResolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Resolver == nil {
		cfg.Resolver = defaultResolver()
	}
	return &DNSResolver{
		cfg:     cfg,
		domains: ttlcache.New[DomainResult](cfg.CacheTTL),
		mx:      ttlcache.New[MXResult](cfg.CacheTTL),
	}
}

// ResolveDomain reports whether the domain resolves to at least one
// A/AAAA address. The domain must already be in ASCII form.
func (r *DNSResolver) ResolveDomain(ctx context.Context, domain string) DomainResult {
	domain = strings.ToLower(domain)
	if res, ok := r.domains.Get(domain); ok {
		return res
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	res := DomainResult{Valid: true}
	addrs, err := r.cfg.Resolver.LookupHost(lookupCtx, domain)
	if err != nil || len(addrs) == 0 {
		res = DomainResult{Valid: false, Reason: fmt.Sprintf("domain does not resolve: %v", err)}
		if err == nil {
			res.Reason = "domain has no A or AAAA records"
		}
	}
	r.domains.Set(domain, res)
	return res
}

// ResolveMX looks up the mail exchangers for domain, sorted ascending
// by priority. When no MX exists but the domain itself resolves, the
// implicit-MX fallback reports found with a reduced deliverability
// score and an empty record list.
func (r *DNSResolver) ResolveMX(ctx context.Context, domain string) MXResult {
	domain = strings.ToLower(domain)
	if res, ok := r.mx.Get(domain); ok {
		return res
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	res := r.lookupMX(lookupCtx, domain)
	r.mx.Set(domain, res)
	return res
}

func (r *DNSResolver) lookupMX(ctx context.Context, domain string) MXResult {
	records, err := r.cfg.Resolver.LookupMX(ctx, domain)
	if err != nil || len(records) == 0 {
		// RFC 5321 §5.1: no MX record means the address records of the
		// domain itself act as an implicit MX.
		if addrs, aErr := r.cfg.Resolver.LookupHost(ctx, domain); aErr == nil && len(addrs) > 0 {
			return MXResult{
				Found:               true,
				DeliverabilityScore: 60,
				Reason:              "no MX records, falling back to A record (implicit MX)",
			}
		}
		reason := "domain has no MX records"
		if err != nil {
			reason = fmt.Sprintf("MX lookup failed: %v", err)
		}
		return MXResult{Found: false, Reason: reason}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Pref < records[j].Pref })

	out := make([]MXRecord, 0, len(records))
	for _, rec := range records {
		host := strings.TrimSuffix(strings.ToLower(rec.Host), ".")
		if host == "" {
			continue
		}
		out = append(out, MXRecord{Host: host, Priority: rec.Pref})
	}
	if len(out) == 0 {
		return MXResult{Found: false, Reason: "MX records have empty exchanger hosts"}
	}

	return MXResult{
		Found:               true,
		Records:             out,
		DeliverabilityScore: deliverabilityScore(out),
	}
}

// deliverabilityScore starts at 70 and rewards redundancy and
// well-known hosting, capped at 100.
func deliverabilityScore(records []MXRecord) int {
	score := 70
	if len(records) > 1 {
		score += 10
	}
	if len(records) > 2 {
		score += 5
	}
	for _, rec := range records {
		if hasWellKnownProvider(rec.Host) {
			score += 15
			break
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

func hasWellKnownProvider(host string) bool {
	for _, p := range wellKnownMXProviders {
		if strings.Contains(host, p) {
			return true
		}
	}
	return false
}

// ClearCache drops both lookup caches.
func (r *DNSResolver) ClearCache() {
	r.domains.Clear()
	r.mx.Clear()
}
