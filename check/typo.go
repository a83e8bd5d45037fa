package check

import (
	"strings"
	"time"

	"github.com/verimail/verimail/internal/levenshtein"
	"github.com/verimail/verimail/internal/providers"
	"github.com/verimail/verimail/internal/ttlcache"
)

// Correction confidence tiers, highest first: exact misspelling hit,
// TLD-only substitution, bounded edit-distance match.
const (
	confidenceExactHit     = 95
	confidenceTLDFix       = 90
	confidenceEditDistance = 80
)

// TypoConfig is the typo corrector configuration.
type TypoConfig struct {
	// MaxDistance bounds the edit-distance search. Default: 2.
	MaxDistance int
	// CacheTTL bounds how long per-input results are reused. Default: 1h.
	CacheTTL time.Duration
}

// Correction is one proposed fix for a mistyped address.
type Correction struct {
	Suggestion string `json:"suggestion"`
	Confidence int    `json:"confidence"`
}

// TypoResult is the outcome of the typo check for one input.
type TypoResult struct {
	TypoDetected bool         `json:"typo_detected"`
	Suggestion   string       `json:"suggestion,omitempty"`
	Corrections  []Correction `json:"corrections,omitempty"`
	Issues       []string     `json:"issues,omitempty"`
	Confidence   int          `json:"confidence"`
}

// TypoChecker finds likely misspellings of well-known consumer domains.
// Popular domains are never "corrected" to a neighbor, which keeps
// gmail.com from being flagged as a typo of gmail.com.
type TypoChecker struct {
	cfg   TypoConfig
	cache *ttlcache.Cache[TypoResult]
}

func NewTypoChecker(cfg TypoConfig) *TypoChecker {
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = 2
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &TypoChecker{
		cfg:   cfg,
		cache: ttlcache.New[TypoResult](cfg.CacheTTL),
	}
}

// Suggest analyzes email for domain-level typos and structural issues.
func (c *TypoChecker) Suggest(email string) TypoResult {
	key := strings.ToLower(strings.TrimSpace(email))
	if res, ok := c.cache.Get(key); ok {
		return res
	}
	res := c.analyze(key)
	c.cache.Set(key, res)
	return res
}

func (c *TypoChecker) analyze(email string) TypoResult {
	var res TypoResult

	at := strings.LastIndex(email, "@")
	if at < 0 {
		res.Issues = append(res.Issues, "address is missing @")
		return res
	}
	local, domain := email[:at], email[at+1:]
	if local == "" {
		res.Issues = append(res.Issues, "address has an empty local part")
		return res
	}
	if domain == "" {
		res.Issues = append(res.Issues, "address has an empty domain")
		return res
	}

	// Structural issues are flagged even when no correction exists.
	if !strings.Contains(domain, ".") {
		res.Issues = append(res.Issues, "domain is missing a TLD")
	}
	if strings.Contains(domain, "..") {
		res.Issues = append(res.Issues, "domain contains consecutive dots")
	}
	if strings.ContainsAny(email, " \t") {
		res.Issues = append(res.Issues, "address contains whitespace")
	}

	// Whitelisted domains are authoritative; never second-guess them.
	if providers.IsPopular(domain) {
		return res
	}

	if canonical, ok := providers.Misspellings[domain]; ok {
		return c.correction(res, local, canonical, confidenceExactHit)
	}

	if fixed, ok := fixTLD(domain); ok {
		return c.correction(res, local, fixed, confidenceTLDFix)
	}

	if nearest, ok := c.nearestPopular(domain); ok {
		return c.correction(res, local, nearest, confidenceEditDistance)
	}

	return res
}

func (c *TypoChecker) correction(res TypoResult, local, domain string, confidence int) TypoResult {
	res.TypoDetected = true
	res.Suggestion = local + "@" + domain
	res.Confidence = confidence
	res.Corrections = append(res.Corrections, Correction{
		Suggestion: res.Suggestion,
		Confidence: confidence,
	})
	return res
}

// fixTLD tries a TLD-only substitution such as .con → .com.
func fixTLD(domain string) (string, bool) {
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 {
		return "", false
	}
	name, tld := domain[:dot], domain[dot+1:]
	fixed, ok := providers.TLDFixes[tld]
	if !ok {
		return "", false
	}
	return name + "." + fixed, true
}

// nearestPopular scans the whitelist for the closest domain whose edit
// distance falls in [1, MaxDistance].
func (c *TypoChecker) nearestPopular(domain string) (string, bool) {
	bestDist := c.cfg.MaxDistance + 1
	best := ""
	for _, p := range providers.Popular {
		dist := levenshtein.DistanceWithin(domain, p, c.cfg.MaxDistance)
		if dist >= 1 && dist < bestDist {
			bestDist = dist
			best = p
		}
	}
	return best, best != ""
}
