package check

import (
	"regexp"
	"strings"
	"time"

	"github.com/verimail/verimail/internal/disposable"
	"github.com/verimail/verimail/internal/ttlcache"
)

// TLDs handed out for free and heavily abused by throwaway providers.
var suspiciousTLDs = map[string]struct{}{
	"tk": {}, "ml": {}, "ga": {}, "cf": {},
}

// Patterns that mark a domain as disposable on their own.
var disposablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`temp.*mail`),
	regexp.MustCompile(`\d+min`),
	regexp.MustCompile(`throwaway`),
	regexp.MustCompile(`disposable`),
}

// Broader heuristic catalogue: a single hit is circumstantial, two or
// more classify the domain as disposable.
var heuristicCatalogue = []*regexp.Regexp{
	// time-themed
	regexp.MustCompile(`\d+(min|minute|hour|day)`),
	regexp.MustCompile(`temp|tmp`),
	regexp.MustCompile(`short|quick|instant|moment`),
	// action-themed
	regexp.MustCompile(`throw|burn|discard|drop|destroy|trash|junk`),
	// purpose-themed
	regexp.MustCompile(`spam|fake|dummy|nospam`),
	// privacy-themed
	regexp.MustCompile(`anon|hide|priv|incognito|mask|guerrilla`),
}

// DisposableConfig is the disposable classifier configuration.
type DisposableConfig struct {
	// Corpus is the loaded blocklist. Defaults to the bundled list.
	Corpus *disposable.Corpus
	// CacheTTL bounds how long classifications are reused. Default: 24h.
	CacheTTL time.Duration
}

// DisposableChecker classifies domains as disposable via blocklist
// membership, subdomain inheritance and pattern heuristics.
type DisposableChecker struct {
	corpus *disposable.Corpus
	cache  *ttlcache.Cache[bool]
}

func NewDisposableChecker(cfg DisposableConfig) *DisposableChecker {
	if cfg.Corpus == nil {
		cfg.Corpus = disposable.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &DisposableChecker{
		corpus: cfg.Corpus,
		cache:  ttlcache.New[bool](cfg.CacheTTL),
	}
}

// IsDisposable reports whether domain belongs to a throwaway-mailbox
// provider.
func (c *DisposableChecker) IsDisposable(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	if v, ok := c.cache.Get(domain); ok {
		return v
	}
	v := c.classify(domain)
	c.cache.Set(domain, v)
	return v
}

func (c *DisposableChecker) classify(domain string) bool {
	if c.corpus.Contains(domain) {
		return true
	}
	// Subdomain inheritance: mail.10minutemail.com is as disposable as
	// its registered parent.
	if parent := registeredParent(domain); parent != domain && c.corpus.Contains(parent) {
		return true
	}
	for _, re := range disposablePatterns {
		if re.MatchString(domain) {
			return true
		}
	}
	if _, ok := suspiciousTLDs[tldOf(domain)]; ok {
		return true
	}
	if digitRatio(domain) > 0.3 && strings.Contains(domain, "mail") {
		return true
	}
	return heuristicMatches(domain) >= 2
}

// RiskScore grades how likely domain is disposable, in [0,100].
// Blocklist membership dominates; heuristics contribute less.
func (c *DisposableChecker) RiskScore(domain string) int {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return 0
	}

	score := 0
	switch {
	case c.corpus.Contains(domain):
		score = 95
	case registeredParent(domain) != domain && c.corpus.Contains(registeredParent(domain)):
		score = 90
	}
	for _, re := range disposablePatterns {
		if re.MatchString(domain) {
			score = maxInt(score, 75)
			break
		}
	}
	if _, ok := suspiciousTLDs[tldOf(domain)]; ok {
		score = maxInt(score, 60)
	}
	if digitRatio(domain) > 0.3 && strings.Contains(domain, "mail") {
		score = maxInt(score, 65)
	}
	if n := heuristicMatches(domain); n > 0 {
		score = maxInt(score, minInt(n*30, 80))
	}
	return score
}

func heuristicMatches(domain string) int {
	n := 0
	for _, re := range heuristicCatalogue {
		if re.MatchString(domain) {
			n++
		}
	}
	return n
}

// registeredParent approximates the registrable domain by keeping the
// last two labels.
func registeredParent(domain string) string {
	labels := strings.Split(domain, ".")
	if len(labels) <= 2 {
		return domain
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

func tldOf(domain string) string {
	if dot := strings.LastIndex(domain, "."); dot >= 0 {
		return domain[dot+1:]
	}
	return ""
}

func digitRatio(domain string) float64 {
	if domain == "" {
		return 0
	}
	digits := 0
	for _, ch := range domain {
		if ch >= '0' && ch <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(domain))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
