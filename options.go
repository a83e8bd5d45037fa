package verimail

import (
	"net"
	"time"

	"github.com/verimail/verimail/cache"
	"github.com/verimail/verimail/check"
	"github.com/verimail/verimail/internal/disposable"
	"github.com/verimail/verimail/types"
)

// Engine defaults. Per-request options can override the SMTP settings
// and the batch size; the rest is fixed at construction.
const (
	DefaultSMTPFromDomain = "verimail.local"
	DefaultSMTPTimeout    = 5 * time.Second
	DefaultSMTPPort       = "25"
	DefaultBatchSize      = 10
	DefaultBatchDelay     = 100 * time.Millisecond
	DefaultMaxConcurrent  = 10

	bulkCacheTTL = 30 * time.Minute
)

// Config is the engine configuration. The zero value is usable; New
// fills in defaults.
type Config struct {
	// SMTPFromDomain is presented in HELO and as the MAIL FROM domain.
	SMTPFromDomain string
	// SMTPTimeout is the whole-dialogue deadline of one probe.
	SMTPTimeout time.Duration
	// SMTPPort is the port probed on the MX host.
	SMTPPort string
	// ProxyAddr optionally routes SMTP probes through a SOCKS5 proxy.
	ProxyAddr string
	// BatchSize is the bulk chunk size.
	BatchSize int
	// BatchDelay is the pause between bulk chunks.
	BatchDelay time.Duration
	// MaxConcurrent caps in-flight validations inside one chunk.
	MaxConcurrent int
}

func (c Config) withDefaults() Config {
	if c.SMTPFromDomain == "" {
		c.SMTPFromDomain = DefaultSMTPFromDomain
	}
	if c.SMTPTimeout <= 0 {
		c.SMTPTimeout = DefaultSMTPTimeout
	}
	if c.SMTPPort == "" {
		c.SMTPPort = DefaultSMTPPort
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchDelay < 0 {
		c.BatchDelay = DefaultBatchDelay
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	return c
}

// WithConfig replaces the engine configuration.
func (v *Validator) WithConfig(cfg Config) *Validator {
	v.cfg = cfg.withDefaults()
	return v
}

// WithResolver injects the DNS resolver used by the domain, MX and
// health stages. Intended for tests and for custom resolver setups.
func (v *Validator) WithResolver(r check.Resolver) *Validator {
	v.dns = check.NewDNSResolver(check.DNSConfig{Resolver: r})
	v.health = check.NewHealthChecker(check.HealthConfig{Resolver: r})
	return v
}

// WithDialer injects the dial function used by the SMTP prober.
// Intended for tests.
func (v *Validator) WithDialer(dial func(network, address string, timeout time.Duration) (net.Conn, error)) *Validator {
	v.dial = dial
	return v
}

// WithDisposableList layers a line-delimited blocklist file on top of
// the built-in disposable corpus. A missing file leaves the built-in
// corpus in place; the error is returned for logging but the validator
// stays usable.
func (v *Validator) WithDisposableList(path string) (*Validator, error) {
	corpus, err := disposable.Load(path)
	v.disposable = check.NewDisposableChecker(check.DisposableConfig{Corpus: corpus})
	return v, err
}

// WithResultCache replaces the bulk result cache. Pass a Redis-backed
// cache to share results between processes.
func (v *Validator) WithResultCache(c cache.Cache) *Validator {
	v.results = c
	return v
}

// resolved is the effective per-request option set after defaults.
// Syntax is not toggleable: parsing always runs because every later
// stage needs the parsed local and domain parts.
type resolved struct {
	checkDomain     bool
	checkMX         bool
	checkSMTP       bool
	checkDisposable bool
	checkTypos      bool

	strict             bool
	allowInternational bool
	enableCache        bool
	dedup              bool

	smtpTimeout    time.Duration
	smtpFromDomain string
	batchSize      int
}

// resolveOptions applies the wire-contract defaults. In bulk mode the
// SMTP probe defaults to off and must be requested explicitly.
func (v *Validator) resolveOptions(opts *types.Options, bulk bool) resolved {
	var o types.Options
	if opts != nil {
		o = *opts
	}

	r := resolved{
		checkDomain:        boolOr(o.CheckDomain, true),
		checkMX:            boolOr(o.CheckMX, true),
		checkSMTP:          boolOr(o.CheckSMTP, !bulk),
		checkDisposable:    boolOr(o.CheckDisposable, true),
		checkTypos:         boolOr(o.CheckTypos, true),
		strict:             o.Strict(),
		allowInternational: boolOr(o.AllowInternational, true),
		enableCache:        boolOr(o.EnableCache, true),
		dedup:              boolOr(o.Deduplicate, true),
		smtpTimeout:        v.cfg.SMTPTimeout,
		smtpFromDomain:     v.cfg.SMTPFromDomain,
		batchSize:          v.cfg.BatchSize,
	}
	if o.SMTPTimeoutMs > 0 {
		r.smtpTimeout = time.Duration(o.SMTPTimeoutMs) * time.Millisecond
	}
	if o.SMTPFromDomain != "" {
		r.smtpFromDomain = o.SMTPFromDomain
	}
	if o.BatchSize > 0 {
		r.batchSize = o.BatchSize
	}
	return r
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
