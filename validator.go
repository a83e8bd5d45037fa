package verimail

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/verimail/verimail/cache"
	"github.com/verimail/verimail/check"
	"github.com/verimail/verimail/internal/providers"
	"github.com/verimail/verimail/monitoring"
	"github.com/verimail/verimail/scoring"
	"github.com/verimail/verimail/types"
)

// Verdict thresholds on the confidence score.
const (
	validThreshold       = 85
	validThresholdStrict = 90
	riskyThreshold       = 65
	riskyThresholdStrict = 70
)

// Validator drives the validation pipeline. Construct with New, then
// optionally chain With… methods; a Validator is safe for concurrent
// use once configured.
type Validator struct {
	cfg Config

	typo       *check.TypoChecker
	disposable *check.DisposableChecker
	dns        *check.DNSResolver
	health     *check.HealthChecker

	dial    func(network, address string, timeout time.Duration) (net.Conn, error)
	results cache.Cache
}

// New creates a Validator with the default configuration: built-in
// disposable corpus, system DNS resolver, direct SMTP connections and
// an in-process bulk result cache.
func New() *Validator {
	v := &Validator{
		cfg:        Config{}.withDefaults(),
		typo:       check.NewTypoChecker(check.TypoConfig{}),
		disposable: check.NewDisposableChecker(check.DisposableConfig{}),
		dns:        check.NewDNSResolver(check.DNSConfig{}),
		health:     check.NewHealthChecker(check.HealthConfig{}),
		results:    cache.NewMemory(bulkCacheTTL),
	}
	return v
}

// Validate runs the full pipeline on one address. It never returns an
// error: every failure mode is reported inside the result.
func (v *Validator) Validate(ctx context.Context, email string, opts *types.Options) types.ValidationResult {
	r := v.resolveOptions(opts, false)
	return v.validate(ctx, email, r)
}

func (v *Validator) validate(ctx context.Context, email string, r resolved) types.ValidationResult {
	start := time.Now()
	res := types.ValidationResult{
		Email:           email,
		SMTPDeliverable: types.DeliverableUnknown,
		// Neutral until the health probe runs.
		DomainHealth: types.DomainHealth{Reputation: 50},
	}

	// Syntax always runs: the other stages need the parsed local and
	// domain parts.
	syntax := check.NewSyntaxChecker(check.SyntaxConfig{
		Strict:             r.strict,
		AllowInternational: r.allowInternational,
	})
	addr := syntax.Check(email)
	res.ChecksPerformed = append(res.ChecksPerformed, "syntax")
	res.SyntaxValid = addr.Valid
	res.IsInternational = addr.International
	if !addr.Valid {
		res.Status = types.StatusInvalid
		res.Reason = addr.Reason
		return v.finalize(&res, r, start)
	}

	local, domain := addr.Local, addr.Domain
	res.NormalizedEmail = strings.ToLower(local) + "@" + domain
	res.HasPlusAlias = strings.Contains(local, "+")
	res.IsRoleBased = providers.IsRole(local)
	res.IsFreeProvider = providers.IsFree(domain)
	if normalized, ok := providers.GmailNormalize(local, domain); ok {
		res.GmailNormalized = normalized
	}

	if r.checkTypos {
		res.ChecksPerformed = append(res.ChecksPerformed, "typo")
		t := v.typo.Suggest(res.NormalizedEmail)
		res.TypoDetected = t.TypoDetected
		res.Suggestion = t.Suggestion
	}

	if r.checkDisposable {
		res.ChecksPerformed = append(res.ChecksPerformed, "disposable")
		res.Disposable = v.disposable.IsDisposable(domain)
	}

	if r.checkDomain {
		res.ChecksPerformed = append(res.ChecksPerformed, "domain")
		d := v.dns.ResolveDomain(ctx, domain)
		res.DomainValid = d.Valid
		if !d.Valid {
			res.Status = types.StatusInvalid
			res.Reason = d.Reason
			return v.finalize(&res, r, start)
		}
	}

	var mx check.MXResult
	if r.checkMX {
		res.ChecksPerformed = append(res.ChecksPerformed, "mx")
		mx = v.dns.ResolveMX(ctx, domain)
		res.MXFound = mx.Found
		res.Factors.Deliverability = mx.DeliverabilityScore
		if !mx.Found {
			// Nothing accepts mail for the domain, so there is nothing
			// to probe. Unknown is reserved for a skipped probe.
			res.SMTPDeliverable = types.DeliverableNo
		}
	}

	if r.checkSMTP && res.MXFound {
		res.ChecksPerformed = append(res.ChecksPerformed, "smtp")
		v.probeSMTP(&res, r, domain, mx)
	}

	res.ChecksPerformed = append(res.ChecksPerformed, "health")
	res.DomainHealth = v.health.Check(ctx, domain)

	return v.finalize(&res, r, start)
}

// probeSMTP runs the envelope dialogue against the best MX host. With
// an implicit MX (A record only) the domain itself is the host. The
// catch-all probe always follows an accepted target recipient.
func (v *Validator) probeSMTP(res *types.ValidationResult, r resolved, domain string, mx check.MXResult) {
	host := domain
	if len(mx.Records) > 0 {
		host = mx.Records[0].Host
	}

	prober := check.NewSMTPProber(check.SMTPConfig{
		FromDomain: r.smtpFromDomain,
		Timeout:    r.smtpTimeout,
		Port:       v.cfg.SMTPPort,
		ProxyAddr:  v.cfg.ProxyAddr,
		Dial:       v.dial,
	})
	probe := prober.Probe(res.NormalizedEmail, domain, host, true)

	res.SMTPDeliverable = probe.Deliverable
	res.IsCatchAll = probe.CatchAll
	res.SMTPServerBanner = probe.Banner
	res.SMTPServerResponse = probe.Response
	res.TLSSupported = probe.TLSSupported
	monitoring.RecordSMTPProbe(probe.Deliverable)
}

// finalize computes factors, score and verdict, stamps the timing and
// records metrics. Stages that already decided a status (parser or
// domain rejection) keep their reason.
func (v *Validator) finalize(res *types.ValidationResult, r resolved, start time.Time) types.ValidationResult {
	local := ""
	if at := strings.LastIndexByte(res.NormalizedEmail, '@'); at > 0 {
		local = res.NormalizedEmail[:at]
	}
	res.Factors.Format = res.SyntaxValid
	res.Factors.Domain = res.DomainValid
	res.Factors.MX = res.MXFound
	res.Factors.SMTP = res.SMTPDeliverable == types.DeliverableYes
	res.Factors.Reputation = scoring.AddressReputation(local, res.DomainHealth.Reputation)

	res.Score = scoring.Score(res, r.strict)
	if res.Status == "" {
		res.Status, res.Reason = verdict(res, r)
	}

	elapsed := time.Since(start)
	res.ValidationTimeMs = elapsed.Milliseconds()
	monitoring.RecordValidation(res.Status, res.Score, elapsed)
	return *res
}

// verdict applies the decision table, first match wins.
func verdict(res *types.ValidationResult, r resolved) (types.Status, string) {
	valid, risky := validThreshold, riskyThreshold
	if r.strict {
		valid, risky = validThresholdStrict, riskyThresholdStrict
	}

	switch {
	case res.Disposable:
		return types.StatusRisky, "Disposable email address detected"
	case res.DomainHealth.Blacklisted:
		return types.StatusInvalid, "Domain is blacklisted"
	case !res.SyntaxValid:
		return types.StatusInvalid, "Email address is not well-formed"
	case r.checkDomain && !res.DomainValid:
		return types.StatusInvalid, "Domain does not resolve"
	case r.checkMX && !res.MXFound:
		return types.StatusInvalid, "Domain cannot receive emails (no MX records)"
	case res.Score >= valid:
		return types.StatusValid, "Email appears to be valid and deliverable"
	case res.Score >= risky:
		return types.StatusRisky, "Email may be risky — proceed with caution"
	default:
		return types.StatusInvalid, "Email is likely invalid or undeliverable"
	}
}

// ClearCaches drops the DNS stage caches. Intended for long-running
// processes that want to force re-resolution.
func (v *Validator) ClearCaches() {
	v.dns.ClearCache()
}
