// Package types contains the shared types for verimail.
// This package does not import anything from other verimail packages
// to avoid circular imports.
package types

// Deliverability is the ternary outcome of the SMTP recipient probe.
// Unknown is a first-class value: the dialogue completed but the server
// gave neither a definitive accept nor a definitive reject.
type Deliverability string

const (
	DeliverableYes     Deliverability = "yes"
	DeliverableNo      Deliverability = "no"
	DeliverableUnknown Deliverability = "unknown"
)

// Status is the final verdict of a validation.
type Status string

const (
	StatusValid   Status = "valid"
	StatusRisky   Status = "risky"
	StatusInvalid Status = "invalid"
	StatusError   Status = "error"
)

// Factors is the per-signal breakdown that contributed to the score.
type Factors struct {
	Format         bool `json:"format"`
	Domain         bool `json:"domain"`
	MX             bool `json:"mx"`
	SMTP           bool `json:"smtp"`
	Reputation     int  `json:"reputation"`
	Deliverability int  `json:"deliverability"`
}

// DomainHealth describes the authentication posture of the domain.
// DKIM is never probed (no selector is known) and is always false;
// it remains a scoring input for callers that fill it in themselves.
type DomainHealth struct {
	SPF         bool `json:"spf"`
	DKIM        bool `json:"dkim"`
	DMARC       bool `json:"dmarc"`
	Blacklisted bool `json:"blacklisted"`
	Reputation  int  `json:"reputation"`
}

// ValidationResult is the output record of the validation pipeline.
// All engine-level failures are surfaced here, never as Go errors.
type ValidationResult struct {
	Email string `json:"email"`

	SyntaxValid     bool           `json:"syntax_valid"`
	DomainValid     bool           `json:"domain_valid"`
	MXFound         bool           `json:"mx_found"`
	Disposable      bool           `json:"disposable"`
	TypoDetected    bool           `json:"typo_detected"`
	SMTPDeliverable Deliverability `json:"smtp_deliverable"`

	Suggestion      string `json:"suggestion,omitempty"`
	NormalizedEmail string `json:"normalized_email,omitempty"`
	GmailNormalized string `json:"gmail_normalized,omitempty"`
	IsRoleBased     bool   `json:"is_role_based"`
	HasPlusAlias    bool   `json:"has_plus_alias"`
	IsCatchAll      bool   `json:"is_catch_all"`
	IsInternational bool   `json:"is_international"`
	IsFreeProvider  bool   `json:"is_free_provider"`

	Factors      Factors      `json:"factors"`
	DomainHealth DomainHealth `json:"domain_health"`

	SMTPServerBanner   string `json:"smtp_server_banner,omitempty"`
	SMTPServerResponse string `json:"smtp_server_response,omitempty"`
	TLSSupported       bool   `json:"tls_supported"`

	Score            int      `json:"score"`
	Status           Status   `json:"status"`
	Reason           string   `json:"reason"`
	ChecksPerformed  []string `json:"checks_performed"`
	ValidationTimeMs int64    `json:"validation_time_ms"`
}

// Options are the per-request toggles recognized on the wire.
// Boolean pointers distinguish "absent" (use the default) from an
// explicit false.
type Options struct {
	CheckSyntax        *bool  `json:"checkSyntax,omitempty"`
	CheckDomain        *bool  `json:"checkDomain,omitempty"`
	CheckMX            *bool  `json:"checkMX,omitempty"`
	CheckSMTP          *bool  `json:"checkSMTP,omitempty"`
	CheckDisposable    *bool  `json:"checkDisposable,omitempty"`
	CheckTypos         *bool  `json:"checkTypos,omitempty"`
	StrictMode         bool   `json:"strictMode,omitempty"`
	UseStrictMode      bool   `json:"useStrictMode,omitempty"` // accepted alias for strictMode
	AllowInternational *bool  `json:"allowInternational,omitempty"`
	SMTPTimeoutMs      int    `json:"smtpTimeout,omitempty"`
	SMTPFromDomain     string `json:"smtpFromDomain,omitempty"`
	EnableCache        *bool  `json:"enableCache,omitempty"`
	BatchSize          int    `json:"batchSize,omitempty"`
	Deduplicate        *bool  `json:"deduplicate,omitempty"`
}

// Strict reports whether either strict-mode spelling is set.
func (o Options) Strict() bool { return o.StrictMode || o.UseStrictMode }

// BatchError describes a single failed address inside a batch.
type BatchError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// DomainCount is one entry of the per-domain breakdown.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// ReasonCount is one entry of the common-reason breakdown.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// BatchSummary aggregates a batch of validation results.
type BatchSummary struct {
	StatusBreakdown map[Status]int `json:"status_breakdown"`
	DisposableCount int            `json:"disposable_count"`
	TypoCount       int            `json:"typo_count"`
	AverageScore    float64        `json:"average_score"`
	TopDomains      []DomainCount  `json:"top_domains"`
	CommonReasons   []ReasonCount  `json:"common_reasons"`
	Recommendations []string       `json:"recommendations"`
}

// BatchResult is the outcome of a bulk validation.
// Results preserve the input order after deduplication.
type BatchResult struct {
	Total             int                `json:"total"`
	Processed         int                `json:"processed"`
	DuplicatesRemoved int                `json:"duplicates_removed"`
	Results           []ValidationResult `json:"results"`
	Errors            []BatchError       `json:"errors"`
	ValidationTimeMs  int64              `json:"validation_time_ms"`
	Summary           BatchSummary       `json:"summary"`
}
