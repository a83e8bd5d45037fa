// Package verimail validates email addresses: RFC-level syntax, typo
// detection against popular providers, disposable-domain
// classification, DNS and MX resolution, an SMTP recipient probe and a
// domain-health check, folded into a 0-100 confidence score and a
// valid / risky / invalid verdict.
//
// The zero-configuration path:
//
//	v := verimail.New()
//	res := v.Validate(ctx, "john.doe@gmail.com", nil)
//
// Engine-level problems (unparseable input, dead domains, refused
// probes) are reported inside the ValidationResult, never as Go errors.
package verimail

import "github.com/verimail/verimail/types"

// Aliases for the wire types so callers only import this package.
type (
	ValidationResult = types.ValidationResult
	Options          = types.Options
	BatchResult      = types.BatchResult
	BatchSummary     = types.BatchSummary
	Status           = types.Status
	Deliverability   = types.Deliverability
)

const (
	StatusValid   = types.StatusValid
	StatusRisky   = types.StatusRisky
	StatusInvalid = types.StatusInvalid
	StatusError   = types.StatusError
)
