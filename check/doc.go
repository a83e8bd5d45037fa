// Package check contains the individual stages of the validation
// pipeline: syntax, typo, disposable, DNS, SMTP and domain health.
// Each stage is self-contained and caches its own lookups; the
// coordinator in the root package folds the stage results into the
// final ValidationResult.
package check
