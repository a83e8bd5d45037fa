package check

import "github.com/verimail/verimail/internal/parse"

// SyntaxConfig is the syntax checker configuration.
type SyntaxConfig struct {
	// Strict rejects quoted local parts and plus addressing.
	Strict bool
	// AllowInternational accepts IDN domains.
	AllowInternational bool
}

// SyntaxChecker validates an address against RFC 5321/5322 and
// decomposes it into local part and normalized domain. It is the only
// stage that can stop the pipeline outright: every later stage needs
// the parsed domain.
type SyntaxChecker struct {
	cfg SyntaxConfig
}

func NewSyntaxChecker(cfg SyntaxConfig) *SyntaxChecker {
	return &SyntaxChecker{cfg: cfg}
}

// Check parses email. On rejection the returned Address carries the
// first rule that failed in its Reason field.
func (c *SyntaxChecker) Check(email string) parse.Address {
	return parse.Parse(email, parse.Options{
		Strict:             c.cfg.Strict,
		AllowInternational: c.cfg.AllowInternational,
	})
}
