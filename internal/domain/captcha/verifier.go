package captcha

import "context"

// Result is the outcome of a captcha token verification.
type Result struct {
	Success    bool
	Score      float64
	ErrorCodes []string
}

// Verifier defines the contract for verifying captcha tokens.
// Implementations live in infra/captcha/.
type Verifier interface {
	// Verify submits the token to the captcha backend.
	Verify(ctx context.Context, token string) (*Result, error)

	// Configured reports whether the verifier holds a secret key.
	Configured() bool
}
