package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reviewgate/internal/domain/captcha"
)

var _ captcha.Verifier = (*RecaptchaVerifier)(nil)

const siteVerifyEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaVerifier validates reCAPTCHA tokens against Google's siteverify API.
type RecaptchaVerifier struct {
	secretKey  string
	endpoint   string
	httpClient *http.Client
}

// NewRecaptchaVerifier creates a new reCAPTCHA verifier. An empty secret key
// produces an unconfigured verifier; Configured reports that.
func NewRecaptchaVerifier(secretKey string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secretKey:  secretKey,
		endpoint:   siteVerifyEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether a secret key is set.
func (v *RecaptchaVerifier) Configured() bool {
	return v.secretKey != ""
}

// Verify submits the token to Google and returns the verification result.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) (*captcha.Result, error) {
	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var result struct {
		Success    bool     `json:"success"`
		Score      float64  `json:"score"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing siteverify response: %w", err)
	}

	return &captcha.Result{
		Success:    result.Success,
		Score:      result.Score,
		ErrorCodes: result.ErrorCodes,
	}, nil
}
