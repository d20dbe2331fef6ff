package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result carries the verification outcome. Score is only populated for
// v3 tokens.
type Result struct {
	Success bool
	Score   float64
	Error   string
}

// Verifier validates a captcha token against its provider.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (Result, error)
}

// Config for the Google siteverify client.
type Config struct {
	SecretKey   string
	VerifyURL   string
	MinScore    float64
	Environment string
}

// GoogleVerifier verifies reCAPTCHA tokens via the siteverify endpoint.
// When no secret key is configured it passes in development and fails
// closed everywhere else.
type GoogleVerifier struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

func NewGoogleVerifier(config Config, logger *slog.Logger) *GoogleVerifier {
	if config.VerifyURL == "" {
		config.VerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	}
	return &GoogleVerifier{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	if v.config.SecretKey == "" {
		v.logger.Warn("captcha secret key not configured")
		if v.config.Environment == "development" {
			return Result{Success: true}, nil
		}
		return Result{Success: false, Error: "captcha not configured"}, nil
	}

	form := url.Values{}
	form.Set("secret", v.config.SecretKey)
	form.Set("response", token)
	if remoteIP != "" && remoteIP != "unknown" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.config.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer resp.Body.Close()

	var body siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("failed to decode captcha response: %w", err)
	}

	if !body.Success {
		reason := strings.Join(body.ErrorCodes, ", ")
		if reason == "" {
			reason = "captcha verification failed"
		}
		return Result{Success: false, Error: reason}, nil
	}

	// v2 responses carry no score and decode as zero; only enforce the
	// threshold when the provider returned one.
	if body.Score > 0 && body.Score < v.config.MinScore {
		return Result{Success: false, Score: body.Score, Error: "captcha score too low"}, nil
	}

	return Result{Success: true, Score: body.Score}, nil
}

// StaticVerifier returns a fixed result. Used in tests and local setups
// without a captcha provider.
type StaticVerifier struct {
	Result Result
	Err    error
}

func (s *StaticVerifier) Verify(ctx context.Context, token, remoteIP string) (Result, error) {
	return s.Result, s.Err
}
