// Package payments holds the retry and circuit-breaker policy consulted by
// callers before and between external payment-processor calls. Nothing here
// touches ledger state: the caller performs the network call, then reports
// the outcome back via the circuit breaker and the idempotency key store.
package payments

import (
	"math/rand"
	"strings"
	"time"
)

const (
	// MaxRetries is the number of attempts after which ShouldRetry always
	// answers false.
	MaxRetries = 5

	// maxBackoffExponent caps the backoff base at 2^4 = 16 seconds.
	maxBackoffExponent = 4

	// jitterFraction is the ±25% multiplicative jitter applied to the base.
	jitterFraction = 0.25
)

// terminalCodes are card-decline-family fragments: errors the processor will
// answer identically on every retry, so they must propagate immediately.
var terminalCodes = []string{
	"declin",
	"insufficient fund",
	"expired card",
	"incorrect cvc",
	"invalid cvc",
	"fraud",
	"block",
	"refus",
}

// retryableCodes are transient-transport fragments known to clear on retry.
var retryableCodes = []string{
	"processing error",
	"rate limit",
	"timeout",
	"timed out",
	"connection",
	"network",
	"acquirer unavailable",
	"issuer unavailable",
	"service unavailable",
	"try again",
}

// RetryPolicy makes backoff and retry decisions for external processor calls.
// The zero value is not usable; construct with NewRetryPolicy.
type RetryPolicy struct {
	maxRetries int
	rand       *rand.Rand
}

// NewRetryPolicy returns a policy with the standard limits.
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		maxRetries: MaxRetries,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetRetryDelay computes the exponential backoff for an attempt number:
// 2^attempt seconds, base capped at 16s, with ±25% jitter. Negative attempt
// numbers are treated as attempt 0.
func (p *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffExponent {
		attempt = maxBackoffExponent
	}
	base := float64(int64(1) << uint(attempt)) // seconds

	// multiply by a factor uniform in [1-j, 1+j]
	factor := 1 - jitterFraction + 2*jitterFraction*p.rand.Float64()
	return time.Duration(base * factor * float64(time.Second))
}

// ShouldRetry reports whether another attempt is worthwhile: false once the
// attempt budget is spent or the error is terminal, true otherwise.
func (p *RetryPolicy) ShouldRetry(attempt int, errorCode string) bool {
	if attempt >= p.maxRetries {
		return false
	}
	return !IsTerminalError(errorCode)
}

// normalizeCode lowercases and flattens separators so matching is
// substring-tolerant across insufficient_funds / insufficient-funds /
// "Insufficient Funds" spellings.
func normalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "_", " ")
	code = strings.ReplaceAll(code, "-", " ")
	return code
}

// IsTerminalError classifies card-decline-family codes that retrying can
// never fix. Empty or unknown codes are not terminal.
func IsTerminalError(code string) bool {
	normalized := normalizeCode(code)
	if normalized == "" {
		return false
	}
	for _, fragment := range terminalCodes {
		if strings.Contains(normalized, fragment) {
			return true
		}
	}
	return false
}

// IsRetryableError classifies known transient transport-layer codes. Codes
// that are neither recognized-terminal nor recognized-retryable default to
// not-retryable: unknown errors do not trigger automatic retry.
func IsRetryableError(code string) bool {
	normalized := normalizeCode(code)
	if normalized == "" {
		return false
	}
	if IsTerminalError(code) {
		return false
	}
	for _, fragment := range retryableCodes {
		if strings.Contains(normalized, fragment) {
			return true
		}
	}
	return false
}
