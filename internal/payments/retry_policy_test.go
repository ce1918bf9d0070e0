package payments_test

import (
	"testing"
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/payments"
	"github.com/stretchr/testify/assert"
)

func TestGetRetryDelay_WithinJitterBounds(t *testing.T) {
	policy := payments.NewRetryPolicy()

	testCases := []struct {
		name    string
		attempt int
		baseSec float64
	}{
		{"negative attempt treated as zero", -3, 1},
		{"attempt 0", 0, 1},
		{"attempt 1", 1, 2},
		{"attempt 2", 2, 4},
		{"attempt 3", 3, 8},
		{"attempt 4", 4, 16},
		{"attempt beyond cap", 9, 16},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Jitter is random; sample repeatedly to exercise the range.
			for i := 0; i < 50; i++ {
				delay := policy.GetRetryDelay(tc.attempt)
				min := time.Duration(0.75 * tc.baseSec * float64(time.Second))
				max := time.Duration(1.25 * tc.baseSec * float64(time.Second))
				assert.GreaterOrEqual(t, delay, min, "delay below jitter floor")
				assert.LessOrEqual(t, delay, max, "delay above jitter ceiling")
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	policy := payments.NewRetryPolicy()

	assert.True(t, policy.ShouldRetry(0, "processing_error"))
	assert.True(t, policy.ShouldRetry(4, "rate_limit"))
	assert.True(t, policy.ShouldRetry(0, ""), "empty code is not terminal")
	assert.True(t, policy.ShouldRetry(0, "some_unknown_code"), "unknown codes do not short-circuit the attempt budget")

	assert.False(t, policy.ShouldRetry(5, "timeout"), "attempt budget spent")
	assert.False(t, policy.ShouldRetry(7, "timeout"))
	assert.False(t, policy.ShouldRetry(0, "card_declined"), "terminal error never retried")
	assert.False(t, policy.ShouldRetry(1, "insufficient_funds"))
}

func TestIsTerminalError(t *testing.T) {
	terminal := []string{
		"card_declined",
		"DECLINED",
		"Insufficient_Funds",
		"insufficient funds",
		"expired_card",
		"incorrect_cvc",
		"fraud_suspected",
		"transaction_blocked",
		"refused_by_issuer",
	}
	for _, code := range terminal {
		assert.True(t, payments.IsTerminalError(code), "expected terminal: %s", code)
	}

	notTerminal := []string{"", "   ", "timeout", "rate_limit", "weird_code_42"}
	for _, code := range notTerminal {
		assert.False(t, payments.IsTerminalError(code), "expected non-terminal: %q", code)
	}
}

func TestIsRetryableError(t *testing.T) {
	retryable := []string{
		"processing_error",
		"rate_limit_exceeded",
		"gateway_timeout",
		"connection_reset",
		"network_error",
		"issuer_unavailable",
		"acquirer_unavailable",
		"please try again",
	}
	for _, code := range retryable {
		assert.True(t, payments.IsRetryableError(code), "expected retryable: %s", code)
	}

	// Conservative default: neither recognized-terminal nor recognized-retryable.
	assert.False(t, payments.IsRetryableError("mystery_failure"))
	assert.False(t, payments.IsRetryableError(""))

	// Terminal codes are never retryable.
	assert.False(t, payments.IsRetryableError("card_declined"))
	assert.False(t, payments.IsRetryableError("expired_card"))
}
