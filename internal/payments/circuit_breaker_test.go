package payments_test

import (
	"sync"
	"testing"
	"time"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAtSixthConsecutiveFailure(t *testing.T) {
	breaker := payments.NewCircuitBreaker(payments.DefaultFailureThreshold, time.Minute)

	for i := 0; i < 5; i++ {
		breaker.RecordFailure("stripe")
		assert.False(t, breaker.IsCircuitOpen("stripe"), "circuit must stay closed at failure %d", i+1)
	}

	breaker.RecordFailure("stripe")
	assert.True(t, breaker.IsCircuitOpen("stripe"), "circuit must open at the 6th failure")

	status := breaker.GetCircuitState("stripe")
	assert.Equal(t, payments.CircuitOpen, status.State)
	assert.Equal(t, 6, status.ConsecutiveFailures)
	require.NotNil(t, status.LastFailureAt)
	require.NotNil(t, status.OpenUntil)
}

func TestCircuitBreaker_SuccessResetsCounter(t *testing.T) {
	breaker := payments.NewCircuitBreaker(payments.DefaultFailureThreshold, time.Minute)

	for i := 0; i < 5; i++ {
		breaker.RecordFailure("adyen")
	}
	breaker.RecordSuccess("adyen")

	status := breaker.GetCircuitState("adyen")
	assert.Equal(t, 0, status.ConsecutiveFailures)
	assert.Equal(t, payments.CircuitClosed, status.State)

	// A full fresh run of failures is required to open after a success.
	for i := 0; i < 5; i++ {
		breaker.RecordFailure("adyen")
	}
	assert.False(t, breaker.IsCircuitOpen("adyen"))
	breaker.RecordFailure("adyen")
	assert.True(t, breaker.IsCircuitOpen("adyen"))
}

func TestCircuitBreaker_KeysAreIndependent(t *testing.T) {
	breaker := payments.NewCircuitBreaker(payments.DefaultFailureThreshold, time.Minute)

	for i := 0; i < 6; i++ {
		breaker.RecordFailure("stripe")
	}
	assert.True(t, breaker.IsCircuitOpen("stripe"))
	assert.False(t, breaker.IsCircuitOpen("adyen"), "an unrelated processor key must stay closed")
}

func TestCircuitBreaker_ResetCircuitClearsState(t *testing.T) {
	breaker := payments.NewCircuitBreaker(payments.DefaultFailureThreshold, time.Minute)

	for i := 0; i < 6; i++ {
		breaker.RecordFailure("stripe")
	}
	require.True(t, breaker.IsCircuitOpen("stripe"))

	breaker.ResetCircuit("stripe")
	assert.False(t, breaker.IsCircuitOpen("stripe"))

	status := breaker.GetCircuitState("stripe")
	assert.Equal(t, 0, status.ConsecutiveFailures)
	assert.Equal(t, payments.CircuitClosed, status.State)
	assert.Nil(t, status.LastFailureAt)
}

func TestCircuitBreaker_CooldownMovesToHalfOpen(t *testing.T) {
	breaker := payments.NewCircuitBreaker(payments.DefaultFailureThreshold, 10*time.Millisecond)

	for i := 0; i < 6; i++ {
		breaker.RecordFailure("stripe")
	}
	require.True(t, breaker.IsCircuitOpen("stripe"))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, breaker.IsCircuitOpen("stripe"), "elapsed cooldown admits a probe")
	assert.Equal(t, payments.CircuitHalfOpen, breaker.GetCircuitState("stripe").State)

	// A failed probe reopens immediately.
	breaker.RecordFailure("stripe")
	assert.True(t, breaker.IsCircuitOpen("stripe"))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, breaker.IsCircuitOpen("stripe"))
	breaker.RecordSuccess("stripe")
	assert.Equal(t, payments.CircuitClosed, breaker.GetCircuitState("stripe").State)
}

func TestCircuitBreaker_ConcurrentRecording(t *testing.T) {
	breaker := payments.NewCircuitBreaker(payments.DefaultFailureThreshold, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			breaker.RecordFailure("stripe")
		}()
	}
	wg.Wait()

	status := breaker.GetCircuitState("stripe")
	assert.Equal(t, 20, status.ConsecutiveFailures)
	assert.True(t, breaker.IsCircuitOpen("stripe"))
}
