package payments

import (
	"sync"
	"time"
)

// CircuitState is the lifecycle state of one processor's circuit.
type CircuitState string

const (
	CircuitClosed   CircuitState = "CLOSED"
	CircuitOpen     CircuitState = "OPEN"
	CircuitHalfOpen CircuitState = "HALF_OPEN"
)

const (
	// DefaultFailureThreshold opens the circuit at the 6th consecutive failure.
	DefaultFailureThreshold = 6

	// DefaultCooldown is how long an open circuit stays open before probing.
	DefaultCooldown = 60 * time.Second
)

// CircuitStatus is the observability snapshot of one processor circuit.
type CircuitStatus struct {
	Processor           string       `json:"processor"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
	State               CircuitState `json:"state"`
	LastFailureAt       *time.Time   `json:"lastFailureAt,omitempty"`
	OpenUntil           *time.Time   `json:"openUntil,omitempty"`
}

type circuit struct {
	failures      int
	state         CircuitState
	lastFailureAt time.Time
	openUntil     time.Time
}

// CircuitBreaker keys consecutive-failure circuits per external-processor
// identifier. It is shared, process-wide, mutable state: multiple workflows
// record failures for the same processor concurrently, so every access runs
// under the mutex. State resets only via RecordSuccess or ResetCircuit.
type CircuitBreaker struct {
	mu        sync.Mutex
	circuits  map[string]*circuit
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

// NewCircuitBreaker creates a breaker with the given threshold and cooldown;
// non-positive values fall back to the defaults.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &CircuitBreaker{
		circuits:  make(map[string]*circuit),
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

func (b *CircuitBreaker) get(processor string) *circuit {
	c, ok := b.circuits[processor]
	if !ok {
		c = &circuit{state: CircuitClosed}
		b.circuits[processor] = c
	}
	return c
}

// RecordFailure increments the consecutive-failure count and opens the
// circuit once the count reaches the threshold. A failure during the
// half-open probe reopens immediately.
func (b *CircuitBreaker) RecordFailure(processor string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(processor)
	now := b.now()
	c.failures++
	c.lastFailureAt = now

	if c.state == CircuitHalfOpen || c.failures >= b.threshold {
		c.state = CircuitOpen
		c.openUntil = now.Add(b.cooldown)
	}
}

// RecordSuccess resets the consecutive-failure count and closes the circuit.
func (b *CircuitBreaker) RecordSuccess(processor string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(processor)
	c.failures = 0
	c.state = CircuitClosed
	c.openUntil = time.Time{}
}

// IsCircuitOpen reports whether calls to the processor should be refused.
// An open circuit whose cooldown has elapsed moves to half-open and admits
// a probe call.
func (b *CircuitBreaker) IsCircuitOpen(processor string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(processor)
	if c.state != CircuitOpen {
		return false
	}
	if !b.now().Before(c.openUntil) {
		c.state = CircuitHalfOpen
		return false
	}
	return true
}

// GetCircuitState exposes the circuit snapshot for observability.
func (b *CircuitBreaker) GetCircuitState(processor string) CircuitStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.get(processor)
	status := CircuitStatus{
		Processor:           processor,
		ConsecutiveFailures: c.failures,
		State:               c.state,
	}
	if !c.lastFailureAt.IsZero() {
		t := c.lastFailureAt
		status.LastFailureAt = &t
	}
	if !c.openUntil.IsZero() {
		t := c.openUntil
		status.OpenUntil = &t
	}
	return status
}

// ResetCircuit fully clears the circuit for a processor.
func (b *CircuitBreaker) ResetCircuit(processor string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.circuits, processor)
}
