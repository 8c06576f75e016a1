package indexing

import (
	"errors"
	"sync"
	"time"
)

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

var ErrBreakerOpen = errors.New("indexer circuit breaker is open")

type BreakerConfig struct {
	MaxFailures      int           `json:"max_failures"`
	Timeout          time.Duration `json:"timeout"`
	HalfOpenMaxCalls int           `json:"half_open_max_calls"`
}

func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// Breaker stops calling the indexer after MaxFailures consecutive failures
// and lets trial calls through again once Timeout has passed.
type Breaker struct {
	mu              sync.Mutex
	state           BreakerState
	failureCount    int
	successCount    int
	inFlight        int
	lastFailureTime time.Time

	maxFailures      int
	timeout          time.Duration
	halfOpenMaxCalls int

	now func() time.Time
}

func NewBreaker(config *BreakerConfig) *Breaker {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = 1
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}

	return &Breaker{
		state:            BreakerClosed,
		maxFailures:      config.MaxFailures,
		timeout:          config.Timeout,
		halfOpenMaxCalls: config.HalfOpenMaxCalls,
		now:              time.Now,
	}
}

// Execute runs fn unless the breaker is open. Errors for which counts
// returns false are passed through without being recorded as failures.
func (b *Breaker) Execute(fn func() error, counts func(error) bool) error {
	if !b.allow() {
		return ErrBreakerOpen
	}

	err := fn()
	switch {
	case err == nil:
		b.recordSuccess()
	case counts == nil || counts(err):
		b.recordFailure()
	default:
		b.release()
	}
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if b.now().Sub(b.lastFailureTime) < b.timeout {
			return false
		}
		b.state = BreakerHalfOpen
		b.successCount = 0
		b.inFlight = 1
		return true
	case BreakerHalfOpen:
		if b.inFlight >= b.halfOpenMaxCalls {
			return false
		}
		b.inFlight++
		return true
	default:
		return false
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = b.now()

	switch b.state {
	case BreakerClosed:
		if b.failureCount >= b.maxFailures {
			b.state = BreakerOpen
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.successCount = 0
		b.inFlight = 0
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		b.failureCount = 0
	case BreakerHalfOpen:
		b.successCount++
		if b.inFlight > 0 {
			b.inFlight--
		}
		if b.successCount >= b.halfOpenMaxCalls {
			b.state = BreakerClosed
			b.failureCount = 0
			b.successCount = 0
			b.inFlight = 0
		}
	}
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen && b.inFlight > 0 {
		b.inFlight--
	}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"state":           b.state.String(),
		"failure_count":   b.failureCount,
		"success_count":   b.successCount,
		"last_failure":    b.lastFailureTime.Unix(),
		"max_failures":    b.maxFailures,
		"timeout_seconds": b.timeout.Seconds(),
	}
}
