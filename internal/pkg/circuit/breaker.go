package circuit

import (
	"errors"
	"sync"
	"time"

	"bracketbuddy/internal/logger"
)

// ErrOpen is returned by Do while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

type CircuitBreaker struct {
	mu            sync.Mutex
	state         State
	failures      int
	threshold     int
	cooldown      time.Duration
	lastFailure   time.Time
	name          string
	now           func() time.Time
	countsAsFault func(error) bool
	onStateChange func(name string, from, to State)
}

func NewCircuitBreaker(name string, threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 1
	}
	return &CircuitBreaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		state:     StateClosed,
		now:       time.Now,
	}
}

// SetFaultFilter restricts which errors returned through Do count as failures.
// Errors the filter rejects are passed through without touching the breaker.
func (cb *CircuitBreaker) SetFaultFilter(fn func(error) bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.countsAsFault = fn
}

func (cb *CircuitBreaker) SetStateChangeHandler(handler func(name string, from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = handler
}

// Do runs fn when the breaker allows it and records the outcome.
func (cb *CircuitBreaker) Do(fn func() error) error {
	if !cb.Allow() {
		return ErrOpen
	}
	err := fn()
	switch {
	case err == nil:
		cb.RecordSuccess()
	case cb.isFault(err):
		cb.RecordFailure()
	}
	return err
}

func (cb *CircuitBreaker) isFault(err error) bool {
	cb.mu.Lock()
	filter := cb.countsAsFault
	cb.mu.Unlock()
	if filter == nil {
		return true
	}
	return filter(err)
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) > cb.cooldown {
			cb.transition(StateHalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.transition(StateClosed)
		cb.failures = 0
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		if cb.failures >= cb.threshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		cb.transition(StateOpen)
	}
}

func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	cb.state = to
	if cb.onStateChange != nil {
		go cb.onStateChange(cb.name, from, to)
		return
	}
	logger.Named("circuit").Warnf("breaker %s state change: %s -> %s (failures=%d/%d, cooldown=%s)",
		cb.name, from, to, cb.failures, cb.threshold, cb.cooldown)
}
