package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Execute while the circuit rejects calls
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerState is closed, open or half-open
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateHalfOpen
	StateOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig tunes when a breaker trips and recovers. Zero values take the defaults.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold int

	// SuccessThreshold is the number of successes that closes a half-open circuit
	SuccessThreshold int

	// Timeout is how long the circuit stays open before probing again
	Timeout time.Duration

	// OnStateChange runs under the breaker lock; it must not call back into the breaker
	OnStateChange func(name string, from, to CircuitBreakerState)
}

// CircuitBreakerStatus is a point-in-time snapshot for health reports
type CircuitBreakerStatus struct {
	Name            string    `json:"name"`
	State           string    `json:"state"`
	FailureCount    int       `json:"failure_count"`
	SuccessCount    int       `json:"success_count"`
	TotalRequests   int64     `json:"total_requests"`
	TotalRejections int64     `json:"total_rejections"`
	LastFailureTime time.Time `json:"last_failure_time,omitempty"`
	NextAttempt     time.Time `json:"next_attempt,omitempty"`
}

// CircuitBreaker implements the circuit breaker pattern. The protected call
// runs outside the lock; only one probe is let through while half-open.
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig

	mu                   sync.Mutex
	state                CircuitBreakerState
	consecutiveFailures  int
	consecutiveSuccesses int
	totalRequests        int64
	totalRejections      int64
	probing              bool
	lastFailureTime      time.Time
	nextAttempt          time.Time
	now                  func() time.Time
}

// NewCircuitBreaker starts closed
func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	defaults := DefaultCircuitBreakerConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = defaults.SuccessThreshold
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &CircuitBreaker{
		name:   name,
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}
}

// Execute runs fn unless the circuit is open
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.acquire() {
		return fmt.Errorf("%s: %w", cb.name, ErrCircuitOpen)
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probing = false
	if err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

func (cb *CircuitBreaker) acquire() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.totalRequests++
	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Before(cb.nextAttempt) {
			cb.totalRejections++
			return false
		}
		cb.setState(StateHalfOpen)
		fallthrough
	case StateHalfOpen:
		if cb.probing {
			cb.totalRejections++
			return false
		}
		cb.probing = true
		return true
	}
	return false
}

func (cb *CircuitBreaker) onSuccess() {
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses++

	if cb.state == StateHalfOpen && cb.consecutiveSuccesses >= cb.config.SuccessThreshold {
		cb.setState(StateClosed)
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.consecutiveSuccesses = 0
	cb.consecutiveFailures++
	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateClosed:
		if cb.consecutiveFailures >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen)
	}
}

// setState changes the state; callers hold the lock
func (cb *CircuitBreaker) setState(newState CircuitBreakerState) {
	if cb.state == newState {
		return
	}

	oldState := cb.state
	cb.state = newState

	switch newState {
	case StateOpen:
		cb.nextAttempt = cb.now().Add(cb.config.Timeout)
	case StateHalfOpen:
		cb.consecutiveSuccesses = 0
	case StateClosed:
		cb.consecutiveFailures = 0
		cb.consecutiveSuccesses = 0
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.name, oldState, newState)
	}
}

// GetState reports the current state
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetStatus snapshots state and counters
func (cb *CircuitBreaker) GetStatus() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{
		Name:            cb.name,
		State:           cb.state.String(),
		FailureCount:    cb.consecutiveFailures,
		SuccessCount:    cb.consecutiveSuccesses,
		TotalRequests:   cb.totalRequests,
		TotalRejections: cb.totalRejections,
		LastFailureTime: cb.lastFailureTime,
	}
	if cb.state == StateOpen {
		status.NextAttempt = cb.nextAttempt
	}
	return status
}

// Reset closes the circuit and clears its counters
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.setState(StateClosed)
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
	cb.probing = false
}

// DefaultCircuitBreakerConfig trips after 5 straight failures and probes again after 30s
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 1,
		Timeout:          30 * time.Second,
	}
}

// Circuit reports an open breaker as degraded. A half-open breaker is still
// healthy since it is already probing the backend.
func Circuit(breaker *CircuitBreaker) Checker {
	return CheckFunc(func(ctx context.Context) Result {
		status := breaker.GetStatus()
		result := Result{Status: StatusHealthy, Data: status}
		if status.State == StateOpen.String() {
			result.Status = StatusDegraded
			result.Detail = fmt.Sprintf("circuit %s is open", status.Name)
		}
		return result
	})
}
