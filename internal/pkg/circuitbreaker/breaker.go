package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/piresc/ukdrive/internal/pkg/logger"
)

// State represents the circuit breaker state
type State int

const (
	// StateClosed allows requests to pass through
	StateClosed State = iota
	// StateOpen blocks requests and returns immediately
	StateOpen
	// StateHalfOpen lets a limited number of probe requests through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Errors
var (
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	ErrTooManyRequests    = errors.New("too many requests in half-open state")
)

// Config holds circuit breaker configuration
type Config struct {
	Name             string        // Name of the circuit breaker for logging
	MaxRequests      uint32        // Max requests allowed in half-open state
	Interval         time.Duration // Interval to clear counters in closed state
	Timeout          time.Duration // Time spent open before probing again
	FailureThreshold uint32        // Consecutive failures that open the circuit
	SuccessThreshold uint32        // Successes in half-open needed to close
	OnStateChange    func(name string, from State, to State)
	IsFailure        func(err error) bool
}

// DefaultConfig returns the configuration used for the persistence API.
// Position writes are frequent and individually expendable, so the circuit
// opens quickly and probes again after a short pause.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 1,
		IsFailure: func(err error) bool {
			return err != nil
		},
	}
}

// Counts holds the counters for circuit breaker
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	config Config
	clock  clock.Clock

	mutex  sync.RWMutex
	state  State
	counts Counts
	expiry time.Time
}

// New creates a new circuit breaker
func New(config Config, c clock.Clock) *CircuitBreaker {
	if c == nil {
		c = clock.New()
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{
		config: config,
		clock:  c,
		state:  StateClosed,
		expiry: c.Now().Add(config.Interval),
	}
}

// Execute runs fn unless the circuit is open
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	now := cb.clock.Now()

	switch cb.state {
	case StateClosed:
		if cb.expiry.Before(now) {
			cb.counts = Counts{}
			cb.expiry = now.Add(cb.config.Interval)
		}

	case StateOpen:
		if !cb.expiry.After(now) {
			cb.setState(StateHalfOpen)
			cb.counts = Counts{}
		} else {
			return ErrCircuitBreakerOpen
		}

	case StateHalfOpen:
		if cb.counts.Requests >= cb.config.MaxRequests {
			return ErrTooManyRequests
		}
	}

	cb.counts.Requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.config.IsFailure(err) {
		cb.counts.TotalFailures++
		cb.counts.ConsecutiveFailures++
		cb.counts.ConsecutiveSuccesses = 0

		if (cb.state == StateClosed && cb.counts.ConsecutiveFailures >= cb.config.FailureThreshold) || cb.state == StateHalfOpen {
			cb.setState(StateOpen)
			cb.expiry = cb.clock.Now().Add(cb.config.Timeout)
		}
		return
	}

	cb.counts.TotalSuccesses++
	cb.counts.ConsecutiveSuccesses++
	cb.counts.ConsecutiveFailures = 0

	if cb.state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.config.SuccessThreshold {
		cb.setState(StateClosed)
		cb.expiry = cb.clock.Now().Add(cb.config.Interval)
	}
}

// setState changes the state and triggers callbacks. Caller holds cb.mutex.
func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state

	logger.Info("Circuit breaker state changed",
		logger.String("name", cb.config.Name),
		logger.String("from", prev.String()),
		logger.String("to", state.String()),
		logger.Uint32("total_failures", cb.counts.TotalFailures),
		logger.Uint32("consecutive_failures", cb.counts.ConsecutiveFailures))

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, prev, state)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() State {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()
	return cb.state
}

// Counts returns the current counts
func (cb *CircuitBreaker) Counts() Counts {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()
	return cb.counts
}

// Manager keeps one circuit breaker per downstream host
type Manager struct {
	breakers map[string]*CircuitBreaker
	mutex    sync.Mutex
	clock    clock.Clock
	config   func(name string) Config
}

// NewManager creates a manager whose breakers use DefaultConfig
func NewManager(c clock.Clock) *Manager {
	return NewManagerWithConfig(c, DefaultConfig)
}

// NewManagerWithConfig creates a manager building breakers from config
func NewManagerWithConfig(c clock.Clock, config func(name string) Config) *Manager {
	return &Manager{
		breakers: make(map[string]*CircuitBreaker),
		clock:    c,
		config:   config,
	}
}

// GetOrCreate returns the breaker registered under name, creating it on first use
func (m *Manager) GetOrCreate(name string) *CircuitBreaker {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if cb, exists := m.breakers[name]; exists {
		return cb
	}

	config := m.config(name)
	config.Name = name
	cb := New(config, m.clock)
	m.breakers[name] = cb

	logger.Debug("Created circuit breaker",
		logger.String("name", name),
		logger.Uint32("failure_threshold", config.FailureThreshold),
		logger.Duration("timeout", config.Timeout))

	return cb
}

// Execute runs fn with the named circuit breaker
func (m *Manager) Execute(ctx context.Context, name string, fn func(context.Context) error) error {
	return m.GetOrCreate(name).Execute(ctx, fn)
}

// Stats holds statistics for a circuit breaker
type Stats struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	TotalRequests       uint32 `json:"total_requests"`
	TotalFailures       uint32 `json:"total_failures"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// GetStats returns statistics for all circuit breakers
func (m *Manager) GetStats() map[string]Stats {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats := make(map[string]Stats, len(m.breakers))
	for name, cb := range m.breakers {
		counts := cb.Counts()
		stats[name] = Stats{
			Name:                name,
			State:               cb.State().String(),
			TotalRequests:       counts.Requests,
			TotalFailures:       counts.TotalFailures,
			ConsecutiveFailures: counts.ConsecutiveFailures,
		}
	}
	return stats
}
