package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState int

const (
	Closed CircuitState = iota
	Open
	HalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails fast once a dependency keeps failing, then lets
// trial calls through after a cool-down.
type CircuitBreaker interface {
	Call(func() error) error
	State() CircuitState
	Reset()
}

type Config struct {
	FailureThreshold int           // consecutive failures that open the circuit
	RecoveryTimeout  time.Duration // wait before the first trial call
	SuccessThreshold int           // trial successes needed to close again

	// OnStateChange runs after every transition, outside the lock.
	OnStateChange func(from, to CircuitState)
}

func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 2,
	}
}

type circuitBreaker struct {
	config *Config
	now    func() time.Time

	mu          sync.Mutex
	state       CircuitState
	failures    int
	successes   int
	nextAttempt time.Time
}

// NewCircuitBreaker applies DefaultConfig when config is nil.
func NewCircuitBreaker(config *Config) CircuitBreaker {
	if config == nil {
		config = DefaultConfig()
	}
	return &circuitBreaker{config: config, now: time.Now}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	from := cb.state
	if cb.state == Open && !cb.now().Before(cb.nextAttempt) {
		cb.state = HalfOpen
		cb.successes = 0
	}
	allowed := cb.state != Open
	to := cb.state
	cb.mu.Unlock()
	cb.notify(from, to)

	if !allowed {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	from = cb.state
	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	to = cb.state
	cb.mu.Unlock()
	cb.notify(from, to)

	return err
}

func (cb *circuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.state
	cb.state = Closed
	cb.failures = 0
	cb.successes = 0
	cb.mu.Unlock()
	cb.notify(from, Closed)
}

func (cb *circuitBreaker) onFailure() {
	cb.failures++

	if cb.state == HalfOpen || cb.failures >= cb.config.FailureThreshold {
		cb.state = Open
		cb.nextAttempt = cb.now().Add(cb.config.RecoveryTimeout)
	}
}

func (cb *circuitBreaker) onSuccess() {
	cb.failures = 0

	if cb.state != HalfOpen {
		return
	}
	cb.successes++
	if cb.successes >= cb.config.SuccessThreshold {
		cb.state = Closed
		cb.successes = 0
	}
}

func (cb *circuitBreaker) notify(from, to CircuitState) {
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}
