package directory

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type breakerState string

const (
	stateClosed   breakerState = "closed"
	stateOpen     breakerState = "open"
	stateHalfOpen breakerState = "half_open"
)

type ProtectedConfig struct {
	Timeout          time.Duration // hard timeout per lookup
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open
}

// Protected wraps a Directory with a per-call timeout and a circuit breaker.
// A lookup that finds nobody is a healthy answer and never trips the breaker.
type Protected struct {
	inner Directory
	cfg   ProtectedConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtected(inner Directory, cfg ProtectedConfig) *Protected {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &Protected{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (p *Protected) Lookup(ctx context.Context, externalID string) (Employee, error) {
	allowed, trial := p.allowRequest()
	if !allowed {
		return Employee{}, ErrCircuitOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	emp, err := p.inner.Lookup(callCtx, externalID)

	failed := err != nil && !errors.Is(err, ErrNotFound)
	p.afterRequest(trial, failed)

	return emp, err
}

// State reports the breaker position.
func (p *Protected) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.state)
}

// allowRequest reports whether a call may go out and whether it is a
// half-open trial.
func (p *Protected) allowRequest() (allowed, trial bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateOpen:
		if p.now().Sub(p.openedAt) < p.cfg.Cooldown {
			return false, false
		}
		p.state = stateHalfOpen
		p.halfOpenInFlight = 1
		return true, true
	case stateHalfOpen:
		if p.halfOpenInFlight >= p.cfg.HalfOpenMaxCalls {
			return false, false
		}
		p.halfOpenInFlight++
		return true, true
	default:
		return true, false
	}
}

// afterRequest settles a finished call. Only trial calls move the breaker
// out of half-open; a call admitted while closed that lands later is ignored
// unless the breaker is still closed.
func (p *Protected) afterRequest(trial, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if trial {
		if p.halfOpenInFlight > 0 {
			p.halfOpenInFlight--
		}
		if p.state != stateHalfOpen {
			return
		}
		if failed {
			p.state = stateOpen
			p.openedAt = p.now()
			return
		}
		p.state = stateClosed
		p.consecutiveFailures = 0
		return
	}

	if p.state != stateClosed {
		return
	}
	if !failed {
		p.consecutiveFailures = 0
		return
	}

	p.consecutiveFailures++
	if p.consecutiveFailures >= p.cfg.FailureThreshold {
		p.state = stateOpen
		p.openedAt = p.now()
	}
}
