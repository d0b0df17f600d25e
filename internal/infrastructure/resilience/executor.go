// Package resilience guards calls to external collaborators (the message
// broker, the hosted model) with per-operation retry ladders and circuit
// breakers. Pipeline-internal failures never pass through here; those are
// terminal by design.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Outcome tells the executor what a failure means: whether another
// attempt could help, and whether the breaker should count it.
type Outcome struct {
	Retry bool
	Trip  bool
}

// Classifier maps a collaborator's error to an Outcome. A nil classifier
// means fail fast and count everything.
type Classifier func(err error) Outcome

// Executor runs named operations under their assigned Policy. Operations
// without an assigned policy fall back to the one given at construction.
// Breakers are keyed by operation name so a sick model endpoint never
// blocks broker publishes.
type Executor struct {
	fallback Policy

	mu       sync.Mutex
	policies map[string]Policy
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(fallback Policy) *Executor {
	return &Executor{
		fallback: fallback.withDefaults(),
		policies: make(map[string]Policy),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// UsePolicy assigns a policy to an operation name. Must be called before
// the operation first runs; the breaker is built from the policy in
// effect at that moment.
func (e *Executor) UsePolicy(operation string, p Policy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policies[strings.TrimSpace(operation)] = p.withDefaults()
}

func (e *Executor) Run(ctx context.Context, operation string, classify Classifier, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: nil call for %q", operation)
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unnamed"
	}
	if classify == nil {
		classify = func(error) Outcome { return Outcome{Trip: true} }
	}

	pol := e.policyFor(op)
	if pol.NoBreaker {
		return e.attempt(ctx, op, pol, classify, fn)
	}

	breaker := e.breakerFor(op, pol, classify)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.attempt(ctx, op, pol, classify, fn)
	})
	return err
}

func (e *Executor) attempt(ctx context.Context, op string, pol Policy, classify Classifier, fn func(context.Context) error) error {
	delay := pol.BaseDelay
	if delay > pol.MaxDelay {
		delay = pol.MaxDelay
	}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if n >= pol.Attempts || !classify(err).Retry {
			return err
		}

		slog.Warn("call_retry",
			"operation", op,
			"attempt", n,
			"of", pol.Attempts,
			"wait", delay.String(),
			"error", err,
		)
		if !e.pause(ctx, delay) {
			return err
		}

		delay = time.Duration(float64(delay) * pol.DelayGrowth)
		if delay > pol.MaxDelay {
			delay = pol.MaxDelay
		}
	}
}

// pause waits out the backoff delay, reporting false when the context
// ends first.
func (e *Executor) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Executor) policyFor(op string) Policy {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pol, ok := e.policies[op]; ok {
		return pol
	}
	return e.fallback
}

func (e *Executor) breakerFor(op string, pol Policy, classify Classifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[op]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        op,
		MaxRequests: pol.ProbeCalls,
		Timeout:     pol.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < pol.TripAfter {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= pol.TripRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).Trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("breaker_state",
				"operation", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	e.breakers[op] = breaker
	return breaker
}

// IsCircuitOpen reports whether err came from a breaker refusing the call
// rather than from the collaborator itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
