package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/studyvault/studyvault/internal/core/domain"
	"github.com/studyvault/studyvault/internal/infrastructure/resilience"
)

// Broker conditions that clear up on their own once connectivity returns.
var transientBrokerErrs = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
}

func classifyBrokerError(err error) resilience.Outcome {
	switch {
	case err == nil:
		return resilience.Outcome{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The caller gave up; neither retry nor blame the broker.
		return resilience.Outcome{}
	case resilience.IsCircuitOpen(err):
		return resilience.Outcome{Retry: true, Trip: true}
	}
	for _, transient := range transientBrokerErrs {
		if errors.Is(err, transient) {
			return resilience.Outcome{Retry: true, Trip: true}
		}
	}
	return resilience.Outcome{Trip: true}
}

// markTemporary tags retryable publish failures so the ingestion surface
// can tell callers to try again rather than report a permanent error.
func markTemporary(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyBrokerError(err).Retry || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "nats publish", err)
	}
	return err
}
