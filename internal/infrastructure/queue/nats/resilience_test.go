package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/studyvault/studyvault/internal/core/domain"
	"github.com/studyvault/studyvault/internal/infrastructure/resilience"
)

func TestClassifyBrokerError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want resilience.Outcome
	}{
		{"nil", nil, resilience.Outcome{}},
		{"caller cancelled", context.Canceled, resilience.Outcome{}},
		{"deadline", context.DeadlineExceeded, resilience.Outcome{}},
		{"timeout", fmt.Errorf("publish: %w", nats.ErrTimeout), resilience.Outcome{Retry: true, Trip: true}},
		{"no servers", nats.ErrNoServers, resilience.Outcome{Retry: true, Trip: true}},
		{"permanent", errors.New("subject rejected"), resilience.Outcome{Trip: true}},
	}
	for _, tc := range cases {
		if got := classifyBrokerError(tc.err); got != tc.want {
			t.Fatalf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestMarkTemporary(t *testing.T) {
	err := markTemporary(fmt.Errorf("publish: %w", nats.ErrConnectionClosed))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("transient broker failure not marked temporary: %v", err)
	}

	permanent := errors.New("subject rejected")
	if got := markTemporary(permanent); !errors.Is(got, permanent) || domain.IsKind(got, domain.ErrTemporary) {
		t.Fatalf("permanent failure must pass through unmarked: %v", got)
	}

	if got := markTemporary(nil); got != nil {
		t.Fatalf("nil must stay nil, got %v", got)
	}
}
