package resilience

import "time"

// Policy bounds how hard an external collaborator is pushed when it
// misbehaves: a short retry ladder per call, plus a breaker that sheds
// load once the failure ratio over recent calls crosses TripRatio.
type Policy struct {
	Attempts    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	DelayGrowth float64

	NoBreaker  bool
	TripAfter  uint32
	TripRatio  float64
	Cooldown   time.Duration
	ProbeCalls uint32
}

// QueuePolicy fits broker publishes: individual calls are cheap, so
// retry quickly and let the breaker recover after a short cooldown.
func QueuePolicy() Policy {
	return Policy{
		Attempts:    3,
		BaseDelay:   50 * time.Millisecond,
		MaxDelay:    250 * time.Millisecond,
		DelayGrowth: 2.0,
		TripAfter:   10,
		TripRatio:   0.5,
		Cooldown:    5 * time.Second,
		ProbeCalls:  2,
	}
}

// ModelPolicy fits hosted model calls: each attempt is slow and billed,
// so retry once with a longer pause and keep an open circuit open longer.
func ModelPolicy() Policy {
	return Policy{
		Attempts:    2,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		DelayGrowth: 2.0,
		TripAfter:   5,
		TripRatio:   0.6,
		Cooldown:    30 * time.Second,
		ProbeCalls:  1,
	}
}

func (p Policy) withDefaults() Policy {
	base := QueuePolicy()
	out := p
	if out.Attempts <= 0 {
		out.Attempts = base.Attempts
	}
	if out.BaseDelay <= 0 {
		out.BaseDelay = base.BaseDelay
	}
	if out.MaxDelay < out.BaseDelay {
		out.MaxDelay = out.BaseDelay
	}
	if out.DelayGrowth < 1.0 {
		out.DelayGrowth = base.DelayGrowth
	}
	if out.TripAfter == 0 {
		out.TripAfter = base.TripAfter
	}
	if out.TripRatio <= 0 || out.TripRatio > 1 {
		out.TripRatio = base.TripRatio
	}
	if out.Cooldown <= 0 {
		out.Cooldown = base.Cooldown
	}
	if out.ProbeCalls == 0 {
		out.ProbeCalls = base.ProbeCalls
	}
	return out
}
