package crawler

import (
	"context"
	"time"
)

// DelayKind distinguishes the two pause points in a run.
type DelayKind int

const (
	DelayRegion DelayKind = iota
	DelayArticle
)

// DelaySchedule returns how long to pause before processing unit i of
// the given kind. It is a policy knob, not a correctness requirement:
// tests inject NoDelays.
type DelaySchedule func(kind DelayKind, i int) time.Duration

// DefaultDelays reproduces the pacing the site tolerates: 30-60s
// between regions, 5-10s between articles, nothing before the first
// unit of each kind.
func DefaultDelays(kind DelayKind, i int) time.Duration {
	if i == 0 {
		return 0
	}
	switch kind {
	case DelayRegion:
		return time.Duration(30+(i*10)%30) * time.Second
	default:
		return time.Duration(5+i%5) * time.Second
	}
}

// NoDelays disables pacing entirely.
func NoDelays(DelayKind, int) time.Duration { return 0 }

// sleep waits d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
