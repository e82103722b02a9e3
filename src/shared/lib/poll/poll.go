package poll

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/audius-shake-be/src/shared/lib/errors/mark"
)

var TimeoutMark = errors.New("Polling exceeded the maximum wait duration")

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxDuration = 10 * time.Minute
)

// Func reports whether the polled condition has settled. Returning
// (false, nil) schedules another attempt - transient failures should be
// reported this way rather than as errors. A non-nil error is terminal
// and stops the poll immediately.
type Func func(ctx context.Context) (done bool, err error)

type Spec struct {
	Interval    time.Duration
	MaxDuration time.Duration
}

func (s Spec) withDefaults() Spec {
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}

	if s.MaxDuration <= 0 {
		s.MaxDuration = DefaultMaxDuration
	}

	return s
}

// Poll runs fn at a fixed interval until it settles, errors out, or the
// max duration elapses. The deadline is checked in the loop itself - no
// rescheduling timers.
func Poll(ctx context.Context, spec Spec, fn Func) error {
	spec = spec.withDefaults()

	deadline := time.Now().Add(spec.MaxDuration)

	ticker := time.NewTicker(spec.Interval)
	defer ticker.Stop()

	for {
		done, err := fn(ctx)
		if err != nil {
			return errors.Wrap(err, "Poll attempt returned a terminal error")
		}

		if done {
			return nil
		}

		if !time.Now().Before(deadline) {
			return mark.Message(TimeoutMark, "Gave up polling after the maximum wait duration")
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "Context finished while waiting to poll again")
		case <-ticker.C:
		}
	}
}
