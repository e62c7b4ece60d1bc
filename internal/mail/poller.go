package mail

import (
	"context"
	"fmt"
	"time"
)

// Searcher is the mailbox collaborator the poller drives. One call is
// one complete search-and-fetch pass.
type Searcher interface {
	FetchMatching(ctx context.Context, filter Filter) ([]Message, error)
}

// Query bounds one poll: what to match, how long to keep trying, and
// how long to suspend between attempts. It is not persisted.
type Query struct {
	Filter   Filter
	Deadline time.Duration
	Interval time.Duration
}

// TimeoutError reports that the deadline expired without a matching
// message. LastErr carries the most recent transient search error, if
// the searcher ever failed during the poll.
type TimeoutError struct {
	Elapsed time.Duration
	LastErr error
}

func (e *TimeoutError) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("no matching email after %s (last error: %v)", e.Elapsed.Round(time.Millisecond), e.LastErr)
	}
	return fmt.Sprintf("no matching email after %s", e.Elapsed.Round(time.Millisecond))
}

func (e *TimeoutError) Unwrap() error { return e.LastErr }

// Poller repeatedly searches a mailbox until something matches or the
// deadline expires. Transient searcher errors are logged and retried
// within the deadline budget rather than aborting the poll.
type Poller struct {
	Searcher Searcher

	// Logf receives transient-error notices. Nil means silent.
	Logf func(format string, args ...any)
}

// PollUntil runs the bounded retry loop. It always makes at least one
// attempt, returns the full result set as soon as a search matches,
// and honors ctx cancellation immediately, even mid-suspension. The
// deadline is measured from the first attempt on the monotonic clock.
func (p *Poller) PollUntil(ctx context.Context, q Query) ([]Message, error) {
	start := time.Now()
	var lastErr error

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		messages, err := p.Searcher.FetchMatching(ctx, q.Filter)
		switch {
		case err != nil:
			lastErr = err
			p.logf("mailbox search failed, retrying: %v", err)
		case len(messages) > 0:
			return messages, nil
		}

		if time.Since(start) >= q.Deadline {
			return nil, &TimeoutError{Elapsed: time.Since(start), LastErr: lastErr}
		}

		// A zero interval still passes through the select, so the
		// loop yields between attempts instead of spinning.
		timer := time.NewTimer(q.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *Poller) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}
