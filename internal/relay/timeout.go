package relay

import (
	"context"
	"time"
)

// WithTimeout bounds every stream opened through r to d. A stream that has not
// finished in time ends with a Failure whose Timeout flag is set. d <= 0
// returns r unchanged.
func WithTimeout(r Relay, d time.Duration) Relay {
	if d <= 0 {
		return r
	}
	return &timeoutRelay{next: r, limit: d}
}

type timeoutRelay struct {
	next  Relay
	limit time.Duration
}

func (t *timeoutRelay) Stream(ctx context.Context, req Request) (<-chan Fragment, error) {
	tctx, cancel := context.WithTimeout(ctx, t.limit)
	in, err := t.next.Stream(tctx, req)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan Fragment)
	go func() {
		defer cancel()
		defer close(out)

		expired := func() bool {
			return tctx.Err() == context.DeadlineExceeded && ctx.Err() == nil
		}

		for {
			select {
			case f, ok := <-in:
				if !ok {
					if expired() {
						send(ctx, out, Fragment{Err: timeoutFailure(t.limit)})
					}
					return
				}
				if f.Err != nil && expired() {
					f.Err = timeoutFailure(t.limit)
				}
				if !send(ctx, out, f) || f.Err != nil {
					return
				}
			case <-tctx.Done():
				if expired() {
					send(ctx, out, Fragment{Err: timeoutFailure(t.limit)})
				}
				return
			}
		}
	}()
	return out, nil
}
