package cart

import "context"

// Pending is the handle for one asynchronous cart mutation. Discarding it
// keeps fire-and-forget ergonomics; the repository still logs failures.
// Holding it lets a caller await confirmation.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// complete records the outcome and releases waiters. Called exactly once.
func (p *Pending) complete(err error) {
	p.err = err
	close(p.done)
}

// Done closes once the mutation has been applied or has failed.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Err returns the mutation's outcome. Valid only after Done has closed.
func (p *Pending) Err() error { return p.err }

// Wait blocks until the mutation finishes or ctx expires, and returns the
// mutation error or the context error.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
