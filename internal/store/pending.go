package store

import "context"

// Pending is the second phase of a mutation. Applied is the local state the
// mutation produced immediately; Wait blocks until the remote write is
// confirmed or has failed and been reconciled.
type Pending[T any] struct {
	Applied T

	done      chan struct{}
	confirmed T
	err       error
}

func newPending[T any](applied T) *Pending[T] {
	return &Pending[T]{Applied: applied, done: make(chan struct{})}
}

func (p *Pending[T]) resolve(confirmed T, err error) {
	p.confirmed = confirmed
	p.err = err
	close(p.done)
}

// Done is closed once the remote write has settled.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Wait returns the remote outcome. ctx only bounds the wait; the remote call
// itself is never cancelled.
func (p *Pending[T]) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Confirmed returns the server-confirmed value once the write succeeded.
func (p *Pending[T]) Confirmed() (T, bool) {
	select {
	case <-p.done:
		return p.confirmed, p.err == nil
	default:
		var zero T
		return zero, false
	}
}
