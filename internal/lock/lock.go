// Package lock serializes read-modify-write cycles on a board row across
// requests and, when Redis is configured, across replicas.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// context was done or the wait budget ran out.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive locks by key. The returned release func is safe
// to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// ContentionFunc is called once per Lock call that had to wait.
type ContentionFunc func()

// LocalLocker is an in-process keyed mutex
type LocalLocker struct {
	mu         sync.Mutex
	slots      map[string]*slot
	onContend  ContentionFunc
	maxWaiting time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker returns a LocalLocker. maxWait bounds how long Lock waits;
// zero waits until ctx is done.
func NewLocalLocker(maxWait time.Duration, onContend ContentionFunc) *LocalLocker {
	return &LocalLocker{
		slots:      make(map[string]*slot),
		onContend:  onContend,
		maxWaiting: maxWait,
	}
}

// Lock blocks until key is free.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return l.releaser(key, s), nil
	default:
	}

	if l.onContend != nil {
		l.onContend()
	}
	if l.maxWaiting > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.maxWaiting)
		defer cancel()
	}

	select {
	case s.ch <- struct{}{}:
		return l.releaser(key, s), nil
	case <-ctx.Done():
		l.drop(key, s)
		return nil, ErrNotAcquired
	}
}

func (l *LocalLocker) releaser(key string, s *slot) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.drop(key, s)
		})
	}
}

func (l *LocalLocker) drop(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
