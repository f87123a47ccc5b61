package actor

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by Call once the mailbox has terminated.
var ErrStopped = errors.New("actor stopped")

// Mailbox serializes work onto a single goroutine. Each logical component
// (a session, a match controller, the game director) owns one; everything
// the component does runs as a closure drained from the inbox, one at a
// time in FIFO order. That goroutine is the only one allowed to touch the
// owner's state, so the owner needs no locks.
type Mailbox struct {
	inbox chan envelope
	quit  chan struct{}
	done  chan struct{}

	mu    sync.Mutex
	cause error
	once  sync.Once
}

type envelope struct {
	fn    func() error
	reply chan error
}

// New starts the mailbox goroutine. The buffer bounds how many pending
// messages a sender can enqueue before blocking.
func New(buffer int) *Mailbox {
	m := &Mailbox{
		inbox: make(chan envelope, buffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go m.loop()
	return m
}

func (m *Mailbox) loop() {
	defer close(m.done)
	for {
		select {
		case <-m.quit:
			return
		case env := <-m.inbox:
			err := env.fn()
			if env.reply != nil {
				env.reply <- err
			}
			// A handler may have stopped the mailbox; honor it before
			// draining further messages.
			select {
			case <-m.quit:
				return
			default:
			}
		}
	}
}

// Call enqueues fn and waits for it to run, returning its error.
// The reply channel is buffered so the loop never blocks handing back
// a result the caller abandoned.
func (m *Mailbox) Call(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.quit:
		return m.errOr(ErrStopped)
	case m.inbox <- envelope{fn: fn, reply: reply}:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		// The handler may have run and stopped the mailbox in the same
		// breath; prefer its result over the stop cause.
		select {
		case err := <-reply:
			return err
		default:
			return m.errOr(ErrStopped)
		}
	case err := <-reply:
		return err
	}
}

// Cast enqueues fn without waiting for a reply. Messages cast after the
// mailbox stopped are dropped.
func (m *Mailbox) Cast(fn func() error) {
	select {
	case <-m.quit:
	case m.inbox <- envelope{fn: fn}:
	}
}

// Stop terminates the mailbox, recording cause as the reason. The first
// call wins; later causes are ignored. Safe to call from inside a handler.
func (m *Mailbox) Stop(cause error) {
	m.once.Do(func() {
		m.mu.Lock()
		m.cause = cause
		m.mu.Unlock()
		close(m.quit)
	})
}

// Done is closed once the mailbox goroutine has exited.
func (m *Mailbox) Done() <-chan struct{} { return m.done }

// Err reports the cause passed to Stop, or nil while the mailbox runs.
func (m *Mailbox) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cause
}

func (m *Mailbox) errOr(fallback error) error {
	if err := m.Err(); err != nil {
		return err
	}
	return fallback
}
