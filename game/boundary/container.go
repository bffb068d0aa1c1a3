package boundary

import (
	"fmt"
	"runtime/debug"
	"sync"
	"unsafe"

	"github.com/wricardo/wumpus/game/engine"
	"github.com/wricardo/wumpus/game/handle"
	"github.com/wricardo/wumpus/game/marshal"
)

// Container owns one engine together with its last response and outbound
// buffer. Every field is guarded by mu.
type Container[A any, R engine.Response] struct {
	handle handle.Handle

	mu      sync.Mutex
	engine  engine.Engine[A, R]
	last    R
	hasLast bool
	out     *marshal.Slot
	lastErr error
	closed  bool
}

func newContainer[A any, R engine.Response](h handle.Handle, eng engine.Engine[A, R], out *marshal.Slot) *Container[A, R] {
	return &Container[A, R]{
		handle: h,
		engine: eng,
		out:    out,
	}
}

// Handle returns the handle the container was registered under
func (c *Container[A, R]) Handle() handle.Handle {
	return c.handle
}

// WithExclusiveAccess runs fn with the container locked. A panic in fn is
// contained and returned as a KindPanic error, and the lock is released
// either way. The outcome becomes the container's last error.
func (c *Container[A, R]) WithExclusiveAccess(op string, fn func() error) error {
	return c.withLock(op, true, fn)
}

func (c *Container[A, R]) withLock(op string, record bool, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return newError(op, KindClosed, c.handle, nil)
	}

	err := contain(op, c.handle, fn)
	if record {
		c.lastErr = err
	}
	return err
}

// publish stores s in the outbound buffer and returns it. A string the
// buffer can't carry leaves the previous contents in place.
func (c *Container[A, R]) publish(s string) unsafe.Pointer {
	p, err := c.out.Store(s)
	if err != nil {
		return c.out.Pointer()
	}
	return p
}

// Close frees the outbound buffer and drops the engine. Calls waiting on
// the lock fail with KindClosed afterwards.
func (c *Container[A, R]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.out.Release()
	c.engine = nil
	var zero R
	c.last = zero
}

// contain runs fn and turns a panic into an error
func contain(op string, h handle.Handle, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{
				Op:     op,
				Kind:   KindPanic,
				Handle: h,
				Detail: fmt.Sprint(r),
				stack:  debug.Stack(),
			}
		}
	}()
	return fn()
}
