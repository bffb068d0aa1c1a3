package boundary

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wricardo/wumpus/game/engine"
	"github.com/wricardo/wumpus/game/handle"
	"github.com/wricardo/wumpus/game/marshal"
)

// Operation names, used in errors and logs
const (
	OpCreate             = "create"
	OpDestroy            = "destroy"
	OpExecute            = "execute"
	OpHandleEvent        = "handle_event"
	OpInitialHTML        = "initial_html"
	OpLastString         = "last_string"
	OpLastResponseJSON   = "last_response_json"
	OpIsShutdownRequired = "is_shutdown_required"
	OpLastError          = "last_error"
)

type options struct {
	logger *zap.Logger
	alloc  marshal.Allocator
}

// Option configures a Boundary
type Option func(*options)

// WithLogger sets the logger. The default is the process-wide Logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAllocator sets the allocator for outbound buffers. The default keeps
// buffers in Go memory.
func WithAllocator(a marshal.Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// Boundary exposes engines built by one factory through handles
type Boundary[C any, A any, R engine.Response] struct {
	factory       engine.Factory[C, A, R]
	interfaceType engine.InterfaceType
	handles       *handle.Registry[*Container[A, R]]
	alloc         marshal.Allocator
	log           *zap.Logger
}

// New creates a boundary for engines built by factory for the given host
func New[C any, A any, R engine.Response](factory engine.Factory[C, A, R], interfaceType engine.InterfaceType, opts ...Option) *Boundary[C, A, R] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.alloc == nil {
		o.alloc = marshal.NewGoAllocator()
	}

	return &Boundary[C, A, R]{
		factory:       factory,
		interfaceType: interfaceType,
		handles:       handle.NewRegistry[*Container[A, R]](),
		alloc:         o.alloc,
		log:           o.logger,
	}
}

func (b *Boundary[C, A, R]) logger() *zap.Logger {
	if b.log != nil {
		return b.log
	}
	return Logger()
}

// InterfaceType returns the host type engines are built for
func (b *Boundary[C, A, R]) InterfaceType() engine.InterfaceType {
	return b.interfaceType
}

// Create decodes config, builds an engine and returns its handle
func (b *Boundary[C, A, R]) Create(config []byte) (handle.Handle, error) {
	log := b.logger()

	if _, err := marshal.Inbound(config); err != nil {
		return handle.Invalid, b.report(newError(OpCreate, KindConfig, handle.Invalid, err))
	}

	cfg, err := b.factory.DecodeConfig(config)
	if err != nil {
		return handle.Invalid, b.report(newError(OpCreate, KindConfig, handle.Invalid, err))
	}

	var eng engine.Engine[A, R]
	err = contain(OpCreate, handle.Invalid, func() error {
		var err error
		eng, err = b.factory.New(cfg, b.interfaceType)
		return err
	})
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			err = newError(OpCreate, KindConfig, handle.Invalid, err)
		}
		return handle.Invalid, b.report(err)
	}

	h := b.handles.RegisterFunc(func(h handle.Handle) *Container[A, R] {
		return newContainer(h, eng, marshal.NewSlot(b.alloc))
	})

	log.Info("engine created",
		zap.String("engine", b.factory.Name()),
		zap.Stringer("handle", h),
		zap.Stringer("interface_type", b.interfaceType))
	return h, nil
}

// Destroy releases h and everything it owns. The handle is invalid
// afterwards.
func (b *Boundary[C, A, R]) Destroy(h handle.Handle) error {
	c, err := b.handles.Release(h)
	if err != nil {
		return b.report(newError(OpDestroy, KindHandle, h, err))
	}
	c.Close()

	b.logger().Info("engine destroyed", zap.Stringer("handle", h))
	return nil
}

// Execute decodes action and applies it to the engine behind h. A
// malformed action fails with KindDecode and leaves the engine untouched.
func (b *Boundary[C, A, R]) Execute(h handle.Handle, action []byte) error {
	return b.call(OpExecute, h, true, func(c *Container[A, R]) error {
		if _, err := marshal.Inbound(action); err != nil {
			return newError(OpExecute, KindDecode, h, err)
		}
		a, err := b.factory.DecodeAction(action)
		if err != nil {
			return newError(OpExecute, KindDecode, h, err)
		}

		resp, err := c.engine.Execute(a)
		if err != nil {
			return newError(OpExecute, KindEngine, h, err)
		}
		c.last, c.hasLast = resp, true
		return nil
	})
}

// HandleEvent decodes a lifecycle event and forwards it to the engine
func (b *Boundary[C, A, R]) HandleEvent(h handle.Handle, event []byte) error {
	return b.call(OpHandleEvent, h, true, func(c *Container[A, R]) error {
		if _, err := marshal.Inbound(event); err != nil {
			return newError(OpHandleEvent, KindDecode, h, err)
		}
		ev, err := engine.DecodeEvent(event)
		if err != nil {
			return newError(OpHandleEvent, KindDecode, h, err)
		}

		resp, err := c.engine.HandleEvent(ev)
		if err != nil {
			return newError(OpHandleEvent, KindEngine, h, err)
		}
		c.last, c.hasLast = resp, true
		return nil
	})
}

// InitialHTML renders the starting view into the outbound buffer. If the
// engine fails the buffer holds the empty string and the error is returned
// alongside it. The pointer is valid until the next outbound call on h.
func (b *Boundary[C, A, R]) InitialHTML(h handle.Handle) (unsafe.Pointer, error) {
	p, _, err := b.initialHTML(h)
	return p, err
}

// InitialHTMLText is InitialHTML for Go hosts: the markup is copied before
// the lock is released.
func (b *Boundary[C, A, R]) InitialHTMLText(h handle.Handle) (string, error) {
	_, text, err := b.initialHTML(h)
	return text, err
}

func (b *Boundary[C, A, R]) initialHTML(h handle.Handle) (p unsafe.Pointer, text string, err error) {
	err = b.call(OpInitialHTML, h, true, func(c *Container[A, R]) error {
		html := ""
		defer func() {
			p = c.publish(html)
			text = c.out.String()
		}()

		rendered, err := c.engine.InitialHTML()
		if err != nil {
			return newError(OpInitialHTML, KindEngine, h, err)
		}
		if strings.IndexByte(rendered, 0) >= 0 {
			return newError(OpInitialHTML, KindEncode, h, marshal.ErrInteriorNUL)
		}
		html = rendered
		return nil
	})
	return p, text, err
}

// LastString returns the current outbound buffer without changing it
func (b *Boundary[C, A, R]) LastString(h handle.Handle) (unsafe.Pointer, error) {
	p, _, err := b.lastString(h)
	return p, err
}

// LastStringText copies the current outbound buffer
func (b *Boundary[C, A, R]) LastStringText(h handle.Handle) (string, error) {
	_, text, err := b.lastString(h)
	return text, err
}

func (b *Boundary[C, A, R]) lastString(h handle.Handle) (p unsafe.Pointer, text string, err error) {
	err = b.call(OpLastString, h, true, func(c *Container[A, R]) error {
		p = c.out.Pointer()
		text = c.out.String()
		return nil
	})
	return p, text, err
}

// LastResponseJSON encodes the last response into the outbound buffer.
// Before any execute or handle_event it encodes the zero response.
func (b *Boundary[C, A, R]) LastResponseJSON(h handle.Handle) (unsafe.Pointer, error) {
	p, _, err := b.lastResponse(h)
	return p, err
}

// LastResponseText encodes the last response and copies it
func (b *Boundary[C, A, R]) LastResponseText(h handle.Handle) (string, error) {
	_, text, err := b.lastResponse(h)
	return text, err
}

func (b *Boundary[C, A, R]) lastResponse(h handle.Handle) (p unsafe.Pointer, text string, err error) {
	err = b.call(OpLastResponseJSON, h, true, func(c *Container[A, R]) error {
		data, err := json.Marshal(c.last)
		if err != nil {
			p = c.publish("")
			return newError(OpLastResponseJSON, KindEncode, h, err)
		}
		p = c.publish(string(data))
		text = c.out.String()
		return nil
	})
	return p, text, err
}

// IsShutdownRequired reports whether the last response asked the host to
// shut down. It is false before any execute or handle_event. Like LastError
// it is a pure query and leaves the recorded error alone.
func (b *Boundary[C, A, R]) IsShutdownRequired(h handle.Handle) (bool, error) {
	var required bool
	err := b.call(OpIsShutdownRequired, h, false, func(c *Container[A, R]) error {
		if c.hasLast {
			required = c.last.ShutdownRequired()
		}
		return nil
	})
	return required, err
}

// LastError writes the message of the last failed call on h into the
// outbound buffer. It is empty if that call succeeded. Reading the error
// does not clear it.
func (b *Boundary[C, A, R]) LastError(h handle.Handle) (unsafe.Pointer, error) {
	p, _, err := b.lastError(h)
	return p, err
}

// LastErrorText copies the message of the last failed call on h
func (b *Boundary[C, A, R]) LastErrorText(h handle.Handle) (string, error) {
	_, text, err := b.lastError(h)
	return text, err
}

func (b *Boundary[C, A, R]) lastError(h handle.Handle) (p unsafe.Pointer, text string, err error) {
	err = b.call(OpLastError, h, false, func(c *Container[A, R]) error {
		msg := ""
		if c.lastErr != nil {
			msg = c.lastErr.Error()
		}
		p = c.publish(msg)
		text = c.out.String()
		return nil
	})
	return p, text, err
}

// List describes the live handles
func (b *Boundary[C, A, R]) List() []handle.Info {
	return b.handles.List()
}

// Count returns the number of live handles
func (b *Boundary[C, A, R]) Count() int {
	return b.handles.Count()
}

// Sweep destroys handles idle for longer than maxAge and returns how many
// were removed.
func (b *Boundary[C, A, R]) Sweep(maxAge time.Duration) int {
	removed := b.handles.Sweep(maxAge)
	for _, c := range removed {
		c.Close()
	}

	if len(removed) > 0 {
		b.logger().Info("swept idle handles",
			zap.Int("count", len(removed)),
			zap.Duration("max_age", maxAge))
	}
	return len(removed)
}

// call looks up h and runs fn with its container locked
func (b *Boundary[C, A, R]) call(op string, h handle.Handle, record bool, fn func(c *Container[A, R]) error) error {
	c, err := b.handles.Lookup(h)
	if err != nil {
		return b.report(newError(op, KindHandle, h, err))
	}

	err = c.withLock(op, record, func() error { return fn(c) })
	if err != nil {
		return b.report(err)
	}

	b.logger().Debug("boundary call", zap.String("op", op), zap.Stringer("handle", h))
	return nil
}

// report logs a failed call once
func (b *Boundary[C, A, R]) report(err error) error {
	fields := []zap.Field{zap.Error(err)}

	var e *Error
	if errors.As(err, &e) {
		fields = append(fields,
			zap.String("op", e.Op),
			zap.String("kind", string(e.Kind)),
			zap.Stringer("handle", e.Handle))
		if e.stack != nil {
			fields = append(fields, zap.ByteString("stack", e.stack))
		}
	}

	b.logger().Error("boundary call failed", fields...)
	return err
}
