package boundary

import (
	"errors"
	"strings"

	"github.com/wricardo/wumpus/game/handle"
)

// Kind categorizes a boundary failure
type Kind string

const (
	KindConfig Kind = "config" // bad configuration or engine construction failure
	KindDecode Kind = "decode" // malformed action or event payload
	KindEngine Kind = "engine" // the engine returned an error
	KindEncode Kind = "encode" // a result could not be handed back
	KindPanic  Kind = "panic"  // contained internal failure
	KindHandle Kind = "handle" // unknown, zero or released handle
	KindClosed Kind = "closed" // handle destroyed while the call waited
)

// Error is the structured error returned by every boundary operation
type Error struct {
	Op     string
	Kind   Kind
	Handle handle.Handle
	Detail string
	Cause  error

	stack []byte
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(e.Op)
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Handle != handle.Invalid {
		b.WriteString(" on handle ")
		b.WriteString(e.Handle.String())
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind. A target with an Op also requires
// the same operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Op == "" || t.Op == e.Op)
}

// Targets for errors.Is
var (
	ErrConfig = &Error{Kind: KindConfig}
	ErrDecode = &Error{Kind: KindDecode}
	ErrEngine = &Error{Kind: KindEngine}
	ErrEncode = &Error{Kind: KindEncode}
	ErrPanic  = &Error{Kind: KindPanic}
	ErrHandle = &Error{Kind: KindHandle}
	ErrClosed = &Error{Kind: KindClosed}
)

func newError(op string, kind Kind, h handle.Handle, cause error) *Error {
	return &Error{Op: op, Kind: kind, Handle: h, Cause: cause}
}

// Status is the integer outcome reported across the C boundary
type Status int32

const (
	StatusOK            Status = 0
	StatusDecode        Status = 1
	StatusEngine        Status = 2
	StatusPanic         Status = 3
	StatusInvalidHandle Status = 4
	StatusEncode        Status = 5
	StatusConfig        Status = 6
)

var statusNames = map[Status]string{
	StatusOK:            "ok",
	StatusDecode:        "decode",
	StatusEngine:        "engine",
	StatusPanic:         "panic",
	StatusInvalidHandle: "invalid_handle",
	StatusEncode:        "encode",
	StatusConfig:        "config",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// StatusOf maps an error returned by a boundary operation to its status
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	var e *Error
	if !errors.As(err, &e) {
		return StatusEngine
	}

	switch e.Kind {
	case KindConfig:
		return StatusConfig
	case KindDecode:
		return StatusDecode
	case KindEncode:
		return StatusEncode
	case KindPanic:
		return StatusPanic
	case KindHandle, KindClosed:
		return StatusInvalidHandle
	default:
		return StatusEngine
	}
}
