// Package boundary exposes engines to foreign callers through opaque
// handles.
//
// A Boundary pairs an engine.Factory with a handle registry. Each handle
// owns one Container: the engine, its last response and a single outbound
// string buffer, all behind one mutex. Every operation looks up the handle,
// takes the lock, decodes its input, calls the engine and records the
// result before releasing the lock.
//
// Failures:
//
// Operations return *Error values whose Kind says what went wrong.
// StatusOf maps them to the integer codes reported by the C library. A
// panic inside a locked section is recovered, logged with its stack and
// returned as KindPanic; the lock is released and later calls proceed. An
// engine that panics halfway through an action keeps whatever it changed,
// but the last response only changes when the engine returns normally.
//
// Every failure is logged once, at error level, through the process-wide
// zap logger unless WithLogger supplies another.
//
// Outbound strings:
//
// InitialHTML, LastString, LastResponseJSON and LastError return a pointer
// to the handle's outbound buffer. The pointer stays valid until the next
// call that writes the buffer on the same handle, or until the handle is
// destroyed. Go callers should prefer the Text variants, which copy while
// the lock is held.
package boundary
