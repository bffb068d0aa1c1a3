// Package handle provides the opaque handle registry behind the engine
// boundary.
//
// A Handle is a plain integer that a host can store anywhere, including C
// memory, without holding a Go pointer. The registry maps each live handle to
// the value it was issued for and remembers when the handle was last used.
//
// Handles:
//
// Handles are issued from a monotonically increasing counter starting at 1,
// so 0 is never a valid handle and a released handle is never reissued. Using
// a released handle is reported as ErrHandleReleased instead of reaching freed
// state.
//
// Concurrency:
//
// The registry is safe for concurrent use. It only guards its own table; the
// values it stores are expected to carry their own locking.
//
// Usage:
//
//	reg := handle.NewRegistry[*Container]()
//	h := reg.Register(container)
//
//	c, err := reg.Lookup(h)
//	if err != nil {
//		return err
//	}
//
//	// Drop handles idle for a day
//	for _, c := range reg.Sweep(24 * time.Hour) {
//		c.Close()
//	}
package handle
