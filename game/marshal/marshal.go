// Package marshal moves strings across the engine boundary.
//
// Inbound payloads are copied and checked before they reach an engine.
// Outbound strings live in a single Slot per handle: each new string
// replaces and frees the previous one, so a pointer handed to the host stays
// valid only until the next outbound call on the same handle.
package marshal

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
	"unsafe"
)

var (
	ErrInvalidUTF8 = errors.New("payload is not valid UTF-8")
	ErrInteriorNUL = errors.New("string contains a NUL byte")
)

// Inbound copies a host payload into a Go string. The caller keeps
// ownership of data.
func Inbound(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", ErrInteriorNUL
	}
	return string(data), nil
}

// Allocator provides NUL-terminated buffers for outbound strings
type Allocator interface {
	Alloc(s string) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// GoAllocator allocates outbound buffers in Go memory and keeps them
// reachable until freed. It serves Go hosts and tests; a C host needs
// buffers from the C heap instead.
type GoAllocator struct {
	mu   sync.Mutex
	live map[unsafe.Pointer][]byte
}

// NewGoAllocator creates an empty GoAllocator
func NewGoAllocator() *GoAllocator {
	return &GoAllocator{live: make(map[unsafe.Pointer][]byte)}
}

func (a *GoAllocator) Alloc(s string) unsafe.Pointer {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	p := unsafe.Pointer(&buf[0])

	a.mu.Lock()
	a.live[p] = buf
	a.mu.Unlock()
	return p
}

func (a *GoAllocator) Free(p unsafe.Pointer) {
	a.mu.Lock()
	delete(a.live, p)
	a.mu.Unlock()
}

// Live returns the number of buffers not yet freed
func (a *GoAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// GoString copies a NUL-terminated buffer into a Go string. A nil pointer
// yields the empty string.
func GoString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

// Slot holds the one outbound string of a handle. It is not safe for
// concurrent use; the owning container serializes access.
type Slot struct {
	alloc Allocator
	ptr   unsafe.Pointer
}

// NewSlot creates an empty slot backed by alloc
func NewSlot(alloc Allocator) *Slot {
	return &Slot{alloc: alloc}
}

// Store replaces the slot contents with s and returns the new buffer. The
// previous buffer is freed. A string with a NUL byte can't be represented
// and leaves the slot untouched.
func (s *Slot) Store(str string) (unsafe.Pointer, error) {
	if strings.IndexByte(str, 0) >= 0 {
		return nil, ErrInteriorNUL
	}

	p := s.alloc.Alloc(str)
	if s.ptr != nil {
		s.alloc.Free(s.ptr)
	}
	s.ptr = p
	return p, nil
}

// Pointer returns the current buffer, allocating an empty string if
// nothing has been stored yet.
func (s *Slot) Pointer() unsafe.Pointer {
	if s.ptr == nil {
		s.ptr = s.alloc.Alloc("")
	}
	return s.ptr
}

// String copies the current contents
func (s *Slot) String() string {
	return GoString(s.ptr)
}

// Release frees the buffer. The slot is empty afterwards.
func (s *Slot) Release() {
	if s.ptr != nil {
		s.alloc.Free(s.ptr)
		s.ptr = nil
	}
}
