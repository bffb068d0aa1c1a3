package handle

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

var (
	ErrInvalidHandle  = errors.New("invalid handle")
	ErrHandleNotFound = errors.New("handle not found")
	ErrHandleReleased = errors.New("handle already released")
)

// Handle identifies a registered value. The zero Handle is never issued.
type Handle uintptr

// Invalid is the handle value that never refers to anything
const Invalid Handle = 0

// String returns the decimal form used in URLs and logs
func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// Parse reads a handle from its decimal form
func Parse(s string) (Handle, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Invalid, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
	}
	if n == 0 {
		return Invalid, ErrInvalidHandle
	}
	return Handle(n), nil
}

type entry[T any] struct {
	value          T
	createdAt      time.Time
	lastAccessedAt time.Time
}

// Info describes a live handle
type Info struct {
	Handle         Handle
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Registry maps handles to values
type Registry[T any] struct {
	entries map[Handle]*entry[T]
	next    Handle
	now     func() time.Time
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[Handle]*entry[T]),
		next:    1,
		now:     time.Now,
	}
}

// Register stores value and returns its new handle
func (r *Registry[T]) Register(value T) Handle {
	return r.RegisterFunc(func(Handle) T { return value })
}

// RegisterFunc stores the value built by newValue, which receives the handle
// being issued. newValue runs with the registry locked and must not call
// back into it.
func (r *Registry[T]) RegisterFunc(newValue func(Handle) T) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.next
	r.next++

	now := r.now()
	r.entries[h] = &entry[T]{
		value:          newValue(h),
		createdAt:      now,
		lastAccessedAt: now,
	}
	return h
}

// Lookup returns the value for h and marks it as used
func (r *Registry[T]) Lookup(h Handle) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.find(h)
	if err != nil {
		var zero T
		return zero, err
	}
	e.lastAccessedAt = r.now()
	return e.value, nil
}

// Release removes h from the registry and returns its value. A handle can
// be released once; later calls fail with ErrHandleReleased.
func (r *Registry[T]) Release(h Handle) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.find(h)
	if err != nil {
		var zero T
		return zero, err
	}
	delete(r.entries, h)
	return e.value, nil
}

// find must be called with the lock held
func (r *Registry[T]) find(h Handle) (*entry[T], error) {
	if h == Invalid {
		return nil, ErrInvalidHandle
	}
	e, exists := r.entries[h]
	if exists {
		return e, nil
	}
	if h < r.next {
		return nil, fmt.Errorf("%w: %s", ErrHandleReleased, h)
	}
	return nil, fmt.Errorf("%w: %s", ErrHandleNotFound, h)
}

// List returns information about every live handle, oldest first
func (r *Registry[T]) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Info, 0, len(r.entries))
	for h, e := range r.entries {
		result = append(result, Info{
			Handle:         h,
			CreatedAt:      e.createdAt,
			LastAccessedAt: e.lastAccessedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Handle < result[j].Handle })
	return result
}

// Count returns the number of live handles
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep removes handles that haven't been used in maxAge and returns their
// values so the caller can close them.
func (r *Registry[T]) Sweep(maxAge time.Duration) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	var removed []T

	for h, e := range r.entries {
		if e.lastAccessedAt.Before(cutoff) {
			delete(r.entries, h)
			removed = append(removed, e.value)
		}
	}

	return removed
}
