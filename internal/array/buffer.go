package array

import (
	"sync"
	"sync/atomic"
)

// buffer is a reference-counted byte buffer shared between an array and all
// views derived from it. The last holder releasing it frees the memory.
// Concurrent writes to overlapping views are the caller's responsibility to
// serialize; only the refcount itself is synchronized.
type buffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // for safe deallocation
}

// newBuffer creates a zeroed buffer with refCount = 1.
func newBuffer(size int) *buffer {
	buf := &buffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// adoptBuffer wraps an existing byte slice, taking ownership, with refCount = 1.
func adoptBuffer(data []byte) *buffer {
	buf := &buffer{
		data: data,
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count (views, clones).
func (b *buffer) addRef() {
	b.refCount.Add(1)
}

// release decrements the reference count and drops the data when it reaches 0.
func (b *buffer) release() {
	if b.refCount.Add(-1) == 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.data = nil
	}
}
