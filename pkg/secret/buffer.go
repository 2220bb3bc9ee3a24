// Package secret provides a staging buffer for sensitive plaintext that has
// to cross a process boundary: passwords read from a terminal, tokens read
// from files or pipes, key material about to be sealed.
//
// Buffer keeps its contents in a page allocation outside the Go heap,
// locked into RAM and excluded from core dumps where the platform allows,
// and zeroes the pages on Close. Unlike the single-owner containers in the
// mangle package, a Buffer is safe for concurrent use; it is the outer
// layer that touches files, terminals and readers, where ownership is
// looser. The contents are plaintext while the Buffer lives: move them
// into a mangle container or an enclave when they need to stay around.
package secret

import (
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/Blue-Moss-Labs/Mangle/pkg/memcall"
	"github.com/Blue-Moss-Labs/Mangle/pkg/wipe"
)

// Buffer holds sensitive plaintext in locked, dump-excluded memory that is
// zeroed on Close. After Close, any access to the contents panics. A Buffer
// must not be copied.
type Buffer struct {
	mu     sync.Mutex
	region *memcall.Region
	length int
	closed bool
}

// New allocates a zero-filled buffer of the given size. The caller must
// Close it when the secret is no longer needed; the backing pages are not
// garbage collected.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	region, err := memcall.Alloc(size)
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}

	return &Buffer{
		region: region,
		length: size,
	}, nil
}

// NewFromBytes creates a buffer holding a copy of source, then zeroes the
// caller's slice so the secret no longer lives in unprotected memory.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}

	copy(buffer.region.Bytes(), source)
	wipe.Zero(source)

	return buffer, nil
}

// Bytes returns the secret data. The slice points directly into the
// protected region; do not retain it past the Buffer's lifetime. Panics if
// the buffer has been closed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}

	return b.region.Bytes()[:b.length]
}

// String returns the secret as a string. The string is a heap copy that Go
// will neither lock nor zero; use it only at API boundaries that insist on
// strings, and prefer Bytes everywhere else. Panics if the buffer has been
// closed.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}

	return string(b.region.Bytes()[:b.length])
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

// Locked reports whether the backing pages are pinned in RAM. False means
// allocation-time mlock failed (typically RLIMIT_MEMLOCK) and the secret
// could reach swap.
func (b *Buffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return !b.closed && b.region.Locked()
}

// EqualBytes compares the contents against data in constant time. Panics if
// the buffer has been closed.
func (b *Buffer) EqualBytes(data []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}

	return subtle.ConstantTimeCompare(b.region.Bytes()[:b.length], data) == 1
}

// Equal compares two buffers in constant time.
func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil {
		return false
	}
	otherBytes := other.Bytes()
	return b.EqualBytes(otherBytes)
}

// Close zeroes the contents and releases the backing pages. After Close,
// any access to the contents panics. Close is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.length = 0

	// Free wipes the whole mapping before unmapping it. The process keeps
	// running even if the unmap fails, so the error is informational.
	if err := b.region.Free(); err != nil {
		return fmt.Errorf("secret: %w", err)
	}
	return nil
}
