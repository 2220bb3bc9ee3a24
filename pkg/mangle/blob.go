package mangle

import (
	"github.com/Blue-Moss-Labs/Mangle/pkg/wipe"
)

// Blob holds a byte secret of runtime-determined length (a token, a key, a
// credential) XOR-masked against an equal-length random key. It is the
// []byte-shaped counterpart of Box.
//
// No method returns the plaintext; WithUnmangled is the only way in, so a
// copy cannot leak past the access window. A Blob has a single owner and no
// internal locking.
type Blob struct {
	c cell
}

// NewBlob masks a copy of plaintext under a fresh random key and wipes the
// caller's buffer so it does not linger in memory. A zero-length plaintext
// produces an empty blob that still honors the access protocol.
func NewBlob(plaintext []byte) *Blob {
	b := &Blob{c: newCell(len(plaintext))}
	b.c.withUnmangled(func(view []byte) {
		copy(view, plaintext)
	})
	wipe.Zero(plaintext)
	return b
}

// WithUnmangled unmasks the blob in place, passes the plaintext slice to f
// for reading or in-place mutation, and remasks before returning, even if f
// panics. Both transitions end with the ordering barrier. The slice aliases
// the blob's storage and is valid only inside f. An empty blob passes an
// empty slice.
func (b *Blob) WithUnmangled(f func([]byte)) {
	b.c.withUnmangled(f)
}

// Update replaces the contents with newPlaintext under a fresh key and
// fresh storage. The old storage and key are zeroed and released, and the
// caller's buffer is wiped.
func (b *Blob) Update(newPlaintext []byte) {
	b.c.checkAlive()
	b.c.destroy()
	b.c = newCell(len(newPlaintext))
	b.c.withUnmangled(func(view []byte) {
		copy(view, newPlaintext)
	})
	wipe.Zero(newPlaintext)
}

// Len returns the length of the protected secret, 0 once destroyed.
func (b *Blob) Len() int {
	if b.c.dead {
		return 0
	}
	return b.c.size
}

// Rekey rotates the masking key in place without reconstructing the
// plaintext. Call periodically to limit how long a single memory snapshot
// stays correlatable.
func (b *Blob) Rekey() {
	b.c.rekey()
}

// Destroy zeroes storage and key and releases both allocations. Idempotent.
// Any access after Destroy panics.
func (b *Blob) Destroy() {
	b.c.destroy()
}
