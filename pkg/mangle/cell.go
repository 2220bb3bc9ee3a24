package mangle

import (
	"fmt"
	"unsafe"

	"github.com/Blue-Moss-Labs/Mangle/pkg/memcall"
	"github.com/Blue-Moss-Labs/Mangle/pkg/wipe"
)

// cell is the storage engine shared by every container in this package: a
// masked byte image in one page allocation and its key in another. A cell
// of size 0 owns no allocations but still runs the full mask/unmask/fence
// protocol. Outside a withUnmangled call the image is always masked.
type cell struct {
	data *memcall.Region
	key  *memcall.Region
	size int
	dead bool
}

// newCell allocates storage and key, fills the key with random bytes and
// masks the zero-filled storage. Allocation or randomness failure panics;
// secret storage cannot run without either.
func newCell(size int) cell {
	if size < 0 {
		panic("mangle: negative size")
	}
	c := cell{size: size}
	if size == 0 {
		return c
	}

	c.data = memcall.MustAlloc(size)
	c.key = memcall.MustAlloc(size)
	if err := wipe.Scramble(c.key.Bytes()); err != nil {
		panic(fmt.Sprintf("mangle: key generation failed: %v", err))
	}
	c.mask()
	return c
}

func (c *cell) bytes() []byte {
	if c.data == nil {
		return nil
	}
	return c.data.Bytes()
}

func (c *cell) keyBytes() []byte {
	if c.key == nil {
		return nil
	}
	return c.key.Bytes()
}

// mask and unmask perform the same XOR; two names keep call sites honest
// about which state transition they mean.
func (c *cell) mask()   { Mask(c.bytes(), c.keyBytes()) }
func (c *cell) unmask() { Mask(c.bytes(), c.keyBytes()) }

func (c *cell) checkAlive() {
	if c.dead {
		panic("mangle: use of destroyed container")
	}
}

// withUnmangled exposes the plaintext bytes to f. The remask runs on every
// exit path, including a panic inside f, and both transitions carry the
// ordering barrier.
func (c *cell) withUnmangled(f func([]byte)) {
	c.checkAlive()
	c.unmask()
	defer c.mask()
	f(c.bytes())
}

// rekey rotates the key by XORing a fresh random difference into both the
// storage and the key: the image moves from P^K to P^K^D while the key
// moves from K to K^D. The plaintext never materializes.
func (c *cell) rekey() {
	c.checkAlive()
	diff := make([]byte, c.size)
	if err := wipe.Scramble(diff); err != nil {
		panic(fmt.Sprintf("mangle: rekey failed: %v", err))
	}
	Mask(c.bytes(), diff)
	Mask(c.keyBytes(), diff)
	wipe.Zero(diff)
}

// destroy zeroes storage and key by self-masking (X XOR X = 0) and returns
// both allocations to the platform. Idempotent; every later use of the cell
// panics.
func (c *cell) destroy() {
	if c.dead {
		return
	}
	Mask(c.bytes(), c.bytes())
	Mask(c.keyBytes(), c.keyBytes())
	if c.data != nil {
		_ = c.data.Free()
		_ = c.key.Free()
		c.data = nil
		c.key = nil
	}
	c.dead = true
}

// view reinterprets the cell's storage as a *T. Only meaningful between an
// unmask and the matching remask. Zero-size types have no storage; they get
// the runtime's shared zero-size base, which new provides.
func view[T any](c *cell) *T {
	if c.size == 0 {
		return new(T)
	}
	return (*T)(unsafe.Pointer(&c.data.Bytes()[0]))
}

// sizeOf returns T's storage size in bytes.
func sizeOf[T any]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// WipeValue overwrites the bytes of the value at p with zeros, with the
// same anti-elision guarantees as wipe.Zero. Use it to scrub local copies
// once their contents have moved into masked storage, or values handed back
// by Take once they are no longer needed.
func WipeValue[T any](p *T) {
	n := int(unsafe.Sizeof(*p))
	if n == 0 {
		return
	}
	wipe.Zero(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}
