package mangle

// Box holds one value of a pointer-free type, XOR-masked against a random
// key of the same length. At rest neither the storage nor the key alone
// reveals the value; a memory dump captures ciphertext and key in separate
// page allocations. The plaintext appears in the storage only for the
// duration of a WithUnmangled callback.
//
// A Box has a single owner and no internal locking. It must be released
// with Destroy; the backing pages are not garbage collected.
type Box[T any] struct {
	c cell
}

// New returns a box protecting the zero value of T. T must be pointer-free
// (see PointerFree); New panics otherwise.
func New[T any]() *Box[T] {
	if !PointerFree[T]() {
		panic("mangle: type contains pointers, use AnyBox")
	}
	return &Box[T]{c: newCell(sizeOf[T]())}
}

// NewFrom returns a box protecting a copy of v, masked before NewFrom
// returns. The copy passed in is wiped; the caller's own original is the
// caller's to scrub. Panics if T is not pointer-free.
func NewFrom[T any](v T) *Box[T] {
	b := New[T]()
	b.WithUnmangled(func(p *T) {
		*p = v
	})
	WipeValue(&v)
	return b
}

// WithUnmangled unmasks the value, passes a pointer to it to f for reading
// or in-place mutation, and remasks before returning. The remask runs even
// if f panics, and both transitions end with the ordering barrier. The
// pointer aliases the box's storage and is valid only inside f; it must not
// be retained, returned or sent anywhere.
func (b *Box[T]) WithUnmangled(f func(*T)) {
	b.c.checkAlive()
	b.c.unmask()
	defer b.c.mask()
	f(view[T](&b.c))
}

// Rekey rotates the masking key in place without reconstructing the
// plaintext. Call it periodically to limit how long any single memory
// snapshot stays correlatable.
func (b *Box[T]) Rekey() {
	b.c.rekey()
}

// Destroy zeroes storage and key and releases both allocations. Idempotent.
// Any other use of the box after Destroy panics.
func (b *Box[T]) Destroy() {
	b.c.destroy()
}
