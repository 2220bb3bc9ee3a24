package mangle

// AnyBox holds one value of an arbitrary type, XOR-masked like a Box but
// without the pointer-free requirement, and therefore without any help from
// the type system. The box treats its contents purely as bytes: it starts
// logically uninitialized, it never learns whether a value was constructed,
// and destruction is an explicit, caller-attested step.
//
// Two caller contracts replace the tracking the box refuses to do:
//
//   - Initialization. The first WithUnmangled callback receives a pointer
//     to uninitialized (zero) memory and must construct the value in place
//     before anything reads it. Later calls assume a constructed value.
//   - Reachability. While masked, any pointers inside the value are bytes
//     the garbage collector cannot see. Whatever they reference must stay
//     reachable through some other live reference for the life of the box,
//     or the collector will reclaim it out from under the secret.
//
// An AnyBox has a single owner and no internal locking.
type AnyBox[T any] struct {
	c cell
}

// NewAny returns a box whose storage is allocated, zero-filled and masked,
// holding no constructed value yet.
func NewAny[T any]() *AnyBox[T] {
	return &AnyBox[T]{c: newCell(sizeOf[T]())}
}

// WithUnmangled unmasks the storage, passes a pointer to it to f, and
// remasks before returning, even if f panics. Both transitions end with the
// ordering barrier. The pointer is valid only inside f.
func (b *AnyBox[T]) WithUnmangled(f func(*T)) {
	b.c.checkAlive()
	b.c.unmask()
	defer b.c.mask()
	f(view[T](&b.c))
}

// DropInPlace unmasks the storage, runs destructor on the plaintext value,
// and remasks, leaving the box valid and reusable for a fresh in-place
// construction. The remask and barrier run even if the destructor panics.
// A nil destructor runs no user logic but still performs the full cycle.
//
// The caller attests that a constructed value is present. Calling this on a
// never-initialized box, or twice without re-initializing in between, runs
// the destructor over garbage; the box cannot detect either.
func (b *AnyBox[T]) DropInPlace(destructor func(*T)) {
	b.c.checkAlive()
	b.c.unmask()
	defer b.c.mask()
	if destructor != nil {
		destructor(view[T](&b.c))
	}
}

// Rekey rotates the masking key in place without reconstructing the
// plaintext.
func (b *AnyBox[T]) Rekey() {
	b.c.rekey()
}

// Destroy zeroes storage and key and releases both allocations, without
// running any destructor: releasing an AnyBox that holds a constructed
// value leaks whatever that value owned, which is the safe default when the
// box cannot know whether construction ever happened. Use DropInPlace first
// when the value needs cleanup. Idempotent; any other use after Destroy
// panics.
func (b *AnyBox[T]) Destroy() {
	b.c.destroy()
}
