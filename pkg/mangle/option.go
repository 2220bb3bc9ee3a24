package mangle

// Option is a present-or-absent wrapper around an AnyBox that restores the
// initialization tracking AnyBox deliberately lacks: when a value is
// present it is guaranteed constructed, so Clear and replacement can run
// the destructor safely. Presence lives outside the masked storage and
// reveals only that a value exists, never its content.
//
// The destructor given at construction runs whenever a held value is
// discarded (Clear, Set over an existing value). A nil destructor means the
// type needs no cleanup beyond wiping.
//
// An Option has a single owner and no internal locking.
type Option[T any] struct {
	box     *AnyBox[T]
	destroy func(*T)
}

// NewOption returns an empty Option whose discarded values will be released
// with destructor.
func NewOption[T any](destructor func(*T)) *Option[T] {
	return &Option[T]{destroy: destructor}
}

// IsSome reports whether a value is present.
func (o *Option[T]) IsSome() bool { return o.box != nil }

// IsNone reports whether the Option is empty.
func (o *Option[T]) IsNone() bool { return o.box == nil }

// Set replaces the held value with one constructed in place by init, which
// receives a pointer to fresh zeroed storage inside the access window. The
// new value is built first; only then is the previous value, if any,
// destroyed and its storage released. A panic in init therefore leaves the
// previous value intact.
func (o *Option[T]) Set(init func(*T)) {
	nb := NewAny[T]()
	nb.WithUnmangled(init)
	o.replace(nb)
}

// SetValue stores a copy of v and wipes the copy passed in. The caller's
// own original is the caller's to scrub.
func (o *Option[T]) SetValue(v T) {
	o.Set(func(p *T) {
		*p = v
	})
	WipeValue(&v)
}

func (o *Option[T]) replace(nb *AnyBox[T]) {
	if o.box != nil {
		o.box.DropInPlace(o.destroy)
		o.box.Destroy()
	}
	o.box = nb
}

// Map runs f against the held value inside an access window and reports
// whether a value was present; when empty, f does not run.
func (o *Option[T]) Map(f func(*T)) bool {
	if o.box == nil {
		return false
	}
	o.box.WithUnmangled(f)
	return true
}

// MapOr runs f against the held value and returns its result, or fallback
// when the Option is empty. It is a package-level function because Go
// methods cannot introduce type parameters.
func MapOr[T, R any](o *Option[T], fallback R, f func(*T) R) R {
	if o.box == nil {
		return fallback
	}
	var out R
	o.box.WithUnmangled(func(p *T) {
		out = f(p)
	})
	return out
}

// Take moves the value out and leaves the Option empty. The destructor does
// not run: ownership of whatever the value holds moves to the caller along
// with it. The returned value is an ordinary plaintext copy outside any
// masking; scrub it with WipeValue when finished. The second return is
// false when the Option was empty.
func (o *Option[T]) Take() (T, bool) {
	var out T
	if o.box == nil {
		return out, false
	}
	o.box.WithUnmangled(func(p *T) {
		out = *p
	})
	o.box.Destroy()
	o.box = nil
	return out, true
}

// Clear destroys the held value in place, releases its storage and leaves
// the Option empty. A no-op when already empty.
func (o *Option[T]) Clear() {
	if o.box == nil {
		return
	}
	o.box.DropInPlace(o.destroy)
	o.box.Destroy()
	o.box = nil
}

// Rekey rotates the masking key of the held value's storage, if any.
func (o *Option[T]) Rekey() {
	if o.box != nil {
		o.box.Rekey()
	}
}
