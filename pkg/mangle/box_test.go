package mangle

import (
	"bytes"
	"testing"
	"unsafe"
)

// apiCredential is a pointer-free aggregate of the shape this package
// typically protects.
type apiCredential struct {
	ID    uint64
	Token [32]byte
	Epoch int64
}

// --------------------------------------------------------------------------
// construction
// --------------------------------------------------------------------------

func TestNewFrom(t *testing.T) {
	t.Run("round-trip reads the stored value", func(t *testing.T) {
		cred := apiCredential{ID: 7, Epoch: 1700000000}
		for i := range cred.Token {
			cred.Token[i] = byte(i)
		}

		b := NewFrom(cred)
		defer b.Destroy()

		var got apiCredential
		b.WithUnmangled(func(p *apiCredential) {
			got = *p
		})
		if got != cred {
			t.Fatalf("got %+v, want %+v", got, cred)
		}
	})

	t.Run("storage at rest is masked", func(t *testing.T) {
		v := uint64(0x1122334455667788)
		wantBytes := make([]byte, 8)
		copy(wantBytes, unsafe.Slice((*byte)(unsafe.Pointer(&v)), 8))

		b := NewFrom(v)
		defer b.Destroy()

		// Storage XOR key must encode the plaintext exactly.
		if !bytes.Equal(atRest(&b.c), wantBytes) {
			t.Fatal("storage xor key does not recover the plaintext")
		}
		// The raw storage itself must not (a zero key has probability 2^-64).
		if bytes.Equal(storageSnapshot(&b.c), wantBytes) {
			t.Fatal("raw storage holds the plaintext at rest")
		}
	})

	t.Run("zero value box reads zero", func(t *testing.T) {
		b := New[uint32]()
		defer b.Destroy()

		b.WithUnmangled(func(p *uint32) {
			if *p != 0 {
				t.Fatalf("fresh box holds %d, want 0", *p)
			}
		})
	})

	t.Run("pointerful types are rejected", func(t *testing.T) {
		assertPanics := func(name string, f func()) {
			defer func() {
				if recover() == nil {
					t.Fatalf("%s: expected panic", name)
				}
			}()
			f()
		}
		assertPanics("pointer", func() { New[*int]() })
		assertPanics("string", func() { NewFrom("secret") })
		assertPanics("slice field", func() {
			type leaky struct {
				Raw []byte
			}
			New[leaky]()
		})
	})
}

// --------------------------------------------------------------------------
// scoped access
// --------------------------------------------------------------------------

func TestBoxAccess(t *testing.T) {
	t.Run("read then mutate then read", func(t *testing.T) {
		b := NewFrom(42)
		defer b.Destroy()

		b.WithUnmangled(func(p *int) {
			if *p != 42 {
				t.Fatalf("first read: got %d, want 42", *p)
			}
			*p = 43
		})
		b.WithUnmangled(func(p *int) {
			if *p != 43 {
				t.Fatalf("second read: got %d, want 43", *p)
			}
		})
	})

	t.Run("plaintext visible only inside the window", func(t *testing.T) {
		secret := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
		b := NewFrom(secret)
		defer b.Destroy()

		var inside []byte
		b.WithUnmangled(func(p *[16]byte) {
			inside = make([]byte, 16)
			copy(inside, p[:])
		})
		if !bytes.Equal(inside, secret[:]) {
			t.Fatal("callback saw wrong plaintext")
		}
		if bytes.Equal(storageSnapshot(&b.c), secret[:]) {
			t.Fatal("storage still plaintext after the window closed")
		}
		if !bytes.Equal(atRest(&b.c), secret[:]) {
			t.Fatal("masked image no longer encodes the plaintext")
		}
	})

	t.Run("panic in callback still remasks", func(t *testing.T) {
		secret := uint64(0xCAFEBABE00C0FFEE)
		wantBytes := make([]byte, 8)
		copy(wantBytes, unsafe.Slice((*byte)(unsafe.Pointer(&secret)), 8))

		b := NewFrom(secret)
		defer b.Destroy()

		func() {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic to propagate")
				}
			}()
			b.WithUnmangled(func(p *uint64) {
				panic("boom")
			})
		}()

		if bytes.Equal(storageSnapshot(&b.c), wantBytes) {
			t.Fatal("storage left unmasked after panic")
		}
		if !bytes.Equal(atRest(&b.c), wantBytes) {
			t.Fatal("masked image corrupted by panic path")
		}

		// The box stays usable.
		b.WithUnmangled(func(p *uint64) {
			if *p != secret {
				t.Fatalf("got %#x, want %#x", *p, secret)
			}
		})
	})

	t.Run("storage is over-aligned", func(t *testing.T) {
		b := New[[96]byte]()
		defer b.Destroy()

		b.WithUnmangled(func(p *[96]byte) {
			addr := uintptr(unsafe.Pointer(p))
			if addr%64 != 0 {
				t.Fatalf("storage address %#x not 64-byte aligned", addr)
			}
		})
	})

	t.Run("zero-size type still runs the callback", func(t *testing.T) {
		b := New[struct{}]()
		defer b.Destroy()

		if b.c.size != 0 || b.c.data != nil || b.c.key != nil {
			t.Fatal("zero-size box should own no storage")
		}

		ran := false
		b.WithUnmangled(func(p *struct{}) {
			if p == nil {
				t.Fatal("callback received nil pointer")
			}
			ran = true
		})
		if !ran {
			t.Fatal("callback did not run for zero-size type")
		}
	})
}

// --------------------------------------------------------------------------
// rekey and destroy
// --------------------------------------------------------------------------

func TestBoxRekey(t *testing.T) {
	t.Run("value survives rekeying", func(t *testing.T) {
		b := NewFrom(int64(-987654321))
		defer b.Destroy()

		oldStorage := storageSnapshot(&b.c)
		oldKey := make([]byte, len(b.c.keyBytes()))
		copy(oldKey, b.c.keyBytes())

		for i := 0; i < 10; i++ {
			b.Rekey()
		}

		b.WithUnmangled(func(p *int64) {
			if *p != -987654321 {
				t.Fatalf("got %d after rekey, want -987654321", *p)
			}
		})

		// Both halves rotated (with overwhelming probability).
		if bytes.Equal(storageSnapshot(&b.c), oldStorage) && bytes.Equal(b.c.keyBytes(), oldKey) {
			t.Fatal("rekey changed neither storage nor key")
		}
	})

	t.Run("zero-size rekey is harmless", func(t *testing.T) {
		b := New[struct{}]()
		defer b.Destroy()
		b.Rekey()
	})
}

func TestBoxDestroy(t *testing.T) {
	t.Run("destroy is idempotent", func(t *testing.T) {
		b := NewFrom(uint32(9))
		b.Destroy()
		b.Destroy()
	})

	t.Run("access after destroy panics", func(t *testing.T) {
		b := NewFrom(uint32(9))
		b.Destroy()

		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on access after Destroy")
			}
		}()
		b.WithUnmangled(func(p *uint32) {})
	})

	t.Run("rekey after destroy panics", func(t *testing.T) {
		b := NewFrom(uint32(9))
		b.Destroy()

		defer func() {
			if recover() == nil {
				t.Fatal("expected panic on rekey after Destroy")
			}
		}()
		b.Rekey()
	})
}

// --------------------------------------------------------------------------
// WipeValue
// --------------------------------------------------------------------------

func TestWipeValue(t *testing.T) {
	t.Run("scrubs a struct in place", func(t *testing.T) {
		cred := apiCredential{ID: 1, Epoch: 2}
		for i := range cred.Token {
			cred.Token[i] = 0xEE
		}
		WipeValue(&cred)
		if cred != (apiCredential{}) {
			t.Fatalf("value not wiped: %+v", cred)
		}
	})

	t.Run("zero-size value is a no-op", func(t *testing.T) {
		v := struct{}{}
		WipeValue(&v)
	})
}
