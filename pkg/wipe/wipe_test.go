package wipe

import (
	"bytes"
	"testing"
)

func TestZero(t *testing.T) {
	t.Run("all bytes become zero", func(t *testing.T) {
		b := []byte("sensitive key material 0123456789")
		Zero(b)
		for i, v := range b {
			if v != 0 {
				t.Fatalf("byte %d not zeroed: %#x", i, v)
			}
		}
	})

	t.Run("nil slice is a no-op", func(t *testing.T) {
		Zero(nil)
	})

	t.Run("empty slice is a no-op", func(t *testing.T) {
		Zero([]byte{})
	})

	t.Run("single byte", func(t *testing.T) {
		b := []byte{0xFF}
		Zero(b)
		if b[0] != 0 {
			t.Fatalf("got %#x, want 0", b[0])
		}
	})
}

func TestScramble(t *testing.T) {
	t.Run("contents change and length is preserved", func(t *testing.T) {
		b := make([]byte, 64)
		if err := Scramble(b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(b) != 64 {
			t.Fatalf("length changed: %d", len(b))
		}
		// 64 zero bytes surviving a scramble has probability 2^-512.
		if bytes.Equal(b, make([]byte, 64)) {
			t.Fatal("buffer still all zero after Scramble")
		}
	})

	t.Run("two scrambles differ", func(t *testing.T) {
		a := make([]byte, 32)
		b := make([]byte, 32)
		if err := Scramble(a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := Scramble(b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if bytes.Equal(a, b) {
			t.Fatal("independent scrambles produced identical bytes")
		}
	})

	t.Run("nil and empty slices are no-ops", func(t *testing.T) {
		if err := Scramble(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := Scramble([]byte{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
