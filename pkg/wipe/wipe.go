// Package wipe destroys the contents of byte buffers in a way the compiler
// cannot optimize away.
package wipe

import (
	"crypto/rand"
	"fmt"
	"runtime"
)

// Zero overwrites every byte of b with 0x00. The go:noinline directive
// prevents the compiler from inlining and eliding the stores as dead writes;
// runtime.KeepAlive ensures the slice is not collected before the zeroing
// completes.
//
//go:noinline
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Scramble overwrites every byte of b with cryptographically secure random
// bytes. Unlike Zero, the result is indistinguishable from key material,
// which avoids advertising "a secret was here" to a memory scanner.
func Scramble(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("wipe: crypto/rand failed: %w", err)
	}
	runtime.KeepAlive(b)
	return nil
}
