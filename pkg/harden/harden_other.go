//go:build !linux

package harden

import (
	"errors"
	"fmt"
)

// DisableCoreDumps reports errors.ErrUnsupported on this platform.
func DisableCoreDumps() error {
	return fmt.Errorf("harden: core dump suppression: %w", errors.ErrUnsupported)
}

// LockAllMemory reports errors.ErrUnsupported on this platform.
func LockAllMemory() error {
	return fmt.Errorf("harden: memory locking: %w", errors.ErrUnsupported)
}

// TracerPresent always reports false on this platform.
func TracerPresent() bool {
	return false
}
