//go:build windows

package memcall

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

func allocPages(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size),
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("VirtualAlloc failed: %w", err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func lockPages(b []byte) error {
	return windows.VirtualLock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
}

func unlockPages(b []byte) error {
	return windows.VirtualUnlock(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)))
}

func freePages(b []byte) error {
	if err := windows.VirtualFree(uintptr(unsafe.Pointer(&b[0])), 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("VirtualFree failed: %w", err)
	}
	return nil
}

// excludeFromDumps is a no-op on Windows; there is no per-region dump
// exclusion equivalent to madvise.
func excludeFromDumps(b []byte) {}
