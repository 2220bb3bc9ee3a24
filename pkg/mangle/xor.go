package mangle

import (
	"runtime"
	"sync/atomic"
)

// maskSeq is the target of the ordering barrier in Mask. Its value is
// meaningless.
var maskSeq uint32

// Mask XORs each byte of data with the corresponding byte of key, in place.
// XOR is its own inverse, so the same call both masks and unmasks; key is
// only read. The lengths must match exactly; Mask panics otherwise.
//
// Every call ends with an ordering barrier, including calls with
// zero-length input. The go:noinline directive and runtime.KeepAlive stop
// the compiler from treating the stores as dead, and the atomic add is a
// full barrier under the Go memory model, so the mask state has settled
// before any subsequent operation can observe the buffer.
//
//go:noinline
func Mask(data, key []byte) {
	if len(data) != len(key) {
		panic("mangle: data and key lengths differ")
	}
	for i := range data {
		data[i] ^= key[i]
	}
	atomic.AddUint32(&maskSeq, 0)
	runtime.KeepAlive(data)
	runtime.KeepAlive(key)
}
