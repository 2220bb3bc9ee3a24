// Package mangle stores secret values XOR-masked against same-length random
// keys held in separate allocations, so plaintext exists in the primary
// allocation only inside a scoped access window. Box protects values of
// pointer-free types, AnyBox protects arbitrary types with caller-managed
// initialization and destruction, Blob protects raw byte secrets, and
// Option adds presence tracking on top of AnyBox. Storage and key live in
// page allocations outside the Go heap, locked in RAM and excluded from
// core dumps where the platform allows.
//
// The masking is deliberately weak. XOR against a single-use random key
// deters casual inspection of a partial read, a swap file, or a crash dump
// fragment; an observer who captures both allocations in one snapshot, or
// who can read memory while an access callback is running, recovers the
// plaintext trivially. Treat this as plaintext-hygiene, not encryption;
// sealed storage lives in the enclave package.
//
// Containers have a single owner at a time and carry no internal locking.
// Callers that share one across goroutines must serialize every call
// themselves.
package mangle
