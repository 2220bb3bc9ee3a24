// Package harden applies process-wide protections that complement per-region
// masking: core dump suppression, whole-process memory locking, and a probe
// for an attached tracer. Everything here is Linux functionality; on other
// platforms the operations report errors.ErrUnsupported.
package harden
