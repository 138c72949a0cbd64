// Package computepass provides the recording and replay core of a portable
// GPU compute-pass abstraction for Go applications.
//
// This package wraps the lower-level hal/ and core/ packages into a
// user-friendly API aligned with the W3C WebGPU specification's compute
// pass encoder. Recording a pass is cheap and append-only; validation,
// resource binding, barrier computation, and memory-init fixups happen
// once, at pass end, against a backend supplied through the hal package.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/computepass"
//	    _ "github.com/gogpu/computepass/hal/noop"
//	)
//
//	instance, err := computepass.CreateInstance(nil)
//	// ...
//
// # Resource Lifecycle
//
// All GPU resources must be explicitly released with Release().
// Resources are reference-counted internally. Device methods that return an
// error return ErrReleased once the device has been released.
//
// # Backend Registration
//
// Backends are registered via blank imports. This repository ships only the
// dependency-free noop backend, intended for tests and for driving the
// compute-pass core without a real GPU:
//
//	_ "github.com/gogpu/computepass/hal/noop"
//
// # Thread Safety
//
// Instance, Adapter, and Device are safe for concurrent use.
// Encoders (CommandEncoder, ComputePassEncoder) are NOT thread-safe.
package computepass
