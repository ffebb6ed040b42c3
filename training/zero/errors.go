package zero

import "errors"

// Sentinel errors for every fatal condition this package can raise. Callers
// should match with errors.Is; none of these are retried internally.
var (
	// ErrInvalidRange is returned when a Range is constructed with end < start.
	ErrInvalidRange = errors.New("zero: invalid range, end before start")

	// ErrUnsupportedDtype is returned when a registered parameter's element
	// type is neither float32 nor one of the recognized low-precision types.
	ErrUnsupportedDtype = errors.New("zero: unsupported parameter element type")

	// ErrBufferAliasUnsafe is returned when the parameter-buffer view would
	// need to reinterpret a grad buffer as a wider parameter type.
	ErrBufferAliasUnsafe = errors.New("zero: parameter dtype wider than grad buffer dtype")

	// ErrSizeMismatch is returned by the copy engine when a shard's element
	// count disagrees with the index map's range size.
	ErrSizeMismatch = errors.New("zero: shard size does not match partition range")

	// ErrCheckpointShapeMismatch is returned on load when the restored
	// partition's shape disagrees with the current one (world size or model
	// shape changed between save and load).
	ErrCheckpointShapeMismatch = errors.New("zero: checkpoint partition does not match current world")

	// ErrCollectiveFailure wraps a failure reported by the injected
	// collective-communication layer.
	ErrCollectiveFailure = errors.New("zero: collective operation failed")

	// ErrMissingGradient is returned when a parameter registered with the
	// core has no main-grad tensor, or one of the wrong element count, at
	// copy time.
	ErrMissingGradient = errors.New("zero: parameter has no usable main gradient")
)
