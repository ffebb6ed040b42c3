package zero

import (
	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"
	"github.com/zerfoo/zerfoo/tensor"
)

// DType is a tagged variant over the element types this package knows how to
// shard. It is computed once per parameter at construction time (see
// classify), never re-derived by a per-step type switch.
type DType int

const (
	// DTypeUnsupported marks an element type this package refuses to shard.
	DTypeUnsupported DType = iota
	// DTypeFloat32 is the master-shard dtype and the only dtype the base
	// optimizer ever sees.
	DTypeFloat32
	// DTypeFloat16 is the "half" low-precision dtype; requires a float32
	// master copy.
	DTypeFloat16
	// DTypeBFloat16 is the "bfloat16" low-precision dtype; requires a
	// float32 master copy.
	DTypeBFloat16
	// DTypeFloat8 is an additional low-precision dtype the pack supports;
	// treated the same as half/bfloat16 for master-shard purposes.
	DTypeFloat8
)

// String implements fmt.Stringer for diagnostic logging.
func (d DType) String() string {
	switch d {
	case DTypeFloat32:
		return "float32"
	case DTypeFloat16:
		return "float16"
	case DTypeBFloat16:
		return "bfloat16"
	case DTypeFloat8:
		return "float8"
	default:
		return "unsupported"
	}
}

// LowPrecision reports whether a parameter of this dtype requires a float32
// master shard (i.e. it is narrower than float32).
func (d DType) LowPrecision() bool {
	return d == DTypeFloat16 || d == DTypeBFloat16 || d == DTypeFloat8
}

// classify computes the DType tag for T once, at construction time.
func classify[T tensor.Numeric]() DType {
	var zero T

	switch any(zero).(type) {
	case float32:
		return DTypeFloat32
	case float16.Float16:
		return DTypeFloat16
	case float16.BFloat16:
		return DTypeBFloat16
	case float8.Float8:
		return DTypeFloat8
	default:
		return DTypeUnsupported
	}
}

// elemSize returns sizeof(T) for the buffer-alias-safety check in the
// parameter-buffer view (component D): sizeof(param) must not exceed
// sizeof(grad).
func elemSize(d DType) int {
	switch d {
	case DTypeFloat32:
		return 4
	case DTypeFloat16, DTypeBFloat16:
		return 2
	case DTypeFloat8:
		return 1
	default:
		return 0
	}
}

// toFloat32Slice converts a typed slice to float32, following the teacher's
// established type-switch idiom for numeric type erasure (see
// graph.Parameter.AddGradient and optimizer.SGD.Clip).
func toFloat32Slice[T tensor.Numeric](src []T) []float32 {
	dst := make([]float32, len(src))

	for i, v := range src {
		switch val := any(v).(type) {
		case float32:
			dst[i] = val
		case float16.Float16:
			dst[i] = val.ToFloat32()
		case float16.BFloat16:
			dst[i] = val.ToFloat32()
		case float8.Float8:
			dst[i] = val.ToFloat32()
		}
	}

	return dst
}

// fromFloat32Slice writes src into dst, converting each element to T. dst
// must already be sized to len(src).
func fromFloat32Slice[T tensor.Numeric](dst []T, src []float32) {
	var zero T

	switch any(zero).(type) {
	case float32:
		for i, v := range src {
			dst[i] = any(v).(T)
		}
	case float16.Float16:
		for i, v := range src {
			dst[i] = any(float16.FromFloat32(v)).(T)
		}
	case float16.BFloat16:
		for i, v := range src {
			dst[i] = any(float16.BFloat16FromFloat32(v)).(T)
		}
	case float8.Float8:
		for i, v := range src {
			dst[i] = any(float8.ToFloat8(v)).(T)
		}
	}
}
