package zero

import (
	"fmt"

	"github.com/zerfoo/zerfoo/graph"
	"github.com/zerfoo/zerfoo/tensor"
)

// Parameter adapts one model-side *graph.Parameter[T] into the type-erased
// shape this package's group builder needs. It follows the teacher's own
// idiom for erasing a generic parameter's element type (see
// graph.Parameter.AddGradient/ClearGradient and optimizer.SGD.Clip, both of
// which type-switch over any(zero-value)) rather than inventing a new
// reflection-based scheme.
type Parameter interface {
	// Name identifies the parameter for logging and error messages.
	Name() string
	// Numel is the parameter's flattened element count.
	Numel() int
	// DType is the parameter's element type tag, computed once at wrap time.
	DType() DType
	// Shared reports whether the source marked this parameter as shared
	// across model replicas; propagated onto every shard built from it.
	Shared() bool
	// MainGradRange copies count = len(dst) elements of the parameter's
	// current gradient, starting at elemOffset, converted to float32, into
	// dst. Returns ErrMissingGradient if the parameter has no gradient or
	// one too short to cover the requested range.
	MainGradRange(elemOffset int, dst []float32) error
	// SetValueFromFloat32 writes src, converted to the parameter's native
	// element type, into the parameter's value storage starting at
	// elemOffset.
	SetValueFromFloat32(elemOffset int, src []float32) error
	// ValueFloat32 copies count elements of the parameter's value,
	// starting at elemOffset, converted to float32, into dst.
	ValueFloat32(elemOffset int, dst []float32) error

	// zeroGradRange zeroes the gradient data in r, a sub-range of the
	// parameter's own flattened layout. Unexported: only this package's
	// own shard bookkeeping (ShardView) and the lifecycle façade's ZeroGrad
	// call it.
	zeroGradRange(r Range) error
}

// parameterAdapter wraps a *graph.Parameter[T] to satisfy Parameter.
type parameterAdapter[T tensor.Numeric] struct {
	name   string
	p      *graph.Parameter[T]
	dtype  DType
	shared bool
}

// WrapParameter builds a Parameter adapter over p. It fails with
// ErrUnsupportedDtype if T is not one of the dtypes this package recognizes.
func WrapParameter[T tensor.Numeric](name string, p *graph.Parameter[T], shared bool) (Parameter, error) {
	dtype := classify[T]()
	if dtype == DTypeUnsupported {
		var zero T
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedDtype, zero)
	}

	return &parameterAdapter[T]{name: name, p: p, dtype: dtype, shared: shared}, nil
}

func (a *parameterAdapter[T]) Name() string { return a.name }

func (a *parameterAdapter[T]) Numel() int { return a.p.Value.Size() }

func (a *parameterAdapter[T]) DType() DType { return a.dtype }

func (a *parameterAdapter[T]) Shared() bool { return a.shared }

func (a *parameterAdapter[T]) MainGradRange(elemOffset int, dst []float32) error {
	if a.p.Gradient == nil {
		return fmt.Errorf("%w: %s has no gradient", ErrMissingGradient, a.name)
	}

	src := a.p.Gradient.Data()
	if elemOffset < 0 || elemOffset+len(dst) > len(src) {
		return fmt.Errorf("%w: %s gradient has %d elements, want range [%d, %d)", ErrMissingGradient, a.name, len(src), elemOffset, elemOffset+len(dst))
	}

	copy(dst, toFloat32Slice(src[elemOffset:elemOffset+len(dst)]))

	return nil
}

func (a *parameterAdapter[T]) SetValueFromFloat32(elemOffset int, src []float32) error {
	data := a.p.Value.Data()
	if elemOffset < 0 || elemOffset+len(src) > len(data) {
		return fmt.Errorf("%w: %s write [%d, %d) out of bounds (%d)", ErrSizeMismatch, a.name, elemOffset, elemOffset+len(src), len(data))
	}

	fromFloat32Slice(data[elemOffset:elemOffset+len(src)], src)

	return nil
}

func (a *parameterAdapter[T]) ValueFloat32(elemOffset int, dst []float32) error {
	data := a.p.Value.Data()
	if elemOffset < 0 || elemOffset+len(dst) > len(data) {
		return fmt.Errorf("%w: %s read [%d, %d) out of bounds (%d)", ErrSizeMismatch, a.name, elemOffset, elemOffset+len(dst), len(data))
	}

	copy(dst, toFloat32Slice(data[elemOffset:elemOffset+len(dst)]))

	return nil
}

func (a *parameterAdapter[T]) zeroGradRange(r Range) error {
	if a.p.Gradient == nil {
		return nil
	}

	data := a.p.Gradient.Data()
	if r.Start < 0 || r.End > len(data) {
		return fmt.Errorf("%w: %s zero-grad range %s out of bounds (%d)", ErrSizeMismatch, a.name, r, len(data))
	}

	var zero T
	for i := r.Start; i < r.End; i++ {
		data[i] = zero
	}

	return nil
}

// MasterShard is a freshly allocated float32 shard: a copy of either a
// low-precision parameter's owned slice (shard_master_from_low_precision)
// or a float32 parameter's owned slice (shard_float). Neither kind aliases
// the source parameter's storage. The step rule only ever sees MasterShard
// values, wrapped as *graph.Parameter[float32].
type MasterShard struct {
	// Source is the model-side parameter this shard was built from.
	Source Parameter
	// Owned is Source's param-range-map entry this shard covers.
	Owned ParamRangeMap
	// Master is the float32 parameter the base optimizer steps. For both a
	// float32 and a low-precision source this is an independently
	// allocated copy of the owned range; Source's own storage is not
	// touched by the step rule.
	Master *graph.Parameter[float32]
	// IsClone is true for shard_master_from_low_precision entries, false
	// for shard_float entries built from a float32 parameter.
	IsClone bool
}

// newMasterShardFromFloat32 builds a shard_float entry: a float32 clone of
// the parameter's owned range. Per spec.md 4.C step 4 float32 parameters are
// conceptually stepped in place, but this package's MasterShard.Master is
// always an independently allocated *graph.Parameter[float32] regardless of
// IsClone — CopyMainToParams writes every shard's stepped value back into the
// parameter buffer unconditionally, so shard_float does not need to alias
// Source's storage to stay correct. IsClone only distinguishes provenance
// (float32 source vs. low-precision source) for callers that care.
func newMasterShardFromFloat32(src Parameter, owned ParamRangeMap) (*MasterShard, error) {
	size := owned.Param.Size()

	value := make([]float32, size)
	if err := src.ValueFloat32(owned.Param.Start, value); err != nil {
		return nil, err
	}

	valueTensor, err := tensor.New[float32]([]int{size}, value)
	if err != nil {
		return nil, err
	}

	gradTensor, err := tensor.New[float32]([]int{size}, nil)
	if err != nil {
		return nil, err
	}

	master := &graph.Parameter[float32]{
		Name:     src.Name() + ".shard",
		Value:    valueTensor,
		Gradient: gradTensor,
	}

	return &MasterShard{Source: src, Owned: owned, Master: master, IsClone: false}, nil
}

// newMasterShardFromLowPrecision builds a shard_master_from_low_precision
// entry: a freshly allocated float32 clone of the low-precision source's
// owned range, element-wise equal at construction time per spec.md §3.
func newMasterShardFromLowPrecision(src Parameter, owned ParamRangeMap) (*MasterShard, error) {
	size := owned.Param.Size()

	value := make([]float32, size)
	if err := src.ValueFloat32(owned.Param.Start, value); err != nil {
		return nil, err
	}

	valueTensor, err := tensor.New[float32]([]int{size}, value)
	if err != nil {
		return nil, err
	}

	gradTensor, err := tensor.New[float32]([]int{size}, nil)
	if err != nil {
		return nil, err
	}

	master := &graph.Parameter[float32]{
		Name:     src.Name() + ".master",
		Value:    valueTensor,
		Gradient: gradTensor,
	}

	return &MasterShard{Source: src, Owned: owned, Master: master, IsClone: true}, nil
}
