package zero

import (
	"context"
	"fmt"

	"github.com/zerfoo/zerfoo/tensor"
)

// CollectiveGroup is the contract this package needs from the collective-
// communication layer: reduce-scatter of gradients, all-gather of
// parameters, a pass-through all-reduce for auxiliary tensors (layernorm
// and embedding gradients kept consistent across a collateral parallelism
// axis), and a barrier. Every method is blocking for the calling
// participant, and these calls are the only places this package waits on
// other participants.
//
// Methods operate on raw bytes rather than a generic tensor type because Go
// interface methods cannot themselves be generic; callers obtain the byte
// view via (*tensor.TensorNumeric[T]).Bytes(), the same zero-copy
// reinterpretation the parameter-buffer view (ParamBuffer) already relies
// on.
type CollectiveGroup interface {
	// ReduceScatter reduces full (summed across the group) and writes this
	// participant's owned slice of the result into dst. dst must alias the
	// corresponding region of full; no separate allocation is made.
	ReduceScatter(ctx context.Context, dst []byte, full []byte) error
	// AllGather gathers every participant's src into full, so that after
	// the call every participant's full buffer is identical.
	AllGather(ctx context.Context, full []byte, src []byte) error
	// AllReduce sums buf across the group and writes the result back into
	// buf on every participant.
	AllReduce(ctx context.Context, buf []byte) error
	// Barrier blocks until every participant has called Barrier.
	Barrier(ctx context.Context) error
	// Rank returns this participant's index in [0, Size()).
	Rank() int
	// Size returns the group's world size.
	Size() int
}

// ScaleInPlace multiplies every element of buf by factor, following this
// package's established type-erasure idiom (classify/toFloat32Slice) rather
// than a per-dtype arithmetic implementation.
func ScaleInPlace[T tensor.Numeric](buf *tensor.TensorNumeric[T], factor float32) {
	data := buf.Data()

	scaled := toFloat32Slice(data)
	for i := range scaled {
		scaled[i] *= factor
	}

	fromFloat32Slice(data, scaled)
}

// ReduceGradBuffer implements the data-parallel portion of the collective
// driver's reduce_grads (component F) for one (model-replica, dtype)
// gradient buffer: scale the buffer by 1/W, then reduce-scatter it into the
// local shard in place. Auxiliary layernorm/embedding all-reduces are the
// caller's responsibility (AllReduceAux) and must run first, per spec.md
// §4.F's ordering rationale: they must happen before the scatter or their
// contributions are discarded from non-owning participants' slices.
func ReduceGradBuffer[T tensor.Numeric](ctx context.Context, group CollectiveGroup, buf *tensor.TensorNumeric[T], localShard Range) error {
	worldSize := group.Size()
	if worldSize <= 0 {
		return fmt.Errorf("%w: group size must be positive, got %d", ErrCollectiveFailure, worldSize)
	}

	ScaleInPlace(buf, 1.0/float32(worldSize))

	raw, err := buf.Bytes()
	if err != nil {
		return fmt.Errorf("reduce grad buffer: %w", err)
	}

	elemSize := len(raw) / buf.Size()
	dst := raw[localShard.Start*elemSize : localShard.End*elemSize]

	if err := group.ReduceScatter(ctx, dst, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrCollectiveFailure, err)
	}

	return nil
}

// AllReduceAux runs the pass-through all-reduces (layernorm gradients, then
// embedding gradients) that must complete before any ReduceGradBuffer call.
func AllReduceAux[T tensor.Numeric](ctx context.Context, group CollectiveGroup, buf *tensor.TensorNumeric[T]) error {
	raw, err := buf.Bytes()
	if err != nil {
		return fmt.Errorf("all-reduce aux: %w", err)
	}

	if err := group.AllReduce(ctx, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrCollectiveFailure, err)
	}

	return nil
}

// GatherParamBuffer implements the collective half of gather_params
// (component F) for one (model-replica, dtype) parameter buffer: all-gather
// the participant's owned slice into the full buffer.
func GatherParamBuffer[P tensor.Numeric](ctx context.Context, group CollectiveGroup, buf *ParamBuffer[P], localShard Range) error {
	raw, err := buf.buf.Bytes()
	if err != nil {
		return fmt.Errorf("gather param buffer: %w", err)
	}

	elemSize := 0
	if buf.Len() > 0 {
		elemSize = len(raw) / buf.Len()
	}

	src := raw[localShard.Start*elemSize : localShard.End*elemSize]

	if err := group.AllGather(ctx, raw, src); err != nil {
		return fmt.Errorf("%w: %v", ErrCollectiveFailure, err)
	}

	return nil
}
