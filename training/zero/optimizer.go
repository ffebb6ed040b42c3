package zero

import (
	"context"
	"math"

	"github.com/zerfoo/zerfoo/graph"
	"github.com/zerfoo/zerfoo/tensor"
)

// StepStats carries optional per-step diagnostics out of Step, matching the
// teacher's style of returning a small value struct rather than introducing
// a separate metrics channel (the original's log_num_zeros_in_grad; metrics
// infrastructure itself stays out of scope).
type StepStats struct {
	// NumZeros is the count of near-zero gradient elements across every
	// master shard this step, populated only when Config.LogZeroGrad is
	// true.
	NumZeros int64
}

const zeroGradEpsilon = 1e-10

// ShardedOptimizer is the lifecycle façade (component H): construction,
// zero-grad, and step orchestration over one (model-replica, dtype)
// gradient buffer. G is the buffer's own element type; P is the parameter
// element type the buffer is also reinterpreted as for the all-gather
// staging area.
type ShardedOptimizer[G tensor.Numeric, P tensor.Numeric] struct {
	cfg Config

	partition  WorldPartition
	localShard Range
	groups     *ShardGroups

	gradBuf  *tensor.TensorNumeric[G]
	paramBuf *ParamBuffer[P]

	// auxBuffers are all-reduced before the reduce-scatter: normalization
	// and embedding gradients that must stay consistent across a
	// collateral parallelism axis. See spec.md §4.F ordering rationale.
	auxBuffers []*tensor.TensorNumeric[G]
}

// New builds a ShardedOptimizer for one (model-replica, dtype) buffer. desc
// and groupSpecs describe the full, replicated model; gradBuf is this
// replica's contiguous gradient storage, padded to desc.PaddedNumel.
func New[G tensor.Numeric, P tensor.Numeric](
	cfg Config,
	desc GradBufferDescriptor,
	groupSpecs [][]GroupMember,
	gradBuf *tensor.TensorNumeric[G],
	auxBuffers []*tensor.TensorNumeric[G],
) (*ShardedOptimizer[G, P], error) {
	partition, _, maps, err := PartitionParams(desc, cfg.Rank, cfg.WorldSize)
	if err != nil {
		return nil, err
	}

	worldRanges := make(map[int64]Range, len(desc.Params))
	for _, p := range desc.Params {
		worldRanges[p.WorldOrder] = p.Range()
	}

	groups, err := BuildGroups(groupSpecs, maps, worldRanges)
	if err != nil {
		return nil, err
	}

	paramBuf, err := NewParamBuffer[G, P](gradBuf, desc.PaddedNumel)
	if err != nil {
		return nil, err
	}

	return &ShardedOptimizer[G, P]{
		cfg:        cfg,
		partition:  partition,
		localShard: partition[cfg.Rank],
		groups:     groups,
		gradBuf:    gradBuf,
		paramBuf:   paramBuf,
		auxBuffers: auxBuffers,
	}, nil
}

// ZeroGrad zeroes every group family's gradient storage: the model
// parameters' full gradients, the low-precision shard views and every
// master shard's gradient. setToNone only changes
// whether the master shards' gradient tensors are allocated fresh rather
// than memset, mirroring the teacher's own ClearGradient, which always
// memsets; the distinction is a fragmentation mitigation, not a
// correctness requirement, per spec.md §4.H.
func (s *ShardedOptimizer[G, P]) ZeroGrad(setToNone bool) error {
	for _, family := range [][][]Parameter{s.groups.ModelFloat, s.groups.ModelLowPrecision} {
		for _, group := range family {
			for _, p := range group {
				if err := p.zeroGradRange(Range{Start: 0, End: p.Numel()}); err != nil {
					return err
				}
			}
		}
	}

	for _, group := range s.groups.ShardLowPrecision {
		for _, view := range group {
			if err := view.ZeroGrad(); err != nil {
				return err
			}
		}
	}

	for _, shard := range s.groups.AllShards() {
		if setToNone {
			fresh, err := tensor.New[float32](shard.Master.Gradient.Shape(), nil)
			if err != nil {
				return err
			}

			shard.Master.Gradient = fresh

			continue
		}

		data := shard.Master.Gradient.Data()
		for i := range data {
			data[i] = 0
		}
	}

	return nil
}

// reduceGrads implements reduce_grads (component F, driven against this
// buffer): auxiliary all-reduces, then scale-and-reduce-scatter.
func (s *ShardedOptimizer[G, P]) reduceGrads(ctx context.Context) error {
	for _, aux := range s.auxBuffers {
		if err := AllReduceAux(ctx, s.cfg.Collective, aux); err != nil {
			return err
		}
	}

	return ReduceGradBuffer(ctx, s.cfg.Collective, s.gradBuf, s.localShard)
}

// gatherParams implements gather_params (component F): all-gather the
// parameter buffer, then refresh every registered parameter tensor from it
// in full — not just the ones this rank owns a shard of. Per spec.md §4.F,
// the final pass copies each parameter tensor by slicing its complete
// [world_start, world_end) from the parameter buffer, on every participant.
func (s *ShardedOptimizer[G, P]) gatherParams(ctx context.Context) error {
	if err := GatherParamBuffer(ctx, s.cfg.Collective, s.paramBuf, s.localShard); err != nil {
		return err
	}

	for _, entry := range s.groups.AllParams {
		values, err := s.paramBuf.ReadFloat32Range(entry.World)
		if err != nil {
			return err
		}

		if err := entry.Param.SetValueFromFloat32(0, values); err != nil {
			return err
		}
	}

	return nil
}

// Step runs one training step: reduce_grads, copy grads→main, the base
// optimizer's step rule (with optional clipping), copy main→params,
// gather_params. The façade merely orchestrates; it never implements a
// step rule of its own.
func (s *ShardedOptimizer[G, P]) Step(ctx context.Context) (StepStats, error) {
	var stats StepStats

	if err := s.reduceGrads(ctx); err != nil {
		return stats, err
	}

	if err := CopyGradsToMain(s.groups); err != nil {
		return stats, err
	}

	if s.cfg.LogZeroGrad {
		stats.NumZeros = countNearZeroGrads(s.groups)
		s.cfg.logger().Printf("zero: %d near-zero gradient elements this step", stats.NumZeros)
	}

	params := allMasterParams(s.groups)

	if s.cfg.ClipThreshold > 0 {
		s.cfg.BaseOptimizer.Clip(ctx, params, s.cfg.ClipThreshold)
	}

	if err := s.cfg.BaseOptimizer.Step(ctx, params); err != nil {
		return stats, err
	}

	if err := CopyMainToParams(s.groups, func(r Range, v []float32) error {
		return s.paramBuf.WriteFloat32Range(r, v)
	}); err != nil {
		return stats, err
	}

	if err := s.gatherParams(ctx); err != nil {
		return stats, err
	}

	return stats, nil
}

func allMasterParams(groups *ShardGroups) []*graph.Parameter[float32] {
	shards := groups.AllShards()

	out := make([]*graph.Parameter[float32], len(shards))
	for i, shard := range shards {
		out[i] = shard.Master
	}

	return out
}

func countNearZeroGrads(groups *ShardGroups) int64 {
	var count int64

	for _, shard := range groups.AllShards() {
		for _, v := range shard.Master.Gradient.Data() {
			if math.Abs(float64(v)) < zeroGradEpsilon {
				count++
			}
		}
	}

	return count
}
