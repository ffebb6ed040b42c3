package zero

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/zerfoo/zerfoo/graph"
)

// StateDicter is an optional capability a base optimizer may implement to
// participate in checkpointing: a stable integer keying convention for its
// own per-parameter state (moments, step counters, ...), per spec.md §6's
// "Required from the base optimizer". The teacher's own optimizer.Optimizer
// interface exposes only Step and Clip — it has no state_dict/
// load_state_dict/key method, so this is an additive, optional interface
// rather than a requirement on every BaseOptimizer: a base optimizer that
// does not implement it simply checkpoints master shards and
// hyperparameters, with an empty inner-state payload.
type StateDicter interface {
	// StateDict returns the base optimizer's full per-parameter state,
	// keyed by its own stable integer convention.
	StateDict() (map[int64][]byte, error)
	// StateKey reports the key StateDict uses for p's state, if any. The
	// checkpoint codec never invents this key itself: it is whatever the
	// base optimizer's own keying convention assigns.
	StateKey(p *graph.Parameter[float32]) (key int64, ok bool)
	// LoadStateDict restores per-parameter state from a mapping re-keyed
	// by the codec on load.
	LoadStateDict(map[int64][]byte) error
}

// GroupDescriptor carries a group's hyperparameters, opaque to this
// package. The lifecycle façade's caller supplies and interprets these; zero
// only round-trips them.
type GroupDescriptor struct {
	Index           int
	Hyperparameters map[string]float64
}

// ScalerState is the loss-scaler's persisted state, opaque to this package
// beyond its presence/absence.
type ScalerState struct {
	Scale float32
}

// ShardRecord is one locally-owned parameter's checkpoint entry, per
// spec.md §4.G.
type ShardRecord struct {
	WorldOrder      int64
	StateOrder      int64
	GroupIndex      int
	PositionInGroup int
	RangeMap        ParamRangeMap
	MasterValue     []float32
	InnerState      []byte
}

// CheckpointV1 is the on-disk layout: a plain Go struct gob-encoded rather
// than reusing the teacher's ZMF protobuf schema, which is model-graph
// shaped rather than optimizer-shard shaped (see DESIGN.md).
type CheckpointV1 struct {
	Groups    []GroupDescriptor
	Shards    []ShardRecord
	Scaler    *ScalerState
	HasScaler bool
}

// Save implements the checkpoint codec's save path: walk the three-way map
// in strictly ascending gbuf_world_order (testable property 4), emitting
// one ShardRecord per locally owned parameter. If base implements
// StateDicter, StateOrder is whatever key base.StateKey reports for that
// shard's master parameter — this package never fabricates its own
// numbering for it.
func Save(groups *ShardGroups, groupDescs []GroupDescriptor, base StateDicter, scaler *ScalerState) (*CheckpointV1, error) {
	var innerState map[int64][]byte

	if base != nil {
		var err error

		innerState, err = base.StateDict()
		if err != nil {
			return nil, fmt.Errorf("checkpoint save: %w", err)
		}
	}

	shards := append([]*MasterShard{}, groups.AllShards()...)
	sort.Slice(shards, func(i, j int) bool {
		return shards[i].Owned.GbufWorldOrder < shards[j].Owned.GbufWorldOrder
	})

	records := make([]ShardRecord, 0, len(shards))

	for _, shard := range shards {
		groupIndex, position, ok := groups.Locate(shard.Owned.GbufWorldOrder)
		if !ok {
			return nil, fmt.Errorf("checkpoint save: %s has no group location", shard.Source.Name())
		}

		record := ShardRecord{
			WorldOrder:      shard.Owned.GbufWorldOrder,
			GroupIndex:      groupIndex,
			PositionInGroup: position,
			RangeMap:        shard.Owned,
			MasterValue:     append([]float32{}, shard.Master.Value.Data()...),
		}

		if base != nil {
			if key, ok := base.StateKey(shard.Master); ok {
				record.StateOrder = key

				if innerState != nil {
					record.InnerState = innerState[key]
				}
			}
		}

		records = append(records, record)
	}

	return &CheckpointV1{
		Groups:    groupDescs,
		Shards:    records,
		Scaler:    scaler,
		HasScaler: scaler != nil,
	}, nil
}

// Load implements the checkpoint codec's load path: copy each record's
// master value back into its shard at (GroupIndex, PositionInGroup), then
// feed the re-keyed {state_order -> inner_state} mapping to base if it
// implements StateDicter. Fails with ErrCheckpointShapeMismatch if a
// record's RangeMap disagrees with groups' current partition.
//
// currentScalerPresent reports whether the caller currently has a
// loss-scaler configured; per spec.md §7, a mismatch against the
// checkpoint's own HasScaler is a warning, not an error, logged through
// logger (a nil logger discards it, matching Config.logger's default).
func Load(ckpt *CheckpointV1, groups *ShardGroups, base StateDicter, currentScalerPresent bool, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	switch {
	case ckpt.HasScaler && !currentScalerPresent:
		logger.Printf("zero: checkpoint has a loss-scaler state but none is currently configured; discarding saved scaler state")
	case !ckpt.HasScaler && currentScalerPresent:
		logger.Printf("zero: loss-scaler is currently configured but the checkpoint has no saved scaler state")
	}

	for _, record := range ckpt.Shards {
		if record.GroupIndex < 0 || record.GroupIndex >= len(groups.Shards) {
			return fmt.Errorf("%w: group %d out of range", ErrCheckpointShapeMismatch, record.GroupIndex)
		}

		group := groups.Shards[record.GroupIndex]
		if record.PositionInGroup < 0 || record.PositionInGroup >= len(group) {
			return fmt.Errorf("%w: position %d out of range in group %d", ErrCheckpointShapeMismatch, record.PositionInGroup, record.GroupIndex)
		}

		shard := group[record.PositionInGroup]
		if shard.Owned.GbufWorldOrder != record.WorldOrder || shard.Owned != record.RangeMap {
			return fmt.Errorf("%w: shard at group %d position %d no longer matches the saved partition",
				ErrCheckpointShapeMismatch, record.GroupIndex, record.PositionInGroup)
		}

		if len(record.MasterValue) != shard.Master.Value.Size() {
			return fmt.Errorf("%w: shard %s has %d elements, checkpoint has %d",
				ErrCheckpointShapeMismatch, shard.Source.Name(), shard.Master.Value.Size(), len(record.MasterValue))
		}

		copy(shard.Master.Value.Data(), record.MasterValue)
	}

	if base != nil {
		innerState := make(map[int64][]byte, len(ckpt.Shards))
		for _, record := range ckpt.Shards {
			innerState[record.StateOrder] = record.InnerState
		}

		if err := base.LoadStateDict(innerState); err != nil {
			return fmt.Errorf("checkpoint load: %w", err)
		}
	}

	return nil
}

// Encode gob-encodes a checkpoint for persistence.
func Encode(ckpt *CheckpointV1) ([]byte, error) {
	var buf bytes.Buffer

	if err := gob.NewEncoder(&buf).Encode(ckpt); err != nil {
		return nil, fmt.Errorf("checkpoint encode: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode restores a checkpoint previously produced by Encode.
func Decode(data []byte) (*CheckpointV1, error) {
	var ckpt CheckpointV1

	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ckpt); err != nil {
		return nil, fmt.Errorf("checkpoint decode: %w", err)
	}

	return &ckpt, nil
}
