package zero

import (
	"fmt"
	"sort"
)

// ComputeWorldPartition cuts a buffer of paddedNumel elements into worldSize
// contiguous, pairwise-disjoint shards. Shard r starts at r*shard_size, with
// shard_size = ceil(paddedNumel / worldSize), and is clipped to paddedNumel.
// When paddedNumel is a multiple of worldSize every shard is exactly
// shard_size; otherwise the shard holding the last element may be shorter
// and every shard after it is empty. The function is pure: identical inputs
// produce a byte-identical partition on every participant, which is the
// property the reduce-scatter/all-gather schedule depends on.
func ComputeWorldPartition(paddedNumel, worldSize int) (WorldPartition, error) {
	if worldSize <= 0 {
		return nil, fmt.Errorf("%w: world size must be positive, got %d", ErrInvalidRange, worldSize)
	}

	if paddedNumel < 0 {
		return nil, fmt.Errorf("%w: padded numel must be non-negative, got %d", ErrInvalidRange, paddedNumel)
	}

	shardSize := (paddedNumel + worldSize - 1) / worldSize

	partition := make(WorldPartition, worldSize)
	for r := range worldSize {
		start := r * shardSize

		end := start + shardSize
		if end > paddedNumel {
			end = paddedNumel
		}

		if start > end {
			start = end
		}

		partition[r] = Range{Start: start, End: end}
	}

	return partition, nil
}

// LocalShard returns participant rank's shard from a world partition,
// normalized to origin 0, i.e. the coordinate system gbuf_local is
// expressed in.
func (p WorldPartition) LocalShard(rank int) (Range, error) {
	if rank < 0 || rank >= len(p) {
		return Range{}, fmt.Errorf("%w: rank %d out of range [0, %d)", ErrInvalidRange, rank, len(p))
	}

	return p[rank].Normalize(0), nil
}

// PartitionParams computes the world partition for desc and the three-way
// map for every parameter this rank owns, even partially, sorted by
// ascending WorldOrder (the order checkpoint save must walk in).
//
// A parameter contributes an entry only if its world placement overlaps
// the local shard; parameters entirely owned by other ranks are skipped.
func PartitionParams(desc GradBufferDescriptor, rank, worldSize int) (WorldPartition, Range, []ParamRangeMap, error) {
	partition, err := ComputeWorldPartition(desc.PaddedNumel, worldSize)
	if err != nil {
		return nil, Range{}, nil, err
	}

	localShard, err := partition.LocalShard(rank)
	if err != nil {
		return nil, Range{}, nil, err
	}

	ownerWorld := partition[rank]

	entries := make([]ParamIndexEntry, len(desc.Params))
	copy(entries, desc.Params)
	sort.Slice(entries, func(i, j int) bool { return entries[i].WorldOrder < entries[j].WorldOrder })

	maps := make([]ParamRangeMap, 0, len(entries))

	for _, entry := range entries {
		if entry.WorldEnd < entry.WorldStart {
			return nil, Range{}, nil, fmt.Errorf("%w: param world_order=%d has end %d before start %d",
				ErrInvalidRange, entry.WorldOrder, entry.WorldEnd, entry.WorldStart)
		}

		ws, we := entry.WorldStart, entry.WorldEnd

		localStart := max(0, ws-ownerWorld.Start)
		localEnd := min(ownerWorld.Size(), we-ownerWorld.Start)

		if localEnd <= localStart {
			continue
		}

		gbufLocal := Range{Start: localStart, End: localEnd}
		gbufWorld := gbufLocal.Normalize(ownerWorld.Start + localStart)
		param := gbufLocal.Normalize(max(0, ownerWorld.Start-ws))

		maps = append(maps, ParamRangeMap{
			GbufWorld:      gbufWorld,
			GbufLocal:      gbufLocal,
			Param:          param,
			GbufWorldOrder: entry.WorldOrder,
		})
	}

	return partition, localShard, maps, nil
}
