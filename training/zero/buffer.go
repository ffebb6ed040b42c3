package zero

// ParamIndexEntry places one parameter inside a gradient buffer. WorldOrder
// is a stable, non-negative ordinal assigned by the surrounding framework;
// it defines the total order parameters are walked in for checkpointing and
// collective scheduling.
type ParamIndexEntry struct {
	WorldOrder int64
	WorldStart int
	WorldEnd   int
}

// Range returns the entry's placement as a Range in world coordinates.
func (e ParamIndexEntry) Range() Range {
	return Range{Start: e.WorldStart, End: e.WorldEnd}
}

// GradBufferDescriptor is the external contract a gradient buffer must
// satisfy for this package to partition it. PaddedNumel is the buffer's
// total element count and must be a multiple of the data-parallel world
// size; Params gives every parameter's placement within it, in no
// particular slice order (WorldOrder, not index into Params, is what is
// stable).
type GradBufferDescriptor struct {
	PaddedNumel int
	Params      []ParamIndexEntry
}

// WorldPartition is the set of contiguous, pairwise-disjoint ranges a
// gradient buffer is cut into, one per data-parallel participant, in rank
// order.
type WorldPartition []Range

// ParamRangeMap is the three-way coordinate map for one parameter's
// locally-owned slice of a gradient buffer.
type ParamRangeMap struct {
	// GbufWorld is the owned slice in world-buffer coordinates, a
	// sub-range of the local shard.
	GbufWorld Range
	// GbufLocal is the same slice re-expressed relative to the local
	// shard's own origin.
	GbufLocal Range
	// Param is the same slice re-expressed relative to the parameter's
	// own flattened layout.
	Param Range
	// GbufWorldOrder is the owning parameter's stable ordinal, carried
	// through for checkpoint keying.
	GbufWorldOrder int64
}
