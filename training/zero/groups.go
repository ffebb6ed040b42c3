package zero

import "fmt"

// GroupMember identifies one parameter registered with the base optimizer's
// group g, tagged with the WorldOrder the gradient-buffer partitioner used
// for it. The caller (the lifecycle façade) builds this list from the
// surrounding model's parameter registry; this package never discovers
// parameters on its own.
type GroupMember struct {
	WorldOrder int64
	Param      Parameter
}

// ShardView is a lightweight reference to a parameter's owned slice, kept
// around only so the lifecycle façade can zero it as a memory-fragmentation
// mitigation (spec'd as an extra, non-load-bearing clear in zero_grad); it
// plays no role in the copy engine or collective driver.
type ShardView struct {
	Source Parameter
	Owned  ParamRangeMap
}

// ZeroGrad clears the gradient data in this view's owned range. It always
// zeroes in place; set_to_none is honored only by the lifecycle façade, for
// the master shards' gradient tensors.
func (v ShardView) ZeroGrad() error {
	return v.Source.zeroGradRange(v.Owned.Param)
}

// locator is the reverse-map entry for one parameter: where it landed after
// the group rewrite.
type locator struct {
	groupIndex      int
	positionInGroup int
	dtype           DType
}

// AllParamsEntry identifies one registered parameter and its full
// placement in gbuf-world coordinates, regardless of whether this
// participant locally owns any of it. gather_params needs this: every
// parameter on every rank must be refreshed from the parameter buffer
// after an all-gather, not just the ones this rank holds a shard of.
type AllParamsEntry struct {
	WorldOrder int64
	Param      Parameter
	World      Range
}

// ShardGroups is the group builder's (component C) output: the base
// optimizer's parameter groups re-expressed as groups of float32 shards,
// plus the bookkeeping the copy engine, checkpoint codec, and lifecycle
// façade need to navigate back to the originating model parameters.
type ShardGroups struct {
	// ModelLowPrecision and ModelFloat are the original parameter tensors,
	// partitioned by dtype class, index-aligned with ShardLowPrecision and
	// the low-precision half of each Shards group.
	ModelLowPrecision [][]Parameter
	ModelFloat        [][]Parameter

	// ShardLowPrecision are the flat views into the original low-precision
	// parameters, restricted to their owned range; see ShardView.
	ShardLowPrecision [][]ShardView

	// Shards is, per group, shard_float ++ shard_master_from_low_precision
	// in that order: the rewritten parameter list the base optimizer must
	// be stepped on. This order is a contract checkpoint keying depends on.
	Shards [][]*MasterShard

	// AllParams is every registered parameter across every group, in
	// groupSpecs order, irrespective of local ownership or whether its
	// group was dropped. gather_params's final pass walks this, not Shards.
	AllParams []AllParamsEntry

	byWorldOrder map[int64]*locator
}

// BuildGroups implements component C. groupSpecs is the base optimizer's
// original parameter groups, each a list of GroupMember; owned is the set
// of ParamRangeMap entries this participant locally owns (the output of
// PartitionParams), keyed implicitly by WorldOrder; worldRanges gives every
// registered parameter's full placement in gbuf-world coordinates (the
// gradient-buffer descriptor's index map), keyed by WorldOrder.
//
// Groups that end up owning no local parameter are dropped from Shards:
// some participants may own no parameter from some groups. AllParams is
// unaffected by this drop — every member of every group is recorded there.
func BuildGroups(groupSpecs [][]GroupMember, owned []ParamRangeMap, worldRanges map[int64]Range) (*ShardGroups, error) {
	ownedByOrder := make(map[int64]ParamRangeMap, len(owned))
	for _, m := range owned {
		ownedByOrder[m.GbufWorldOrder] = m
	}

	out := &ShardGroups{byWorldOrder: make(map[int64]*locator)}

	for _, spec := range groupSpecs {
		var (
			modelLow, modelFloat []Parameter
			lowViews             []ShardView
			floatShards          []*MasterShard
			masterShards         []*MasterShard
		)

		for _, member := range spec {
			world, ok := worldRanges[member.WorldOrder]
			if !ok {
				return nil, fmt.Errorf("group builder: %s: no world range for order %d", member.Param.Name(), member.WorldOrder)
			}

			out.AllParams = append(out.AllParams, AllParamsEntry{WorldOrder: member.WorldOrder, Param: member.Param, World: world})

			rangeMap, ok := ownedByOrder[member.WorldOrder]
			if !ok {
				continue
			}

			switch dtype := member.Param.DType(); {
			case dtype == DTypeFloat32:
				shard, err := newMasterShardFromFloat32(member.Param, rangeMap)
				if err != nil {
					return nil, fmt.Errorf("group builder: %s: %w", member.Param.Name(), err)
				}

				modelFloat = append(modelFloat, member.Param)
				floatShards = append(floatShards, shard)
			case dtype.LowPrecision():
				shard, err := newMasterShardFromLowPrecision(member.Param, rangeMap)
				if err != nil {
					return nil, fmt.Errorf("group builder: %s: %w", member.Param.Name(), err)
				}

				modelLow = append(modelLow, member.Param)
				lowViews = append(lowViews, ShardView{Source: member.Param, Owned: rangeMap})
				masterShards = append(masterShards, shard)
			default:
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedDtype, member.Param.Name())
			}
		}

		if len(floatShards) == 0 && len(masterShards) == 0 {
			continue
		}

		groupIndex := len(out.Shards)
		rewritten := append(append([]*MasterShard{}, floatShards...), masterShards...)

		for pos, shard := range rewritten {
			out.byWorldOrder[shard.Owned.GbufWorldOrder] = &locator{
				groupIndex:      groupIndex,
				positionInGroup: pos,
				dtype:           shard.Source.DType(),
			}
		}

		out.ModelLowPrecision = append(out.ModelLowPrecision, modelLow)
		out.ModelFloat = append(out.ModelFloat, modelFloat)
		out.ShardLowPrecision = append(out.ShardLowPrecision, lowViews)
		out.Shards = append(out.Shards, rewritten)
	}

	return out, nil
}

// Locate returns the (group index, position within group) a parameter
// identified by its world order was placed at after the group rewrite.
func (g *ShardGroups) Locate(worldOrder int64) (groupIndex, position int, ok bool) {
	loc, found := g.byWorldOrder[worldOrder]
	if !found {
		return 0, 0, false
	}

	return loc.groupIndex, loc.positionInGroup, true
}

// AllShards returns every shard across every group, in group then
// within-group order — the iteration order the copy engine and the
// lifecycle façade walk.
func (g *ShardGroups) AllShards() []*MasterShard {
	total := 0
	for _, group := range g.Shards {
		total += len(group)
	}

	out := make([]*MasterShard, 0, total)
	for _, group := range g.Shards {
		out = append(out, group...)
	}

	return out
}
