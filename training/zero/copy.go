package zero

import "fmt"

// CopyGradsToMain implements the grads→main fast path: for every shard in
// groups, slice the owning model parameter's main-grad tensor by its param
// range, cast to float32, and assign it onto the shard's master gradient.
// Source coordinates are param, not gbuf_world: the source is always a
// full-parameter grad tensor, never the shared gradient buffer itself.
func CopyGradsToMain(groups *ShardGroups) error {
	for _, shard := range groups.AllShards() {
		size := shard.Owned.Param.Size()
		if size != shard.Master.Value.Size() {
			return fmt.Errorf("%w: %s param range has %d elements, master shard has %d",
				ErrSizeMismatch, shard.Source.Name(), size, shard.Master.Value.Size())
		}

		dst := shard.Master.Gradient.Data()
		if err := shard.Source.MainGradRange(shard.Owned.Param.Start, dst); err != nil {
			return fmt.Errorf("copy grads->main: %w", err)
		}
	}

	return nil
}

// CopyMainToParams implements the main→params fast path: for every shard in
// groups, copy its (possibly just-stepped) master value into the
// destination parameter buffer's gbuf_world range via write. Destination
// coordinates are gbuf_world, not param: the destination is the shared
// buffer an all-gather will later complete. write is supplied by the
// caller because the parameter buffer's element type varies per
// (replica, dtype) and cannot be named generically here.
func CopyMainToParams(groups *ShardGroups, write func(worldRange Range, value []float32) error) error {
	for _, shard := range groups.AllShards() {
		size := shard.Owned.GbufWorld.Size()
		if size != shard.Master.Value.Size() {
			return fmt.Errorf("%w: %s gbuf_world range has %d elements, master shard has %d",
				ErrSizeMismatch, shard.Source.Name(), size, shard.Master.Value.Size())
		}

		if err := write(shard.Owned.GbufWorld, shard.Master.Value.Data()); err != nil {
			return fmt.Errorf("copy main->params: %w", err)
		}
	}

	return nil
}
