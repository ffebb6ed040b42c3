package zero

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zerfoo/zerfoo/distributed/shardgroup"
	"github.com/zerfoo/zerfoo/tensor"
)

func TestReduceGradBuffer_ScalesAndScatters(t *testing.T) {
	hub := shardgroup.NewHub(2)

	var wg sync.WaitGroup

	results := make([][]float32, 2)

	for r := 0; r < 2; r++ {
		wg.Add(1)

		go func(rank int) {
			defer wg.Done()

			group := shardgroup.NewLoopbackGroup(hub, rank)

			buf, err := tensor.New[float32]([]int{4}, []float32{
				float32(rank + 1), float32(rank + 1), float32(rank + 1), float32(rank + 1),
			})
			require.NoError(t, err)

			localShard := Range{Start: rank * 2, End: rank*2 + 2}

			err = ReduceGradBuffer(context.Background(), group, buf, localShard)
			require.NoError(t, err)

			results[rank] = append([]float32{}, buf.Data()[localShard.Start:localShard.End]...)
		}(r)
	}

	wg.Wait()

	// Each rank contributes (rank+1) scaled by 1/2, summed across 2 ranks: (1+2)/2 = 1.5.
	assert.InDeltaSlice(t, []float32{1.5, 1.5}, results[0], 1e-6)
	assert.InDeltaSlice(t, []float32{1.5, 1.5}, results[1], 1e-6)
}

func TestGatherParamBuffer_Assembles(t *testing.T) {
	hub := shardgroup.NewHub(2)

	var wg sync.WaitGroup

	results := make([][]float32, 2)

	for r := 0; r < 2; r++ {
		wg.Add(1)

		go func(rank int) {
			defer wg.Done()

			group := shardgroup.NewLoopbackGroup(hub, rank)

			grad, err := tensor.New[float32]([]int{4}, nil)
			require.NoError(t, err)

			buf, err := NewParamBuffer[float32, float32](grad, 4)
			require.NoError(t, err)

			localShard := Range{Start: rank * 2, End: rank*2 + 2}
			require.NoError(t, buf.WriteFloat32Range(localShard, []float32{float32(rank + 1), float32(rank + 1)}))

			require.NoError(t, GatherParamBuffer(context.Background(), group, buf, localShard))

			got, err := buf.ReadFloat32Range(Range{Start: 0, End: 4})
			require.NoError(t, err)
			results[rank] = got
		}(r)
	}

	wg.Wait()

	assert.Equal(t, []float32{1, 1, 2, 2}, results[0])
	assert.Equal(t, []float32{1, 1, 2, 2}, results[1])
}
