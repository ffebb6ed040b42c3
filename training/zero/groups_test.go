package zero

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zerfoo/float16"
	"github.com/zerfoo/zerfoo/graph"
	"github.com/zerfoo/zerfoo/tensor"
)

func newFloat32Param(t *testing.T, name string, values []float32) Parameter {
	t.Helper()

	v, err := tensor.New[float32]([]int{len(values)}, append([]float32{}, values...))
	require.NoError(t, err)

	g, err := tensor.New[float32]([]int{len(values)}, nil)
	require.NoError(t, err)

	p, err := WrapParameter("f32:"+name, &graph.Parameter[float32]{Name: name, Value: v, Gradient: g}, false)
	require.NoError(t, err)

	return p
}

func newBFloat16Param(t *testing.T, name string, values []float32) Parameter {
	t.Helper()

	raw := make([]float16.BFloat16, len(values))
	for i, f := range values {
		raw[i] = float16.BFloat16FromFloat32(f)
	}

	v, err := tensor.New[float16.BFloat16]([]int{len(values)}, raw)
	require.NoError(t, err)

	g, err := tensor.New[float16.BFloat16]([]int{len(values)}, nil)
	require.NoError(t, err)

	p, err := WrapParameter("bf16:"+name, &graph.Parameter[float16.BFloat16]{Name: name, Value: v, Gradient: g}, false)
	require.NoError(t, err)

	return p
}

// Scenario C: a mixed group with one float32 and one bfloat16 parameter.
func TestBuildGroups_ScenarioC_MixedDtypeOrdering(t *testing.T) {
	fp32 := newFloat32Param(t, "w", []float32{1, 2, 3})
	bf16 := newBFloat16Param(t, "b", []float32{4, 5})

	groupSpecs := [][]GroupMember{
		{
			{WorldOrder: 0, Param: fp32},
			{WorldOrder: 1, Param: bf16},
		},
	}

	owned := []ParamRangeMap{
		{GbufWorld: Range{0, 3}, GbufLocal: Range{0, 3}, Param: Range{0, 3}, GbufWorldOrder: 0},
		{GbufWorld: Range{3, 5}, GbufLocal: Range{3, 5}, Param: Range{0, 2}, GbufWorldOrder: 1},
	}

	worldRanges := map[int64]Range{0: {0, 3}, 1: {3, 5}}

	groups, err := BuildGroups(groupSpecs, owned, worldRanges)
	require.NoError(t, err)
	require.Len(t, groups.Shards, 1)
	require.Len(t, groups.Shards[0], 2)
	require.Len(t, groups.AllParams, 2)

	assert.False(t, groups.Shards[0][0].IsClone, "float32 shard must come first and not be a low-precision clone")
	assert.True(t, groups.Shards[0][1].IsClone, "bfloat16 shard must be a master clone")

	assert.Equal(t, []float32{1, 2, 3}, groups.Shards[0][0].Master.Value.Data())
	assert.Equal(t, []float32{4, 5}, groups.Shards[0][1].Master.Value.Data())

	gi, pos, ok := groups.Locate(1)
	require.True(t, ok)
	assert.Equal(t, 0, gi)
	assert.Equal(t, 1, pos)
}

func TestBuildGroups_DropsEmptyGroups(t *testing.T) {
	fp32 := newFloat32Param(t, "w", []float32{1, 2})

	groupSpecs := [][]GroupMember{
		{{WorldOrder: 0, Param: fp32}},
		{{WorldOrder: 1, Param: newFloat32Param(t, "unowned", []float32{9, 9})}},
	}

	owned := []ParamRangeMap{
		{GbufWorld: Range{0, 2}, GbufLocal: Range{0, 2}, Param: Range{0, 2}, GbufWorldOrder: 0},
	}

	worldRanges := map[int64]Range{0: {0, 2}, 1: {0, 2}}

	groups, err := BuildGroups(groupSpecs, owned, worldRanges)
	require.NoError(t, err)
	assert.Len(t, groups.Shards, 1, "group with no locally owned parameter must be dropped")
	assert.Len(t, groups.AllParams, 2, "AllParams must still record the unowned parameter")
}

func TestBuildGroups_UnsupportedDtype(t *testing.T) {
	v, err := tensor.New[int32]([]int{2}, []int32{1, 2})
	require.NoError(t, err)

	g, err := tensor.New[int32]([]int{2}, nil)
	require.NoError(t, err)

	_, err = WrapParameter("int", &graph.Parameter[int32]{Name: "int", Value: v, Gradient: g}, false)
	require.ErrorIs(t, err, ErrUnsupportedDtype)
}
