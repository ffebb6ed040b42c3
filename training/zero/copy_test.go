package zero

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zerfoo/zerfoo/graph"
	"github.com/zerfoo/zerfoo/tensor"
)

func newFloat32ParamWithGrad(t *testing.T, name string, values, grad []float32) Parameter {
	t.Helper()

	v, err := tensor.New[float32]([]int{len(values)}, append([]float32{}, values...))
	require.NoError(t, err)

	g, err := tensor.New[float32]([]int{len(grad)}, append([]float32{}, grad...))
	require.NoError(t, err)

	p, err := WrapParameter(name, &graph.Parameter[float32]{Name: name, Value: v, Gradient: g}, false)
	require.NoError(t, err)

	return p
}

func TestCopyGradsToMain(t *testing.T) {
	param := newFloat32ParamWithGrad(t, "w", []float32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4})

	groupSpecs := [][]GroupMember{{{WorldOrder: 0, Param: param}}}
	owned := []ParamRangeMap{{GbufWorld: Range{0, 2}, GbufLocal: Range{0, 2}, Param: Range{1, 3}, GbufWorldOrder: 0}}

	groups, err := BuildGroups(groupSpecs, owned, map[int64]Range{0: {0, 4}})
	require.NoError(t, err)

	require.NoError(t, CopyGradsToMain(groups))

	shard := groups.AllShards()[0]
	assert.InDeltaSlice(t, []float32{0.2, 0.3}, shard.Master.Gradient.Data(), 1e-6)
}

func TestCopyMainToParams(t *testing.T) {
	param := newFloat32ParamWithGrad(t, "w", []float32{1, 2, 3, 4}, []float32{0, 0, 0, 0})

	groupSpecs := [][]GroupMember{{{WorldOrder: 0, Param: param}}}
	owned := []ParamRangeMap{{GbufWorld: Range{2, 4}, GbufLocal: Range{0, 2}, Param: Range{2, 4}, GbufWorldOrder: 0}}

	groups, err := BuildGroups(groupSpecs, owned, map[int64]Range{0: {0, 4}})
	require.NoError(t, err)

	shard := groups.AllShards()[0]
	shard.Master.Value.Data()[0] = 30
	shard.Master.Value.Data()[1] = 40

	paramBuf, err := NewParamBuffer[float32, float32](mustZeroTensor(t, 4), 4)
	require.NoError(t, err)

	err = CopyMainToParams(groups, func(r Range, value []float32) error {
		return paramBuf.WriteFloat32Range(r, value)
	})
	require.NoError(t, err)

	got, err := paramBuf.ReadFloat32Range(Range{0, 4})
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 30, 40}, got)
}

func mustZeroTensor(t *testing.T, n int) *tensor.TensorNumeric[float32] {
	t.Helper()

	tt, err := tensor.New[float32]([]int{n}, nil)
	require.NoError(t, err)

	return tt
}
