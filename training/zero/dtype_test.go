package zero

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zerfoo/float16"
	"github.com/zerfoo/float8"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, DTypeFloat32, classify[float32]())
	assert.Equal(t, DTypeFloat16, classify[float16.Float16]())
	assert.Equal(t, DTypeBFloat16, classify[float16.BFloat16]())
	assert.Equal(t, DTypeFloat8, classify[float8.Float8]())
	assert.Equal(t, DTypeUnsupported, classify[int32]())
}

func TestDType_String(t *testing.T) {
	assert.Equal(t, "float32", DTypeFloat32.String())
	assert.Equal(t, "float16", DTypeFloat16.String())
	assert.Equal(t, "bfloat16", DTypeBFloat16.String())
	assert.Equal(t, "float8", DTypeFloat8.String())
	assert.Equal(t, "unsupported", DTypeUnsupported.String())
}

func TestDType_LowPrecision(t *testing.T) {
	assert.False(t, DTypeFloat32.LowPrecision())
	assert.True(t, DTypeFloat16.LowPrecision())
	assert.True(t, DTypeBFloat16.LowPrecision())
	assert.True(t, DTypeFloat8.LowPrecision())
	assert.False(t, DTypeUnsupported.LowPrecision())
}

func TestElemSize(t *testing.T) {
	assert.Equal(t, 4, elemSize(DTypeFloat32))
	assert.Equal(t, 2, elemSize(DTypeFloat16))
	assert.Equal(t, 2, elemSize(DTypeBFloat16))
	assert.Equal(t, 1, elemSize(DTypeFloat8))
	assert.Equal(t, 0, elemSize(DTypeUnsupported))
}

func TestToFloat32Slice_Float32(t *testing.T) {
	src := []float32{1, 2, 3}
	assert.Equal(t, []float32{1, 2, 3}, toFloat32Slice(src))
}

func TestToFloat32Slice_Float16(t *testing.T) {
	src := []float16.Float16{float16.FromFloat32(1.5), float16.FromFloat32(-2.5)}
	got := toFloat32Slice(src)
	assert.InDeltaSlice(t, []float32{1.5, -2.5}, got, 1e-3)
}

func TestToFloat32Slice_BFloat16(t *testing.T) {
	src := []float16.BFloat16{float16.BFloat16FromFloat32(1.5), float16.BFloat16FromFloat32(-2.5)}
	got := toFloat32Slice(src)
	assert.InDeltaSlice(t, []float32{1.5, -2.5}, got, 1e-2)
}

func TestToFloat32Slice_Float8(t *testing.T) {
	src := []float8.Float8{float8.ToFloat8(1.0), float8.ToFloat8(2.0)}
	got := toFloat32Slice(src)
	assert.InDeltaSlice(t, []float32{1.0, 2.0}, got, 0.5)
}

func TestFromFloat32Slice_Float32(t *testing.T) {
	dst := make([]float32, 3)
	fromFloat32Slice(dst, []float32{1, 2, 3})
	assert.Equal(t, []float32{1, 2, 3}, dst)
}

func TestFromFloat32Slice_RoundTrip(t *testing.T) {
	src := []float32{1, -1, 2.5}

	dst16 := make([]float16.Float16, 3)
	fromFloat32Slice(dst16, src)
	assert.InDeltaSlice(t, src, toFloat32Slice(dst16), 1e-3)

	dstbf16 := make([]float16.BFloat16, 3)
	fromFloat32Slice(dstbf16, src)
	assert.InDeltaSlice(t, src, toFloat32Slice(dstbf16), 2e-2)
}
