package zero

import (
	"fmt"
	"unsafe"

	"github.com/zerfoo/zerfoo/tensor"
)

// ParamBuffer is a reinterpret-view of a gradient buffer as parameter-typed
// elements, sharing storage with it: the staging area the collective
// driver's all-gather writes into and the lifecycle façade reads finished
// parameters back out of. It is built directly on tensor.TensorNumeric's
// Bytes()/NewFromBytes round trip, the same zero-copy recipe the teacher's
// own tensor package already uses to move between byte and typed views.
type ParamBuffer[P tensor.Numeric] struct {
	buf *tensor.TensorNumeric[P]
}

// NewParamBuffer reinterprets gradBuf, an arbitrary-dtype gradient buffer,
// as a ParamBuffer[P] truncated to paddedNumel parameter-typed elements. It
// fails with ErrBufferAliasUnsafe if P is wider than the grad buffer's
// element type, since a param element would then straddle bytes belonging
// to more than one grad element.
func NewParamBuffer[G tensor.Numeric, P tensor.Numeric](gradBuf *tensor.TensorNumeric[G], paddedNumel int) (*ParamBuffer[P], error) {
	var (
		zeroG G
		zeroP P
	)

	gradElemSize := int(unsafe.Sizeof(zeroG))
	paramElemSize := int(unsafe.Sizeof(zeroP))

	if paramElemSize > gradElemSize {
		return nil, fmt.Errorf("%w: param element is %d bytes, grad element is %d bytes", ErrBufferAliasUnsafe, paramElemSize, gradElemSize)
	}

	raw, err := gradBuf.Bytes()
	if err != nil {
		return nil, fmt.Errorf("param buffer: %w", err)
	}

	needed := paddedNumel * paramElemSize
	if needed > len(raw) {
		return nil, fmt.Errorf("%w: need %d bytes for %d elements, grad buffer only has %d", ErrSizeMismatch, needed, paddedNumel, len(raw))
	}

	view, err := tensor.NewFromBytes[P]([]int{paddedNumel}, raw[:needed])
	if err != nil {
		return nil, fmt.Errorf("param buffer: %w", err)
	}

	return &ParamBuffer[P]{buf: view}, nil
}

// WriteRange writes src into the buffer's [r.Start, r.End) slice, with no
// element-type conversion.
func (b *ParamBuffer[P]) WriteRange(r Range, src []P) error {
	if r.Size() != len(src) {
		return fmt.Errorf("%w: range %s has size %d, got %d elements", ErrSizeMismatch, r, r.Size(), len(src))
	}

	data := b.buf.Data()
	if r.Start < 0 || r.End > len(data) {
		return fmt.Errorf("%w: range %s out of bounds (%d)", ErrSizeMismatch, r, len(data))
	}

	copy(data[r.Start:r.End], src)

	return nil
}

// WriteFloat32Range converts src to P and writes it into [r.Start, r.End).
// The lifecycle façade's main→params write-back calls this, since master
// shards are always float32 regardless of the buffer's own element type;
// the all-gather itself moves raw bytes and does not go through it.
func (b *ParamBuffer[P]) WriteFloat32Range(r Range, src []float32) error {
	if r.Size() != len(src) {
		return fmt.Errorf("%w: range %s has size %d, got %d elements", ErrSizeMismatch, r, r.Size(), len(src))
	}

	data := b.buf.Data()
	if r.Start < 0 || r.End > len(data) {
		return fmt.Errorf("%w: range %s out of bounds (%d)", ErrSizeMismatch, r, len(data))
	}

	fromFloat32Slice(data[r.Start:r.End], src)

	return nil
}

// ReadFloat32Range returns a copy of the buffer's [r.Start, r.End) slice,
// converted to float32.
func (b *ParamBuffer[P]) ReadFloat32Range(r Range) ([]float32, error) {
	data := b.buf.Data()
	if r.Start < 0 || r.End > len(data) {
		return nil, fmt.Errorf("%w: range %s out of bounds (%d)", ErrSizeMismatch, r, len(data))
	}

	return toFloat32Slice(data[r.Start:r.End]), nil
}

// ReadRange returns a copy of the buffer's [r.Start, r.End) slice.
func (b *ParamBuffer[P]) ReadRange(r Range) ([]P, error) {
	data := b.buf.Data()
	if r.Start < 0 || r.End > len(data) {
		return nil, fmt.Errorf("%w: range %s out of bounds (%d)", ErrSizeMismatch, r, len(data))
	}

	out := make([]P, r.Size())
	copy(out, data[r.Start:r.End])

	return out, nil
}

// Len returns the buffer's element count.
func (b *ParamBuffer[P]) Len() int {
	return b.buf.Size()
}
