// Package shardgroup provides in-process implementations of the sharding
// core's collective-group contract, for use where a real collective
// transport is out of scope.
package shardgroup

import (
	"context"
	"fmt"
	"sync"
	"unsafe"
)

// LoopbackGroup is a CollectiveGroup implementation that runs entirely
// in-process, coordinating sibling ranks through a shared Hub rather than a
// network transport. It mirrors how the teacher's own
// testing/testutils/custom_mocks.go fakes the distributed strategy for
// single-process tests, generalized from a fixed
// test double into a reusable fake every caller of this core can construct.
type LoopbackGroup struct {
	hub  *Hub
	rank int
}

// NewHub creates a coordination point for size participants. Every
// participant's LoopbackGroup must be built from the same Hub.
func NewHub(size int) *Hub {
	h := &Hub{size: size}
	h.cond = sync.NewCond(&h.mu)

	return h
}

// NewLoopbackGroup returns rank's view of hub.
func NewLoopbackGroup(hub *Hub, rank int) *LoopbackGroup {
	return &LoopbackGroup{hub: hub, rank: rank}
}

// Rank returns this participant's index.
func (g *LoopbackGroup) Rank() int { return g.rank }

// Size returns the group's world size.
func (g *LoopbackGroup) Size() int { return g.hub.size }

// Barrier blocks until every participant has called Barrier.
func (g *LoopbackGroup) Barrier(ctx context.Context) error {
	_, err := g.hub.rendezvous(g.rank, call{kind: kindBarrier})

	return err
}

// AllReduce sums buf across every participant and writes the result back
// into buf on every participant.
func (g *LoopbackGroup) AllReduce(ctx context.Context, buf []byte) error {
	result, err := g.hub.rendezvous(g.rank, call{kind: kindAllReduce, payload: buf})
	if err != nil {
		return err
	}

	copy(buf, result)

	return nil
}

// ReduceScatter sums full across every participant and writes this
// participant's slice of the result — the portion of full that dst aliases
// — into dst.
func (g *LoopbackGroup) ReduceScatter(ctx context.Context, dst []byte, full []byte) error {
	offset, err := sliceOffset(full, dst)
	if err != nil {
		return fmt.Errorf("loopback reduce-scatter: %w", err)
	}

	result, err := g.hub.rendezvous(g.rank, call{kind: kindReduceScatter, payload: full, offset: offset, length: len(dst)})
	if err != nil {
		return err
	}

	copy(dst, result)

	return nil
}

// AllGather assembles every participant's src into full at the offset src
// occupies within full on this participant, so that after the call every
// participant's full buffer is identical.
func (g *LoopbackGroup) AllGather(ctx context.Context, full []byte, src []byte) error {
	offset, err := sliceOffset(full, src)
	if err != nil {
		return fmt.Errorf("loopback all-gather: %w", err)
	}

	result, err := g.hub.rendezvous(g.rank, call{kind: kindAllGather, payload: src, offset: offset, length: len(full)})
	if err != nil {
		return err
	}

	copy(full, result)

	return nil
}

// sliceOffset returns off such that full[off:off+len(sub)] is the same
// memory as sub, failing if sub does not alias a region of full. Every
// caller in this package builds sub as a direct sub-slice of full (see
// zero.ReduceGradBuffer/GatherParamBuffer), so the two always share a
// backing array; this recovers the offset the Hub needs without widening
// the CollectiveGroup interface to carry it explicitly.
func sliceOffset(full, sub []byte) (int, error) {
	if len(sub) == 0 {
		return 0, nil
	}

	//nolint:gosec // deliberate pointer arithmetic to recover a sub-slice's offset; see doc comment
	base := uintptr(unsafe.Pointer(unsafe.SliceData(full)))
	//nolint:gosec // see above
	at := uintptr(unsafe.Pointer(unsafe.SliceData(sub)))

	if at < base || at+uintptr(len(sub)) > base+uintptr(len(full)) {
		return 0, fmt.Errorf("sub-slice does not alias the given buffer")
	}

	return int(at - base), nil
}

type callKind int

const (
	kindBarrier callKind = iota
	kindAllReduce
	kindReduceScatter
	kindAllGather
)

type call struct {
	kind    callKind
	payload []byte
	offset  int
	length  int
}

// Hub synchronizes one collective call across every participant: each
// rank's call blocks until every rank has arrived with its own payload for
// the same call, at which point the last arriver computes the combined
// result and wakes everyone.
type Hub struct {
	mu   sync.Mutex
	cond *sync.Cond
	size int
	gen  int

	calls   map[int]call
	results map[int][]byte
}

func (h *Hub) rendezvous(rank int, c call) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.calls == nil {
		h.calls = make(map[int]call, h.size)
	}

	myGen := h.gen
	h.calls[rank] = c

	if len(h.calls) == h.size {
		results, err := combine(h.size, h.calls)
		if err != nil {
			h.calls = make(map[int]call, h.size)
			h.gen++
			h.cond.Broadcast()

			return nil, err
		}

		h.results = results
		h.calls = make(map[int]call, h.size)
		h.gen++
		h.cond.Broadcast()
	} else {
		for h.gen == myGen {
			h.cond.Wait()
		}
	}

	return h.results[rank], nil
}

func combine(size int, calls map[int]call) (map[int][]byte, error) {
	kind := calls[0].kind

	switch kind {
	case kindBarrier:
		out := make(map[int][]byte, size)
		for r := range calls {
			out[r] = nil
		}

		return out, nil

	case kindAllReduce:
		sum := sumFloat32(calls, func(c call) []byte { return c.payload })

		out := make(map[int][]byte, size)
		for r := range calls {
			out[r] = sum
		}

		return out, nil

	case kindReduceScatter:
		sum := sumFloat32(calls, func(c call) []byte { return c.payload })

		out := make(map[int][]byte, size)
		for r, c := range calls {
			out[r] = append([]byte{}, sum[c.offset:c.offset+c.length]...)
		}

		return out, nil

	case kindAllGather:
		var total int
		for _, c := range calls {
			total = c.length
		}

		assembled := make([]byte, total)
		for _, c := range calls {
			copy(assembled[c.offset:c.offset+len(c.payload)], c.payload)
		}

		out := make(map[int][]byte, size)
		for r := range calls {
			out[r] = assembled
		}

		return out, nil
	}

	return nil, fmt.Errorf("loopback: unknown call kind %d", kind)
}

// sumFloat32 elementwise-sums every rank's byte payload, interpreted as
// float32. The loopback fake only needs to support the dtype this core's
// own tests exercise (float32 gradient buffers); a production collective
// transport would not have this restriction.
func sumFloat32(calls map[int]call, get func(call) []byte) []byte {
	var n int

	for _, c := range calls {
		n = len(get(c))

		break
	}

	sum := make([]float32, n/4)

	for _, c := range calls {
		payload := get(c)
		for i := range sum {
			//nolint:gosec // reinterpreting a 4-byte slice as float32, mirrors tensor.Bytes()
			v := *(*float32)(unsafe.Pointer(unsafe.SliceData(payload[i*4 : i*4+4])))
			sum[i] += v
		}
	}

	out := make([]byte, n)

	for i, v := range sum {
		vv := v
		b := (*[4]byte)(unsafe.Pointer(&vv))
		copy(out[i*4:i*4+4], b[:])
	}

	return out
}
