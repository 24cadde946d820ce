package containers

import (
	humpack "github.com/felixludos/HumPack"
	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/pkg/errors"
)

// Heap is a binary min-heap over primitive elements. Ordering across
// primitive kinds is null < bool < number < string; ints and floats
// compare numerically.
type Heap struct {
	items []any

	tx     bool
	shadow []any
}

func NewHeap(elements ...any) (*Heap, error) {
	h := &Heap{}
	for _, e := range elements {
		if err := h.Push(e); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Heap) Len() int {
	return len(h.items)
}

// Push inserts an element. Elements normalize to their primitive shape
// (int64/float64); non-primitive elements have no defined order and are
// rejected.
func (h *Heap) Push(element any) error {
	pv, ok := humpack.AsPrimitive(element)
	if !ok {
		return errors.Wrapf(humpack_errors.ErrNotPackable, "heap element %T has no order", element)
	}
	h.items = append(h.items, pv)
	h.up(len(h.items) - 1)
	return nil
}

func (h *Heap) Peek() (any, bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[0], true
}

// Pop removes and returns the minimum element.
func (h *Heap) Pop() (any, bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	min := h.items[0]
	n := len(h.items) - 1
	h.items[0], h.items[n] = h.items[n], h.items[0]
	h.items = h.items[:n]
	h.down(0)
	return min, true
}

func (h *Heap) Clear() {
	h.items = nil
}

func (h *Heap) InTransaction() bool {
	return h.tx
}

func (h *Heap) Begin() {
	if h.tx {
		return
	}
	h.shadow = h.items
	h.items = append([]any(nil), h.items...)
	h.tx = true
}

func (h *Heap) Commit() {
	if h.tx {
		h.shadow = nil
		h.tx = false
	}
}

func (h *Heap) Abort() {
	if !h.tx {
		return
	}
	h.items, h.shadow = h.shadow, nil
	h.tx = false
}

func (h *Heap) up(j int) {
	for {
		i := (j - 1) / 2 // parent
		if i == j || compare(h.items[j], h.items[i]) >= 0 {
			break
		}
		h.items[i], h.items[j] = h.items[j], h.items[i]
		j = i
	}
}

func (h *Heap) down(i0 int) {
	i, n := i0, len(h.items)
	for {
		j := 2*i + 1
		if j >= n {
			break
		}
		if j2 := j + 1; j2 < n && compare(h.items[j2], h.items[j]) < 0 {
			j = j2
		}
		if compare(h.items[j], h.items[i]) >= 0 {
			break
		}
		h.items[i], h.items[j] = h.items[j], h.items[i]
		i = j
	}
}

func rank(v any) (int, bool) {
	switch v.(type) {
	case nil:
		return 0, true
	case bool:
		return 1, true
	case int64, float64:
		return 2, true
	case string:
		return 3, true
	}
	return 0, false
}

func compare(a, b any) int {
	ra, _ := rank(a)
	rb, _ := rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case y:
			return -1
		}
		return 1
	case int64, float64:
		fx, fy := toFloat(a), toFloat(b)
		switch {
		case fx < fy:
			return -1
		case fx > fy:
			return 1
		}
		return 0
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return 0 // both nil
}

func toFloat(v any) float64 {
	if i, ok := v.(int64); ok {
		return float64(i)
	}
	return v.(float64)
}

var _ humpack.Transactionable = (*Heap)(nil)
