package containers

import (
	"reflect"

	humpack "github.com/felixludos/HumPack"
)

// List is a mutable sequence of primitives or packable instances.
type List struct {
	items []any

	tx     bool
	shadow []any
}

func NewList(items ...any) *List {
	return &List{items: append([]any(nil), items...)}
}

func (l *List) Len() int {
	return len(l.items)
}

func (l *List) Get(i int) (any, bool) {
	if i < 0 || i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

func (l *List) Set(i int, value any) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	l.items[i] = value
	return true
}

func (l *List) Append(values ...any) {
	l.items = append(l.items, values...)
}

func (l *List) Insert(i int, value any) bool {
	if i < 0 || i > len(l.items) {
		return false
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = value
	return true
}

func (l *List) RemoveAt(i int) (any, bool) {
	if i < 0 || i >= len(l.items) {
		return nil, false
	}
	v := l.items[i]
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	return v, true
}

// Remove deletes the first element equal to value, comparing primitives by
// value and instances by identity.
func (l *List) Remove(value any) bool {
	for i, v := range l.items {
		if sameValue(v, value) {
			l.RemoveAt(i)
			return true
		}
	}
	return false
}

func (l *List) Pop() (any, bool) {
	return l.RemoveAt(len(l.items) - 1)
}

// Range visits elements in order until fn returns false.
func (l *List) Range(fn func(i int, value any) bool) {
	for i, v := range l.items {
		if !fn(i, v) {
			return
		}
	}
}

func (l *List) Clear() {
	l.items = nil
}

func (l *List) InTransaction() bool {
	return l.tx
}

func (l *List) Begin() {
	if l.tx {
		return
	}
	l.shadow = l.items
	l.items = append([]any(nil), l.items...)
	l.tx = true
	for _, v := range l.items {
		if t, ok := v.(humpack.Transactionable); ok {
			t.Begin()
		}
	}
}

func (l *List) Commit() {
	if l.tx {
		l.shadow = nil
		l.tx = false
	}
	for _, v := range l.items {
		if t, ok := v.(humpack.Transactionable); ok {
			t.Commit()
		}
	}
}

func (l *List) Abort() {
	if !l.tx {
		return
	}
	l.items, l.shadow = l.shadow, nil
	l.tx = false
	for _, v := range l.items {
		if t, ok := v.(humpack.Transactionable); ok {
			t.Abort()
		}
	}
}

// sameValue compares two stored values without panicking on uncomparable
// types: pointers by identity, primitives by value.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
