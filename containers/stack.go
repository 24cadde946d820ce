package containers

import (
	humpack "github.com/felixludos/HumPack"
)

// Stack is a LIFO stack of primitives or packable instances.
type Stack struct {
	items []any

	tx     bool
	shadow []any
}

func NewStack(items ...any) *Stack {
	return &Stack{items: append([]any(nil), items...)}
}

func (s *Stack) Len() int {
	return len(s.items)
}

func (s *Stack) Push(values ...any) {
	s.items = append(s.items, values...)
}

func (s *Stack) Pop() (any, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	v := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

func (s *Stack) Peek() (any, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[len(s.items)-1], true
}

func (s *Stack) Clear() {
	s.items = nil
}

// Range visits elements bottom to top until fn returns false.
func (s *Stack) Range(fn func(value any) bool) {
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}

func (s *Stack) InTransaction() bool {
	return s.tx
}

func (s *Stack) Begin() {
	if s.tx {
		return
	}
	s.shadow = s.items
	s.items = append([]any(nil), s.items...)
	s.tx = true
	for _, v := range s.items {
		if t, ok := v.(humpack.Transactionable); ok {
			t.Begin()
		}
	}
}

func (s *Stack) Commit() {
	if s.tx {
		s.shadow = nil
		s.tx = false
	}
	for _, v := range s.items {
		if t, ok := v.(humpack.Transactionable); ok {
			t.Commit()
		}
	}
}

func (s *Stack) Abort() {
	if !s.tx {
		return
	}
	s.items, s.shadow = s.shadow, nil
	s.tx = false
	for _, v := range s.items {
		if t, ok := v.(humpack.Transactionable); ok {
			t.Abort()
		}
	}
}
