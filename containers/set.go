package containers

import (
	humpack "github.com/felixludos/HumPack"
)

// Set is an insertion-ordered set. Elements must be comparable: primitives
// or pointer-shaped packable instances (compared by identity).
type Set struct {
	order []any
	index map[any]struct{}

	tx          bool
	shadowOrder []any
	shadowIndex map[any]struct{}
}

func NewSet(elements ...any) *Set {
	s := &Set{index: map[any]struct{}{}}
	for _, e := range elements {
		s.Add(e)
	}
	return s
}

func (s *Set) Len() int {
	return len(s.order)
}

// Add inserts an element, reporting whether it was absent.
func (s *Set) Add(element any) bool {
	if _, ok := s.index[element]; ok {
		return false
	}
	s.index[element] = struct{}{}
	s.order = append(s.order, element)
	return true
}

func (s *Set) Has(element any) bool {
	_, ok := s.index[element]
	return ok
}

func (s *Set) Remove(element any) bool {
	if _, ok := s.index[element]; !ok {
		return false
	}
	delete(s.index, element)
	for i, e := range s.order {
		if sameValue(e, element) {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Pop removes and returns the most recently inserted element.
func (s *Set) Pop() (any, bool) {
	if len(s.order) == 0 {
		return nil, false
	}
	e := s.order[len(s.order)-1]
	s.order = s.order[:len(s.order)-1]
	delete(s.index, e)
	return e, true
}

// Range visits elements in insertion order until fn returns false.
func (s *Set) Range(fn func(element any) bool) {
	for _, e := range s.order {
		if !fn(e) {
			return
		}
	}
}

func (s *Set) Clear() {
	s.order = nil
	s.index = map[any]struct{}{}
}

func (s *Set) InTransaction() bool {
	return s.tx
}

func (s *Set) Begin() {
	if s.tx {
		return
	}
	s.shadowOrder, s.shadowIndex = s.order, s.index
	s.order = append([]any(nil), s.order...)
	index := make(map[any]struct{}, len(s.index))
	for e := range s.index {
		index[e] = struct{}{}
	}
	s.index = index
	s.tx = true
	for _, e := range s.order {
		if t, ok := e.(humpack.Transactionable); ok {
			t.Begin()
		}
	}
}

func (s *Set) Commit() {
	if s.tx {
		s.shadowOrder, s.shadowIndex = nil, nil
		s.tx = false
	}
	for _, e := range s.order {
		if t, ok := e.(humpack.Transactionable); ok {
			t.Commit()
		}
	}
}

func (s *Set) Abort() {
	if !s.tx {
		return
	}
	s.order, s.index = s.shadowOrder, s.shadowIndex
	s.shadowOrder, s.shadowIndex = nil, nil
	s.tx = false
	for _, e := range s.order {
		if t, ok := e.(humpack.Transactionable); ok {
			t.Abort()
		}
	}
}
