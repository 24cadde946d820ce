package containers

import (
	"sort"
	"strconv"

	humpack "github.com/felixludos/HumPack"
	"github.com/pkg/errors"
)

// Stable type ids for the packed form.
const (
	DictType  = "dict"
	ListType  = "list"
	SetType   = "set"
	HeapType  = "heap"
	StackType = "stack"
)

// Register binds all container types to reg. Safe to call repeatedly on
// the same registry: the handlers are package-level functions, so
// re-registration is idempotent.
func Register(reg *humpack.Registry) error {
	for _, cls := range []humpack.Class{
		{Name: DictType, Alloc: allocDict, Serialize: serializeDict, Deserialize: deserializeDict},
		{Name: ListType, Alloc: allocList, Serialize: serializeList, Deserialize: deserializeList},
		{Name: SetType, Alloc: allocSet, Serialize: serializeSet, Deserialize: deserializeSet},
		{Name: HeapType, Alloc: allocHeap, Serialize: serializeHeap, Deserialize: deserializeHeap},
		{Name: StackType, Alloc: allocStack, Serialize: serializeStack, Deserialize: deserializeStack},
	} {
		if err := reg.Register(cls); err != nil {
			return err
		}
	}
	return nil
}

func badInstance(want string, got any) error {
	return errors.Errorf("humpack: expected %s instance, got %T", want, got)
}

func allocDict() any { return NewDict() }

func serializeDict(obj any) ([]humpack.Field, error) {
	d, ok := obj.(*Dict)
	if !ok {
		return nil, badInstance("dict", obj)
	}
	fields := make([]humpack.Field, 0, d.Len())
	d.Range(func(k string, v any) bool {
		fields = append(fields, humpack.Field{Name: k, Value: v})
		return true
	})
	return fields, nil
}

func deserializeDict(obj any, fields []humpack.Field) error {
	d, ok := obj.(*Dict)
	if !ok {
		return badInstance("dict", obj)
	}
	for _, f := range fields {
		d.Set(f.Name, f.Value)
	}
	return nil
}

func allocList() any { return NewList() }

func serializeList(obj any) ([]humpack.Field, error) {
	l, ok := obj.(*List)
	if !ok {
		return nil, badInstance("list", obj)
	}
	return indexed(l.Len(), func(i int) any { v, _ := l.Get(i); return v }), nil
}

func deserializeList(obj any, fields []humpack.Field) error {
	l, ok := obj.(*List)
	if !ok {
		return badInstance("list", obj)
	}
	for _, f := range fields {
		l.Append(f.Value)
	}
	return nil
}

func allocSet() any { return NewSet() }

func serializeSet(obj any) ([]humpack.Field, error) {
	s, ok := obj.(*Set)
	if !ok {
		return nil, badInstance("set", obj)
	}
	fields := make([]humpack.Field, 0, s.Len())
	s.Range(func(e any) bool {
		fields = append(fields, humpack.Field{Name: strconv.Itoa(len(fields)), Value: e})
		return true
	})
	return fields, nil
}

func deserializeSet(obj any, fields []humpack.Field) error {
	s, ok := obj.(*Set)
	if !ok {
		return badInstance("set", obj)
	}
	for _, f := range fields {
		s.Add(f.Value)
	}
	return nil
}

func allocHeap() any { h, _ := NewHeap(); return h }

func serializeHeap(obj any) ([]humpack.Field, error) {
	h, ok := obj.(*Heap)
	if !ok {
		return nil, badInstance("heap", obj)
	}
	return indexed(len(h.items), func(i int) any { return h.items[i] }), nil
}

func deserializeHeap(obj any, fields []humpack.Field) error {
	h, ok := obj.(*Heap)
	if !ok {
		return badInstance("heap", obj)
	}
	for _, f := range fields {
		if err := h.Push(f.Value); err != nil {
			return err
		}
	}
	return nil
}

func allocStack() any { return NewStack() }

func serializeStack(obj any) ([]humpack.Field, error) {
	s, ok := obj.(*Stack)
	if !ok {
		return nil, badInstance("stack", obj)
	}
	return indexed(s.Len(), func(i int) any { return s.items[i] }), nil
}

func deserializeStack(obj any, fields []humpack.Field) error {
	s, ok := obj.(*Stack)
	if !ok {
		return badInstance("stack", obj)
	}
	for _, f := range fields {
		s.Push(f.Value)
	}
	return nil
}

func indexed(n int, at func(i int) any) []humpack.Field {
	fields := make([]humpack.Field, 0, n)
	for i := 0; i < n; i++ {
		fields = append(fields, humpack.Field{Name: strconv.Itoa(i), Value: at(i)})
	}
	return fields
}

// Containerify deep-converts plain Go values into containers:
// map[string]any becomes a Dict (keys sorted, maps carry no order of their
// own), []any becomes a List. Anything else passes through unchanged.
func Containerify(v any) any {
	switch x := v.(type) {
	case map[string]any:
		d := NewDict()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.Set(k, Containerify(x[k]))
		}
		return d
	case []any:
		l := NewList()
		for _, e := range x {
			l.Append(Containerify(e))
		}
		return l
	}
	return v
}
