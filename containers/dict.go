// Package containers provides drop-in transactional, packable container
// types: Dict, List, Set, Heap and Stack. Each one snapshots its own entry
// table on Begin (shallow, by reference) and forwards begin/commit/abort
// to any member that itself implements the transaction contract; nested
// members own their own shadows. Register binds all of them to a Registry.
package containers

import (
	"unicode"

	humpack "github.com/felixludos/HumPack"
	"github.com/pkg/errors"
)

// ErrNoAttribute reports attribute-style access with a name that is not an
// identifier-shaped key, or a key that is absent.
var ErrNoAttribute = errors.New("humpack: no such attribute")

// Dict is an insertion-ordered map with string keys. Values are primitives
// or packable instances.
type Dict struct {
	keys []string
	data map[string]any

	tx         bool
	shadowKeys []string
	shadowData map[string]any
}

func NewDict() *Dict {
	return &Dict{data: map[string]any{}}
}

func (d *Dict) Len() int {
	return len(d.keys)
}

func (d *Dict) Get(key string) (any, bool) {
	v, ok := d.data[key]
	return v, ok
}

func (d *Dict) Set(key string, value any) {
	if _, ok := d.data[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.data[key] = value
}

func (d *Dict) Del(key string) bool {
	if _, ok := d.data[key]; !ok {
		return false
	}
	delete(d.data, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i:i], d.keys[i+1:]...)
			break
		}
	}
	return true
}

func (d *Dict) Has(key string) bool {
	_, ok := d.data[key]
	return ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Range visits entries in insertion order until fn returns false.
func (d *Dict) Range(fn func(key string, value any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.data[k]) {
			return
		}
	}
}

func (d *Dict) Clear() {
	d.keys = nil
	d.data = map[string]any{}
}

func (d *Dict) InTransaction() bool {
	return d.tx
}

func (d *Dict) Begin() {
	if d.tx {
		return
	}
	d.shadowKeys, d.shadowData = d.keys, d.data
	d.keys = append([]string(nil), d.keys...)
	data := make(map[string]any, len(d.data))
	for k, v := range d.data {
		data[k] = v
	}
	d.data = data
	d.tx = true
	for _, k := range d.keys {
		if t, ok := d.data[k].(humpack.Transactionable); ok {
			t.Begin()
		}
	}
}

func (d *Dict) Commit() {
	if d.tx {
		d.shadowKeys, d.shadowData = nil, nil
		d.tx = false
	}
	// members may have begun independently
	for _, k := range d.keys {
		if t, ok := d.data[k].(humpack.Transactionable); ok {
			t.Commit()
		}
	}
}

func (d *Dict) Abort() {
	if !d.tx {
		return
	}
	d.keys, d.data = d.shadowKeys, d.shadowData
	d.shadowKeys, d.shadowData = nil, nil
	d.tx = false
	// forward to members reachable from the restored state
	for _, k := range d.keys {
		if t, ok := d.data[k].(humpack.Transactionable); ok {
			t.Abort()
		}
	}
}

// GetAttr is sugar over Get for identifier-shaped keys.
func (d *Dict) GetAttr(name string) (any, error) {
	if !isIdentifier(name) {
		return nil, errors.Wrapf(ErrNoAttribute, "%q", name)
	}
	v, ok := d.data[name]
	if !ok {
		return nil, errors.Wrapf(ErrNoAttribute, "%q", name)
	}
	return v, nil
}

func (d *Dict) SetAttr(name string, value any) error {
	if !isIdentifier(name) {
		return errors.Wrapf(ErrNoAttribute, "%q", name)
	}
	d.Set(name, value)
	return nil
}

func (d *Dict) DelAttr(name string) error {
	if !isIdentifier(name) || !d.Del(name) {
		return errors.Wrapf(ErrNoAttribute, "%q", name)
	}
	return nil
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
