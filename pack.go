package humpack

import (
	"fmt"
	"math"
	"reflect"

	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/pkg/errors"
)

// packer tracks object identity for one Pack run. Identity is interface
// comparison, not value equality: two distinct instances with equal
// contents get distinct ids, since they may diverge later.
type packer struct {
	reg  *Registry
	doc  *Document
	ids  map[any]NodeID
	next NodeID
}

// Pack walks the graph depth-first from root and produces a flat reference
// table. Shared subgraphs are emitted once and referenced thereafter, which
// is also what terminates cycles. The source graph is never mutated.
func (reg *Registry) Pack(root any) (*Document, error) {
	p := &packer{
		reg:  reg,
		doc:  &Document{Nodes: map[NodeID]*Node{}},
		ids:  map[any]NodeID{},
		next: 1,
	}
	m, err := p.pack(root, "root")
	if err != nil {
		return nil, err
	}
	if m.IsRef {
		p.doc.Root = m.Ref
	} else {
		// a bare primitive still needs a node to serve as the root
		id := p.alloc()
		p.doc.Nodes[id] = &Node{Kind: Primitive, Value: m.Value}
		p.doc.Root = id
	}
	return p.doc, nil
}

func (p *packer) alloc() NodeID {
	id := p.next
	p.next++
	return id
}

func (p *packer) pack(v any, path string) (Member, error) {
	if pv, ok := AsPrimitive(v); ok {
		if f, isf := pv.(float64); isf && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return Member{}, errors.Wrapf(humpack_errors.ErrNotPackable, "non-finite float at %s", path)
		}
		return Member{Value: pv}, nil
	}
	// a typed nil would reach Serialize as a nil instance and crash there
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Member{}, errors.Wrapf(humpack_errors.ErrNotPackable, "nil %T at %s", v, path)
	}
	name, err := p.reg.ClassOf(v)
	if err != nil {
		return Member{}, errors.Wrapf(humpack_errors.ErrNotPackable, "%T at %s", v, path)
	}
	if t := reflect.TypeOf(v); !t.Comparable() {
		return Member{}, errors.Wrapf(humpack_errors.ErrNotPackable, "uncomparable instance type %T at %s", v, path)
	}
	if id, seen := p.ids[v]; seen {
		return Member{Ref: id, IsRef: true}, nil
	}
	cls, err := p.reg.Lookup(name)
	if err != nil {
		return Member{}, err
	}
	// claim the id before descending so self-references resolve
	id := p.alloc()
	p.ids[v] = id
	node := &Node{Kind: Object, TypeID: name}
	p.doc.Nodes[id] = node
	fields, err := cls.Serialize(v)
	if err != nil {
		return Member{}, errors.Wrapf(err, "serializing %s at %s", name, path)
	}
	node.Members = make([]Member, 0, len(fields))
	for _, f := range fields {
		m, err := p.pack(f.Value, fmt.Sprintf("%s.members[%q]", path, f.Name))
		if err != nil {
			return Member{}, err
		}
		m.Name = f.Name
		node.Members = append(node.Members, m)
	}
	return Member{Ref: id, IsRef: true}, nil
}
