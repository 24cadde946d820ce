package humpack

import (
	"sort"

	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/pkg/errors"
)

// Unpack reconstructs an object graph from a packed document. It runs in
// two phases: allocate an empty instance for every object node first, then
// populate each one with members resolved against the full instance table.
// Skipping the phase split would silently break on any cyclic document.
// Each call produces a fresh, non-aliased graph.
func (reg *Registry) Unpack(doc *Document) (any, error) {
	if doc == nil {
		return nil, errors.Wrap(humpack_errors.ErrMalformedDocument, "nil document")
	}
	if _, ok := doc.Nodes[doc.Root]; !ok {
		return nil, errors.Wrapf(humpack_errors.ErrMalformedDocument, "root id %d absent", doc.Root)
	}

	order := make([]NodeID, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	instances := make(map[NodeID]any, len(doc.Nodes))
	for _, id := range order {
		node := doc.Nodes[id]
		switch node.Kind {
		case Primitive:
			instances[id] = node.Value
		case Object:
			cls, err := reg.Lookup(node.TypeID)
			if err != nil {
				return nil, err
			}
			instances[id] = cls.Alloc()
		default:
			return nil, errors.Wrapf(humpack_errors.ErrMalformedDocument, "node %d has kind %q", id, node.Kind)
		}
	}

	for _, id := range order {
		node := doc.Nodes[id]
		if node.Kind != Object {
			continue
		}
		fields := make([]Field, 0, len(node.Members))
		for _, m := range node.Members {
			v := m.Value
			if m.IsRef {
				ref, ok := instances[m.Ref]
				if !ok {
					return nil, errors.Wrapf(humpack_errors.ErrMalformedDocument,
						"node %d member %q references absent id %d", id, m.Name, m.Ref)
				}
				v = ref
			}
			fields = append(fields, Field{Name: m.Name, Value: v})
		}
		cls, _ := reg.Lookup(node.TypeID)
		if err := cls.Deserialize(instances[id], fields); err != nil {
			return nil, errors.Wrapf(err, "populating %s node %d", node.TypeID, id)
		}
	}
	return instances[doc.Root], nil
}

// DeepCopy clones a packable value by round-tripping it through the packed
// form, preserving internal sharing and cycles.
func (reg *Registry) DeepCopy(v any) (any, error) {
	doc, err := reg.Pack(v)
	if err != nil {
		return nil, err
	}
	return reg.Unpack(doc)
}
