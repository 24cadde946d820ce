package humpack

// NodeID identifies one reference node within a single packed document.
// Ids start at 1; 0 is reserved as "no node".
type NodeID uint64

const BadID = NodeID(0)

const (
	Primitive = byte('P')
	Object    = byte('O')
)

// Member is one named slot of an object node. It holds either an inline
// primitive value or a reference to another node, never both.
type Member struct {
	Name  string
	Value any
	Ref   NodeID
	IsRef bool
}

// Node is one entry of the reference table: a primitive value or a typed
// object payload. Members keep serialize order, so containers with
// meaningful entry order survive a round trip without a side channel.
type Node struct {
	Kind    byte
	Value   any      // Kind==Primitive
	TypeID  string   // Kind==Object
	Members []Member // Kind==Object
}

// Document is the output of one packing run: a flat reference table plus
// the designated root. Treat it as immutable once produced; consume it by
// unpacking or encoding, then re-pack rather than mutate.
type Document struct {
	Root  NodeID
	Nodes map[NodeID]*Node
}

func (d *Document) Len() int {
	return len(d.Nodes)
}

// Equal compares two documents structurally: same root, same node table,
// same member order. Used by round-trip checks; not a graph isomorphism.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.Root != o.Root || len(d.Nodes) != len(o.Nodes) {
		return false
	}
	for id, n := range d.Nodes {
		m, ok := o.Nodes[id]
		if !ok || !n.equal(m) {
			return false
		}
	}
	return true
}

func (n *Node) equal(o *Node) bool {
	if n.Kind != o.Kind || n.TypeID != o.TypeID || n.Value != o.Value {
		return false
	}
	if len(n.Members) != len(o.Members) {
		return false
	}
	for i, m := range n.Members {
		if m != o.Members[i] {
			return false
		}
	}
	return true
}
