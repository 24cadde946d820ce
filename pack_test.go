package humpack

import (
	"math"
	"testing"

	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/stretchr/testify/assert"
)

func TestPackPrimitiveRoot(t *testing.T) {
	reg := NewRegistry()
	doc, err := reg.Pack(42)
	assert.Nil(t, err)
	assert.Equal(t, 1, doc.Len())
	node := doc.Nodes[doc.Root]
	assert.Equal(t, Primitive, node.Kind)
	assert.Equal(t, int64(42), node.Value)
}

func TestPackObjectGraph(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, RegisterProfile(reg))

	b := &Profile{Name: "Bob", Score: 7}
	a := &Profile{Name: "Ada", Score: 42, Next: b}
	doc, err := reg.Pack(a)
	assert.Nil(t, err)
	assert.Equal(t, 2, doc.Len())

	root := doc.Nodes[doc.Root]
	assert.Equal(t, Object, root.Kind)
	assert.Equal(t, ProfileType, root.TypeID)
	assert.Equal(t, 3, len(root.Members))
	assert.Equal(t, Member{Name: "name", Value: "Ada"}, root.Members[0])
	assert.True(t, root.Members[2].IsRef)
}

func TestPackCycle(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, RegisterProfile(reg))

	a := &Profile{Name: "loop"}
	a.Next = a
	doc, err := reg.Pack(a)
	assert.Nil(t, err)
	assert.Equal(t, 1, doc.Len())
	node := doc.Nodes[doc.Root]
	next := node.Members[len(node.Members)-1]
	assert.True(t, next.IsRef)
	assert.Equal(t, doc.Root, next.Ref)
}

func TestPackSharing(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, RegisterProfile(reg))

	shared := &Profile{Name: "shared"}
	a := &Profile{Name: "a", Next: shared}
	root := &Profile{Name: "root", Next: a}

	doc, err := reg.Pack(root)
	assert.Nil(t, err)
	assert.Equal(t, 3, doc.Len())

	// both definitions resolve to one node for the shared instance
	na := doc.Nodes[doc.Nodes[doc.Root].Members[2].Ref]
	assert.Equal(t, "a", na.Members[0].Value)
}

func TestPackDistinctButEqual(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, RegisterProfile(reg))

	// equal contents but distinct identities: two definitions, not one
	y := &Profile{Name: "twin", Score: 1}
	x := &Profile{Name: "twin", Score: 1, Next: y}
	root := &Profile{Name: "root", Next: x}

	doc, err := reg.Pack(root)
	assert.Nil(t, err)
	assert.Equal(t, 3, doc.Len())
}

func TestPackUnregistered(t *testing.T) {
	type widget struct{ x int }
	reg := NewRegistry()
	_, err := reg.Pack(&widget{})
	assert.ErrorIs(t, err, humpack_errors.ErrNotPackable)
	assert.Contains(t, err.Error(), "root")
}

func TestPackErrorNamesPath(t *testing.T) {
	type widget struct{ x int }
	reg := NewRegistry()
	crate := &struct{ payload any }{payload: &widget{}}
	err := reg.Register(Class{
		Name:  "crate",
		Alloc: func() any { return &struct{ payload any }{} },
		Serialize: func(obj any) ([]Field, error) {
			return []Field{{Name: "banana", Value: crate.payload}}, nil
		},
		Deserialize: func(obj any, fields []Field) error { return nil },
	})
	assert.Nil(t, err)

	_, err = reg.Pack(crate)
	assert.ErrorIs(t, err, humpack_errors.ErrNotPackable)
	assert.Contains(t, err.Error(), `root.members["banana"]`)
}

func TestPackNilInstance(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, RegisterProfile(reg))

	// a typed nil of a registered type fails, it must not reach Serialize
	_, err := reg.Pack((*Profile)(nil))
	assert.ErrorIs(t, err, humpack_errors.ErrNotPackable)
	assert.Contains(t, err.Error(), "root")
}

func TestPackNilMemberNamesPath(t *testing.T) {
	reg := NewRegistry()
	assert.Nil(t, RegisterProfile(reg))
	err := reg.Register(Class{
		Name:  "room",
		Alloc: func() any { return &struct{ owner *Profile }{} },
		Serialize: func(obj any) ([]Field, error) {
			return []Field{{Name: "owner", Value: (*Profile)(nil)}}, nil
		},
		Deserialize: func(obj any, fields []Field) error { return nil },
	})
	assert.Nil(t, err)

	_, err = reg.Pack(&struct{ owner *Profile }{})
	assert.ErrorIs(t, err, humpack_errors.ErrNotPackable)
	assert.Contains(t, err.Error(), `root.members["owner"]`)
}

func TestPackNonFiniteFloat(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Pack(math.NaN())
	assert.ErrorIs(t, err, humpack_errors.ErrNotPackable)
	_, err = reg.Pack(math.Inf(1))
	assert.ErrorIs(t, err, humpack_errors.ErrNotPackable)
}
