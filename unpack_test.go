package humpack

import (
	"testing"

	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpackRoundTrip(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, RegisterProfile(reg))

	a := &Profile{Name: "Ada", Score: 42, Next: &Profile{Name: "Bob", Score: 7}}
	doc, err := reg.Pack(a)
	require.Nil(t, err)

	out, err := reg.Unpack(doc)
	require.Nil(t, err)
	got := out.(*Profile)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, int64(42), got.Score)
	require.NotNil(t, got.Next)
	assert.Equal(t, "Bob", got.Next.Name)
	assert.NotSame(t, a, got)
}

func TestUnpackTwiceIndependent(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, RegisterProfile(reg))

	doc, err := reg.Pack(&Profile{Name: "solo"})
	require.Nil(t, err)

	first, err := reg.Unpack(doc)
	require.Nil(t, err)
	second, err := reg.Unpack(doc)
	require.Nil(t, err)
	assert.NotSame(t, first, second)
}

func TestUnpackCycleIdentity(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, RegisterProfile(reg))

	a := &Profile{Name: "loop"}
	a.Next = a
	doc, err := reg.Pack(a)
	require.Nil(t, err)

	out, err := reg.Unpack(doc)
	require.Nil(t, err)
	got := out.(*Profile)
	assert.Same(t, got, got.Next)
}

type pair struct {
	left, right any
}

func registerPair(reg *Registry) error {
	return reg.Register(Class{
		Name:  "pair",
		Alloc: func() any { return &pair{} },
		Serialize: func(obj any) ([]Field, error) {
			p := obj.(*pair)
			return []Field{{Name: "left", Value: p.left}, {Name: "right", Value: p.right}}, nil
		},
		Deserialize: func(obj any, fields []Field) error {
			p := obj.(*pair)
			p.left, p.right = fields[0].Value, fields[1].Value
			return nil
		},
	})
}

func TestUnpackSharedIdentity(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, RegisterProfile(reg))
	require.Nil(t, registerPair(reg))

	shared := &Profile{Name: "shared"}
	root := &pair{left: shared, right: shared}

	doc, err := reg.Pack(root)
	require.Nil(t, err)
	assert.Equal(t, 2, doc.Len())

	out, err := reg.Unpack(doc)
	require.Nil(t, err)
	got := out.(*pair)
	assert.Same(t, got.left.(*Profile), got.right.(*Profile))
}

func TestUnpackUnknownType(t *testing.T) {
	reg := NewRegistry()
	doc := &Document{
		Root: 1,
		Nodes: map[NodeID]*Node{
			1: {Kind: Object, TypeID: "nope"},
		},
	}
	_, err := reg.Unpack(doc)
	assert.ErrorIs(t, err, humpack_errors.ErrUnknownType)
}

func TestUnpackMissingRoot(t *testing.T) {
	reg := NewRegistry()
	doc := &Document{Root: 7, Nodes: map[NodeID]*Node{}}
	_, err := reg.Unpack(doc)
	assert.ErrorIs(t, err, humpack_errors.ErrMalformedDocument)
}

func TestUnpackDanglingReference(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, RegisterProfile(reg))
	doc := &Document{
		Root: 1,
		Nodes: map[NodeID]*Node{
			1: {Kind: Object, TypeID: ProfileType, Members: []Member{
				{Name: "next", Ref: 99, IsRef: true},
			}},
		},
	}
	_, err := reg.Unpack(doc)
	assert.ErrorIs(t, err, humpack_errors.ErrMalformedDocument)
}

func TestDeepCopy(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, RegisterProfile(reg))

	a := &Profile{Name: "orig", Score: 3}
	a.Next = a
	out, err := reg.DeepCopy(a)
	require.Nil(t, err)
	got := out.(*Profile)
	assert.NotSame(t, a, got)
	assert.Equal(t, "orig", got.Name)
	assert.Same(t, got, got.Next)
}
