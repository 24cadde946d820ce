package containers

import (
	"testing"

	humpack "github.com/felixludos/HumPack"
	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *humpack.Registry {
	t.Helper()
	reg := humpack.NewRegistry()
	require.Nil(t, Register(reg))
	return reg
}

func TestRegisterIdempotent(t *testing.T) {
	reg := testRegistry(t)
	assert.Nil(t, Register(reg))
}

func TestContainerify(t *testing.T) {
	v := Containerify(map[string]any{
		"one":    1,
		"banana": []any{1, 2, 3},
	})
	d, ok := v.(*Dict)
	require.True(t, ok)
	assert.Equal(t, []string{"banana", "one"}, d.Keys())

	bv, _ := d.Get("banana")
	l, ok := bv.(*List)
	require.True(t, ok)
	assert.Equal(t, 3, l.Len())

	assert.Equal(t, "scalar", Containerify("scalar"))
}

func TestPackRoundTrip(t *testing.T) {
	reg := testRegistry(t)

	root := Containerify(map[string]any{
		"one":    1,
		"banana": []any{1, 2, 3},
	})

	doc, err := reg.Pack(root)
	require.Nil(t, err)
	// primitives stay inline, so only the dict and the list get nodes
	assert.Equal(t, 2, doc.Len())

	text, err := humpack.EncodeText(doc)
	require.Nil(t, err)
	doc2, err := humpack.DecodeText(text)
	require.Nil(t, err)

	out, err := reg.Unpack(doc2)
	require.Nil(t, err)
	d, ok := out.(*Dict)
	require.True(t, ok)
	assert.Equal(t, []string{"banana", "one"}, d.Keys())
	one, _ := d.Get("one")
	assert.Equal(t, int64(1), one)
	bv, _ := d.Get("banana")
	l, ok := bv.(*List)
	require.True(t, ok)
	require.Equal(t, 3, l.Len())
	for i := 0; i < 3; i++ {
		v, _ := l.Get(i)
		assert.Equal(t, int64(i+1), v)
	}
}

func TestPackNilEntry(t *testing.T) {
	reg := testRegistry(t)

	d := NewDict()
	d.Set("gone", (*List)(nil))
	_, err := reg.Pack(d)
	assert.ErrorIs(t, err, humpack_errors.ErrNotPackable)
	assert.Contains(t, err.Error(), `members["gone"]`)
}

func TestPackPreservesSharing(t *testing.T) {
	reg := testRegistry(t)

	shared := NewList(int64(1))
	d := NewDict()
	d.Set("a", shared)
	d.Set("b", shared)

	doc, err := reg.Pack(d)
	require.Nil(t, err)
	assert.Equal(t, 2, doc.Len()) // dict plus one list, not two

	out, err := reg.Unpack(doc)
	require.Nil(t, err)
	got := out.(*Dict)
	a, _ := got.Get("a")
	b, _ := got.Get("b")
	assert.Same(t, a.(*List), b.(*List))
}

func TestPackCycle(t *testing.T) {
	reg := testRegistry(t)

	d := NewDict()
	l := NewList(d)
	d.Set("self", l)

	doc, err := reg.Pack(d)
	require.Nil(t, err)
	assert.Equal(t, 2, doc.Len())

	out, err := reg.Unpack(doc)
	require.Nil(t, err)
	got := out.(*Dict)
	lv, _ := got.Get("self")
	inner, _ := lv.(*List).Get(0)
	assert.Same(t, got, inner.(*Dict))
}

func TestSetHeapStackRoundTrip(t *testing.T) {
	reg := testRegistry(t)

	h, err := NewHeap(5, 2, 8)
	require.Nil(t, err)
	root := NewDict()
	root.Set("set", NewSet("a", "b"))
	root.Set("heap", h)
	root.Set("stack", NewStack(int64(1), "top"))

	doc, err := reg.Pack(root)
	require.Nil(t, err)
	text, err := humpack.EncodeText(doc)
	require.Nil(t, err)
	doc2, err := humpack.DecodeText(text)
	require.Nil(t, err)
	out, err := reg.Unpack(doc2)
	require.Nil(t, err)
	got := out.(*Dict)

	sv, _ := got.Get("set")
	s := sv.(*Set)
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("b"))
	assert.Equal(t, 2, s.Len())

	hv, _ := got.Get("heap")
	min, ok := hv.(*Heap).Peek()
	assert.True(t, ok)
	assert.Equal(t, int64(2), min)

	tv, _ := got.Get("stack")
	top, ok := tv.(*Stack).Peek()
	assert.True(t, ok)
	assert.Equal(t, "top", top)
}

func TestCrossTypeRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	require.Nil(t, humpack.RegisterProfile(reg))

	d := NewDict()
	d.Set("owner", &humpack.Profile{Name: "Ada", Score: 7})

	out, err := reg.DeepCopy(d)
	require.Nil(t, err)
	got := out.(*Dict)
	ov, _ := got.Get("owner")
	p := ov.(*humpack.Profile)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, int64(7), p.Score)
}
