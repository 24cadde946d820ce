package humpack

import (
	"bytes"
	"strings"
	"testing"

	"github.com/felixludos/HumPack/humpack_errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	reg := NewRegistry()
	require.Nil(t, RegisterProfile(reg))

	a := &Profile{Name: "Ada", Score: 42}
	a.Next = a

	var buf bytes.Buffer
	require.Nil(t, reg.Save(a, &buf))

	out, err := reg.Load(&buf)
	require.Nil(t, err)
	got := out.(*Profile)
	assert.Equal(t, "Ada", got.Name)
	assert.Same(t, got, got.Next)
}

func TestLoadBadText(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Load(strings.NewReader("not a document"))
	assert.ErrorIs(t, err, humpack_errors.ErrBadSyntax)
}

func TestSaveUnpackable(t *testing.T) {
	type widget struct{ x int }
	reg := NewRegistry()
	var buf bytes.Buffer
	err := reg.Save(&widget{}, &buf)
	assert.ErrorIs(t, err, humpack_errors.ErrNotPackable)
	assert.Equal(t, 0, buf.Len())
}
