package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListBasics(t *testing.T) {
	l := NewList(int64(1), int64(2))
	l.Append(int64(3))
	assert.True(t, l.Insert(1, int64(9)))
	assert.False(t, l.Insert(9, nil))

	assert.Equal(t, 4, l.Len())
	v, ok := l.Get(1)
	assert.True(t, ok)
	assert.Equal(t, int64(9), v)

	assert.True(t, l.Remove(int64(9)))
	assert.False(t, l.Remove(int64(9)))

	v, ok = l.Pop()
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)
	assert.Equal(t, 2, l.Len())

	assert.True(t, l.Set(0, int64(7)))
	v, _ = l.Get(0)
	assert.Equal(t, int64(7), v)

	_, ok = l.RemoveAt(5)
	assert.False(t, ok)
}

func TestListTransaction(t *testing.T) {
	l := NewList(int64(1), int64(2), int64(3))

	l.Begin()
	l.Append(int64(4))
	_, _ = l.RemoveAt(0)
	l.Abort()

	assert.Equal(t, 3, l.Len())
	v, _ := l.Get(0)
	assert.Equal(t, int64(1), v)

	l.Begin()
	l.Append(int64(4))
	l.Commit()
	assert.Equal(t, 4, l.Len())
	l.Abort() // no-op after commit
	assert.Equal(t, 4, l.Len())
}

func TestListNestedDelegation(t *testing.T) {
	inner := NewList(int64(1))
	l := NewList(inner)

	l.Begin()
	assert.True(t, inner.InTransaction())
	inner.Append(int64(2))
	l.Abort()

	assert.Equal(t, 1, inner.Len())
	assert.False(t, inner.InTransaction())
}
