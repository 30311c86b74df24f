package object

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID   int
	Name string
}

func TestNew(t *testing.T) {
	typ := NewType("sample", nil)

	ref, err := New(typ, sample{ID: 1, Name: "one"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), ref.Count())
	assert.Equal(t, 1, ref.Value().ID)
	assert.Equal(t, int64(1), typ.Live())
	assert.Equal(t, uint64(1), typ.Total())
	assert.Same(t, typ, ref.Type())
}

func TestDereference(t *testing.T) {
	t.Run("Destructor runs once at zero", func(t *testing.T) {
		var destroyed []int
		typ := NewType("sample", func(v any) {
			destroyed = append(destroyed, v.(*sample).ID)
		})

		ref, err := New(typ, sample{ID: 7})
		require.NoError(t, err)
		ref.Reference()

		assert.False(t, ref.Dereference())
		assert.Empty(t, destroyed)
		assert.True(t, ref.Dereference())
		assert.Equal(t, []int{7}, destroyed)
		assert.Equal(t, int64(0), typ.Live())
		assert.Equal(t, sample{}, *ref.Value())
	})

	t.Run("Reference after destroy panics", func(t *testing.T) {
		ref, err := New(NewType("sample", nil), sample{})
		require.NoError(t, err)
		ref.Dereference()

		assert.Panics(t, func() { ref.Reference() })
	})

	t.Run("Over release panics", func(t *testing.T) {
		ref, err := New(NewType("sample", nil), sample{})
		require.NoError(t, err)
		ref.Dereference()

		assert.Panics(t, func() { ref.Dereference() })
	})
}

func TestLimit(t *testing.T) {
	typ := NewType("limited", nil)
	typ.SetLimit(2)

	a, err := New(typ, 1)
	require.NoError(t, err)
	_, err = New(typ, 2)
	require.NoError(t, err)

	_, err = New(typ, 3)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, uint64(2), typ.Total())

	a.Dereference()
	_, err = New(typ, 4)
	assert.NoError(t, err)
}

func TestConcurrentReferences(t *testing.T) {
	var calls int
	typ := NewType("shared", func(any) { calls++ })
	ref, err := New(typ, sample{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		ref.Reference()
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref.Dereference()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ref.Count())
	assert.True(t, ref.Dereference())
	assert.Equal(t, 1, calls)
}
