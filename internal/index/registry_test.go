package index

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, id uuid.UUID) *Index {
	t.Helper()
	ix, err := Build(context.Background(), id, makeChunks(id, "text body"), &fakeEmbedder{}, nil)
	require.NoError(t, err)
	return ix
}

func TestRegistryPutGetRemove(t *testing.T) {
	reg := NewRegistry(4, nil)
	id := uuid.New()

	_, ok := reg.Get(id)
	assert.False(t, ok)

	ix := buildIndex(t, id)
	reg.Put(ix)

	got, ok := reg.Get(id)
	require.True(t, ok)
	assert.Same(t, ix, got)
	assert.Equal(t, 1, reg.Len())

	reg.Remove(id)
	_, ok = reg.Get(id)
	assert.False(t, ok)
}

func TestRegistryReplaceLastWriterWins(t *testing.T) {
	reg := NewRegistry(4, nil)
	id := uuid.New()

	first := buildIndex(t, id)
	second := buildIndex(t, id)
	reg.Put(first)
	reg.Put(second)

	got, ok := reg.Get(id)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	reg := NewRegistry(2, nil)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	reg.Put(buildIndex(t, a))
	reg.Put(buildIndex(t, b))

	// Touch a so b becomes the eviction candidate.
	_, ok := reg.Get(a)
	require.True(t, ok)

	reg.Put(buildIndex(t, c))
	assert.Equal(t, 2, reg.Len())

	_, ok = reg.Get(b)
	assert.False(t, ok)
	_, ok = reg.Get(a)
	assert.True(t, ok)
	_, ok = reg.Get(c)
	assert.True(t, ok)
}

func TestRegistryUnboundedWhenCapacityZero(t *testing.T) {
	reg := NewRegistry(0, nil)
	for i := 0; i < 10; i++ {
		reg.Put(buildIndex(t, uuid.New()))
	}
	assert.Equal(t, 10, reg.Len())
}
