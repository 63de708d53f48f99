package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var out payload
	found, err := store.GetJSON(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetJSON(ctx, "key", payload{Name: "macros", Count: 3}))

	found, err = store.GetJSON(ctx, "key", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "macros", out.Name)
	assert.Equal(t, 3, out.Count)
}

func TestMemoryStore_Del(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SetJSON(ctx, "key", []string{"a"}))
	require.NoError(t, store.Del(ctx, "key"))

	var out []string
	found, err := store.GetJSON(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_Overwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SetJSON(ctx, "key", 1))
	require.NoError(t, store.SetJSON(ctx, "key", 2))

	var out int
	found, err := store.GetJSON(ctx, "key", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, out)
}
