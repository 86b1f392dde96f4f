package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzdex/arzdex/internal/core/repository/memory"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := memory.NewRepo()
	ctx := context.Background()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var missing record
	found, err := repo.Load(ctx, "absent", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Save(ctx, "rec", record{Name: "a", Count: 3}))

	var got record
	found, err = repo.Load(ctx, "rec", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, record{Name: "a", Count: 3}, got)
}

func TestSaveAllIsAllOrNothing(t *testing.T) {
	repo := memory.NewRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "a", 1))

	err := repo.SaveAll(ctx, map[string]any{
		"a": 2,
		"b": make(chan int), // not serializable
	})
	require.Error(t, err)

	var a int
	found, err := repo.Load(ctx, "a", &a)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, a, "failed batch must not apply partially")
}

func TestFailWrites(t *testing.T) {
	repo := memory.NewRepo()
	repo.FailWrites = true

	err := repo.Save(context.Background(), "a", 1)
	assert.Error(t, err)
}
