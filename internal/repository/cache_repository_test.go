package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute, time.Minute)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, repo.Set(ctx, "k1", payload{Name: "Science", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, repo.Get(ctx, "k1", &got))
	assert.Equal(t, payload{Name: "Science", Count: 3}, got)
}

func TestMemoryCacheMiss(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute, time.Minute)

	var got string
	err := repo.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "dash:summary", "a", time.Minute))
	require.NoError(t, repo.Set(ctx, "dash:other", "b", time.Minute))
	require.NoError(t, repo.Set(ctx, "session:1", "c", time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "dash:*"))

	var got string
	assert.ErrorIs(t, repo.Get(ctx, "dash:summary", &got), appErrors.ErrCacheMiss)
	assert.ErrorIs(t, repo.Get(ctx, "dash:other", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Get(ctx, "session:1", &got))
	assert.Equal(t, "c", got)
}
