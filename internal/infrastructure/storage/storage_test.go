package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"edge-lab-bot/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreatesAndSaves(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	user.Select(entity.OperatorCanny, entity.Controls{entity.ControlLowThreshold: 50})
	user.SetState(entity.StateImageLoaded)
	require.NoError(t, repo.Save(ctx, user))

	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateImageLoaded, again.State)
	require.Equal(t, entity.OperatorCanny, again.Operator)
	require.Equal(t, 50.0, again.Controls[entity.ControlLowThreshold])
}

func TestMemoryUserRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	user.SetState(entity.StateProcessing)

	stored, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, stored.State)
}

func TestMemoryImageRepository_Replace(t *testing.T) {
	repo := NewMemoryImageRepository()
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)

	first := entity.NewRaster(2, 2, 3)
	second := entity.NewRaster(4, 4, 3)
	require.NoError(t, repo.Put(ctx, 1, first))
	require.NoError(t, repo.Put(ctx, 1, second))

	got, ok, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, second, got)

	require.NoError(t, repo.Delete(ctx, 1))
	_, ok, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)
}
