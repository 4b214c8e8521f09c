package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/efxcreator/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_GetSetDelete(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewSettingsRepository(db)

	_, err := repo.Get(ctx, "efx_storage_path")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Set(ctx, "efx_storage_path", "default_internal"))
	value, err := repo.Get(ctx, "efx_storage_path")
	require.NoError(t, err)
	require.Equal(t, "default_internal", value)

	require.NoError(t, repo.Set(ctx, "efx_storage_path", "/data/efx"))
	value, err = repo.Get(ctx, "efx_storage_path")
	require.NoError(t, err)
	require.Equal(t, "/data/efx", value)

	require.NoError(t, repo.Delete(ctx, "efx_storage_path"))
	require.NoError(t, repo.Delete(ctx, "efx_storage_path"))
	_, err = repo.Get(ctx, "efx_storage_path")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
