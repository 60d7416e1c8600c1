package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tartanmarket/internal/domain"
	"tartanmarket/internal/store/sqlite"
)

func TestFavoritesIdempotent(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1")
	repo := sqlite.NewFavoriteRepo(db)
	ctx := context.Background()

	mpRef := domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "item1"}
	commRef := domain.ItemRef{Kind: domain.ItemKindCommission, ID: "comm1"}

	require.NoError(t, repo.Add(ctx, "u1", mpRef))
	require.NoError(t, repo.Add(ctx, "u1", mpRef))
	require.NoError(t, repo.Add(ctx, "u1", commRef))

	refs, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ItemRef{mpRef, commRef}, refs)

	// Removing something never favorited is a no-op.
	require.NoError(t, repo.Remove(ctx, "u1", domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "ghost"}))

	require.NoError(t, repo.Remove(ctx, "u1", mpRef))
	refs, err = repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemRef{commRef}, refs)
}

func TestFavoritesScopedToUser(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1")
	seedUser(t, db, "u2")
	repo := sqlite.NewFavoriteRepo(db)
	ctx := context.Background()

	ref := domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "item1"}
	require.NoError(t, repo.Add(ctx, "u1", ref))

	refs, err := repo.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, refs)
}
