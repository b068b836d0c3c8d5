package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	domainerrors "github.com/markhavenapp/markhaven-server/internal/errors"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

func systemCollection(t *testing.T, env *testEnv, principal domain.Principal) *domain.Collection {
	t.Helper()

	colls, err := env.collections.List(context.Background(), principal)
	require.NoError(t, err)
	require.NotEmpty(t, colls)
	require.True(t, colls[0].IsSystem, "system collection sorts first")
	return colls[0]
}

func TestCollectionCreate_TrimsName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	principal := registerTestUser(t, env, "colls@example.com")

	coll, err := env.collections.Create(ctx, principal, "  Reading List  ")
	require.NoError(t, err)
	assert.Equal(t, "Reading List", coll.Name)
	assert.False(t, coll.IsSystem)

	_, err = env.collections.Create(ctx, principal, "Reading List")
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = env.collections.Create(ctx, principal, "   ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCollectionRename_SystemProtected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	principal := registerTestUser(t, env, "renamecoll@example.com")

	system := systemCollection(t, env, principal)
	_, err := env.collections.Rename(ctx, principal, system.ID, "Sorted")
	assert.ErrorIs(t, err, store.ErrForbidden)

	coll, err := env.collections.Create(ctx, principal, "Old")
	require.NoError(t, err)
	renamed, err := env.collections.Rename(ctx, principal, coll.ID, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", renamed.Name)
}

func TestCollectionDelete_ReassignsBookmarks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	principal := registerTestUser(t, env, "delcoll@example.com")

	system := systemCollection(t, env, principal)
	doomed, err := env.collections.Create(ctx, principal, "Doomed")
	require.NoError(t, err)

	bm, err := env.bookmarks.Create(ctx, principal, CreateBookmarkRequest{
		URL:         "https://example.com/orphaned",
		Collections: []CollectionRef{{ID: doomed.ID}},
	})
	require.NoError(t, err)

	require.NoError(t, env.collections.Delete(ctx, principal, doomed.ID))

	got, err := env.bookmarks.Get(ctx, principal, bm.ID)
	require.NoError(t, err)
	require.Len(t, got.Collections, 1)
	assert.Equal(t, system.ID, got.Collections[0].ID)
}

func TestCollectionDelete_SystemProtected(t *testing.T) {
	env := newTestEnv(t)
	principal := registerTestUser(t, env, "delsys@example.com")

	system := systemCollection(t, env, principal)
	err := env.collections.Delete(context.Background(), principal, system.ID)
	assert.ErrorIs(t, err, store.ErrForbidden)
}
