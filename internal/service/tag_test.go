package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/markhavenapp/markhaven-server/internal/errors"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

func TestTagCreate_NormalizesName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	principal := registerTestUser(t, env, "tags@example.com")

	tag, created, err := env.tags.Create(ctx, principal, "  Deep Work  ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "deep work", tag.Name)

	// A differently-cased resubmission finds the same tag.
	same, created, err := env.tags.Create(ctx, principal, "DEEP WORK")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tag.ID, same.ID)
}

func TestTagCreate_EmptyAfterNormalization(t *testing.T) {
	env := newTestEnv(t)
	principal := registerTestUser(t, env, "emptytag@example.com")

	_, _, err := env.tags.Create(context.Background(), principal, "   ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestTagRename_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	principal := registerTestUser(t, env, "renametag@example.com")

	tag, _, err := env.tags.Create(ctx, principal, "first")
	require.NoError(t, err)
	_, _, err = env.tags.Create(ctx, principal, "second")
	require.NoError(t, err)

	renamed, err := env.tags.Rename(ctx, principal, tag.ID, "  Third  ")
	require.NoError(t, err)
	assert.Equal(t, "third", renamed.Name)

	_, err = env.tags.Rename(ctx, principal, tag.ID, "second")
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestTagDelete_DetachesFromBookmarks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	principal := registerTestUser(t, env, "deltag@example.com")

	tag, _, err := env.tags.Create(ctx, principal, "doomed")
	require.NoError(t, err)
	bm, err := env.bookmarks.Create(ctx, principal, CreateBookmarkRequest{
		URL:  "https://example.com/tagged",
		Tags: []TagRef{{ID: tag.ID}},
	})
	require.NoError(t, err)

	require.NoError(t, env.tags.Delete(ctx, principal, tag.ID))

	got, err := env.bookmarks.Get(ctx, principal, bm.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags, "bookmark survives with the tag detached")
}
