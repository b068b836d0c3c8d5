package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/markhavenapp/markhaven-server/internal/auth"
	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/scrape"
	"github.com/markhavenapp/markhaven-server/internal/store"
	"github.com/markhavenapp/markhaven-server/internal/store/sqlite"
	"github.com/markhavenapp/markhaven-server/internal/validation"
)

// testKeyHex is a fixed 32-byte key for token tests.
const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// stubResolver returns canned metadata without touching the network.
type stubResolver struct {
	meta scrape.Metadata
}

func (r *stubResolver) Resolve(context.Context, string) scrape.Metadata {
	return r.meta
}

type testEnv struct {
	store       store.Store
	auth        *AuthService
	bookmarks   *BookmarkService
	tags        *TagService
	collections *CollectionService
	resolver    *stubResolver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	validator := validation.New()
	resolver := &stubResolver{}

	return &testEnv{
		store:       st,
		auth:        NewAuthService(st, tokens, validator, NewLogMailer(logger), logger),
		bookmarks:   NewBookmarkService(st, resolver, validator, logger),
		tags:        NewTagService(st, logger),
		collections: NewCollectionService(st, logger),
		resolver:    resolver,
	}
}

// registerTestUser registers a user and returns their principal.
func registerTestUser(t *testing.T, env *testEnv, email string) domain.Principal {
	t.Helper()

	user, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	return domain.Principal{UserID: user.ID, Email: user.Email}
}
