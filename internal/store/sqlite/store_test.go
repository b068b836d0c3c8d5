package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestUser inserts a user with a seeded system collection and default
// tags, mirroring registration.
func createTestUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := &domain.User{
		ID:           "usr-" + mustID(t),
		Email:        email,
		PasswordHash: "not-a-real-hash",
		DisplayName:  "Test User",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	system := &domain.Collection{
		ID:        "col-" + mustID(t),
		OwnerID:   user.ID,
		Name:      domain.SystemCollectionName,
		IsSystem:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var defaults []*domain.Tag
	for _, name := range domain.DefaultTagNames {
		defaults = append(defaults, &domain.Tag{
			ID:        "tag-" + mustID(t),
			OwnerID:   user.ID,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.CreateUser(context.Background(), user, system, defaults); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustID(t *testing.T) string {
	t.Helper()
	id, err := gonanoid.New()
	if err != nil {
		t.Fatalf("generate id: %v", err)
	}
	return id
}

func TestCreateUser_SeedsSystemCollectionAndDefaultTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, s, "seed@example.com")

	system, err := s.GetSystemCollection(ctx, user.ID)
	if err != nil {
		t.Fatalf("get system collection: %v", err)
	}
	if system.Name != domain.SystemCollectionName {
		t.Errorf("system collection name: got %q, want %q", system.Name, domain.SystemCollectionName)
	}
	if !system.IsSystem {
		t.Error("system collection should have IsSystem set")
	}

	tags, err := s.ListTags(ctx, user.ID)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if len(tags) != len(domain.DefaultTagNames) {
		t.Fatalf("default tags: got %d, want %d", len(tags), len(domain.DefaultTagNames))
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)

	createTestUser(t, s, "dup@example.com")

	now := time.Now().UTC()
	user := &domain.User{
		ID: "usr-" + mustID(t), Email: "dup@example.com",
		PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	}
	system := &domain.Collection{
		ID: "col-" + mustID(t), OwnerID: user.ID,
		Name: domain.SystemCollectionName, IsSystem: true,
		CreatedAt: now, UpdatedAt: now,
	}
	err := s.CreateUser(context.Background(), user, system, nil)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// The rejected registration must not leave a half-seeded account.
	if _, err := s.GetSystemCollection(context.Background(), user.ID); !errors.Is(err, store.ErrSystemCollectionMissing) {
		t.Errorf("rolled-back registration left a system collection: %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := createTestUser(t, s, "lookup@example.com")

	user, err := s.GetUserByEmail(ctx, "lookup@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("got user %s, want %s", user.ID, created.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, s, "reset@example.com")
	expires := time.Now().UTC().Add(time.Hour)

	if err := s.SetResetToken(ctx, user.ID, "hash-abc", expires); err != nil {
		t.Fatalf("set reset token: %v", err)
	}

	found, err := s.GetUserByResetTokenHash(ctx, "hash-abc")
	if err != nil {
		t.Fatalf("get by reset token: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("got user %s, want %s", found.ID, user.ID)
	}
	if !found.HasPendingReset(time.Now().UTC()) {
		t.Error("expected pending reset")
	}

	if err := s.UpdatePassword(ctx, user.ID, "new-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	// Reset state is cleared and the token can no longer be used.
	if _, err := s.GetUserByResetTokenHash(ctx, "hash-abc"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after password update, got %v", err)
	}
	updated, err := s.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if updated.PasswordHash != "new-hash" {
		t.Errorf("password hash not updated: %q", updated.PasswordHash)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, s, "sessions@example.com")
	now := time.Now().UTC()

	live := &domain.Session{
		ID: "ses-" + mustID(t), UserID: user.ID,
		RefreshTokenHash: "hash-live",
		ExpiresAt:        now.Add(time.Hour), CreatedAt: now,
	}
	expired := &domain.Session{
		ID: "ses-" + mustID(t), UserID: user.ID,
		RefreshTokenHash: "hash-expired",
		ExpiresAt:        now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour),
	}
	for _, sess := range []*domain.Session{live, expired} {
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	found, err := s.GetSessionByTokenHash(ctx, "hash-live")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if found.ID != live.ID {
		t.Errorf("got session %s, want %s", found.ID, live.ID)
	}

	n, err := s.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d sessions, want 1", n)
	}

	if err := s.DeleteSession(ctx, live.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := s.GetSessionByTokenHash(ctx, "hash-live"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
