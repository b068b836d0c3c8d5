package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

func createTestTag(t *testing.T, s *Store, ownerID, name string) *domain.Tag {
	t.Helper()

	now := time.Now().UTC()
	tag := &domain.Tag{
		ID: "tag-" + mustID(t), OwnerID: ownerID, Name: name,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("create tag %q: %v", name, err)
	}
	return tag
}

func TestCreateTag_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "tags@example.com")

	createTestTag(t, s, user.ID, "golang")

	now := time.Now().UTC()
	dup := &domain.Tag{
		ID: "tag-" + mustID(t), OwnerID: user.ID, Name: "golang",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateTag(context.Background(), dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateTag_SameNameDifferentOwners(t *testing.T) {
	s := newTestStore(t)
	alice := createTestUser(t, s, "alice@example.com")
	bob := createTestUser(t, s, "bob@example.com")

	createTestTag(t, s, alice.ID, "golang")
	createTestTag(t, s, bob.ID, "golang")
}

func TestFindOrCreateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "foc@example.com")

	tag, created, err := s.FindOrCreateTag(ctx, user.ID, "reading")
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	if !created {
		t.Error("first call should create")
	}

	again, created, err := s.FindOrCreateTag(ctx, user.ID, "reading")
	if err != nil {
		t.Fatalf("find or create again: %v", err)
	}
	if created {
		t.Error("second call should find")
	}
	if again.ID != tag.ID {
		t.Errorf("got tag %s, want %s", again.ID, tag.ID)
	}
}

func TestFindOrCreateTag_Concurrent(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "race@example.com")

	const workers = 8
	ids := make(chan string, workers)
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		go func() {
			tag, _, err := s.FindOrCreateTag(context.Background(), user.ID, "contended")
			if err != nil {
				errs <- err
				return
			}
			ids <- tag.ID
		}()
	}

	var first string
	for w := 0; w < workers; w++ {
		select {
		case err := <-errs:
			t.Fatalf("find or create: %v", err)
		case id := <-ids:
			if first == "" {
				first = id
			} else if id != first {
				t.Fatalf("concurrent callers got different tags: %s vs %s", id, first)
			}
		}
	}
}

func TestRenameTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "rename@example.com")

	tag := createTestTag(t, s, user.ID, "old-name")
	createTestTag(t, s, user.ID, "taken")

	renamed, err := s.RenameTag(ctx, user.ID, tag.ID, "new-name")
	if err != nil {
		t.Fatalf("rename tag: %v", err)
	}
	if renamed.Name != "new-name" {
		t.Errorf("name: got %q, want %q", renamed.Name, "new-name")
	}

	if _, err := s.RenameTag(ctx, user.ID, tag.ID, "taken"); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := s.RenameTag(ctx, user.ID, "tag-missing", "x"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameTag_OtherOwner(t *testing.T) {
	s := newTestStore(t)
	alice := createTestUser(t, s, "alice2@example.com")
	bob := createTestUser(t, s, "bob2@example.com")

	tag := createTestTag(t, s, alice.ID, "private")

	if _, err := s.RenameTag(context.Background(), bob.ID, tag.ID, "stolen"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}

func TestDetachAndDeleteTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "detach@example.com")

	tag := createTestTag(t, s, user.ID, "doomed")
	keep := createTestTag(t, s, user.ID, "kept")
	bm := createTestBookmark(t, s, user.ID, "https://example.com/a",
		[]string{tag.ID, keep.ID}, nil)

	if err := s.DetachAndDeleteTag(ctx, user.ID, tag.ID); err != nil {
		t.Fatalf("detach and delete: %v", err)
	}

	if _, err := s.GetTag(ctx, user.ID, tag.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("tag should be gone, got %v", err)
	}

	// The bookmark survives and keeps its other tag.
	got, err := s.GetBookmark(ctx, user.ID, bm.ID)
	if err != nil {
		t.Fatalf("get bookmark: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != keep.ID {
		t.Errorf("bookmark tags after detach: %+v", got.Tags)
	}
}

func TestDetachAndDeleteTag_NotFound(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "detach404@example.com")

	err := s.DetachAndDeleteTag(context.Background(), user.ID, "tag-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
