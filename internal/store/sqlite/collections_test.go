package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

func createTestCollection(t *testing.T, s *Store, ownerID, name string) *domain.Collection {
	t.Helper()

	now := time.Now().UTC()
	coll := &domain.Collection{
		ID: "col-" + mustID(t), OwnerID: ownerID, Name: name,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateCollection(context.Background(), coll); err != nil {
		t.Fatalf("create collection %q: %v", name, err)
	}
	return coll
}

func TestCreateCollection_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "colls@example.com")

	createTestCollection(t, s, user.ID, "Work")

	now := time.Now().UTC()
	dup := &domain.Collection{
		ID: "col-" + mustID(t), OwnerID: user.ID, Name: "Work",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateCollection(context.Background(), dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListCollections_SystemFirst(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "list@example.com")

	createTestCollection(t, s, user.ID, "Alpha")
	createTestCollection(t, s, user.ID, "Zeta")

	colls, err := s.ListCollections(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	if len(colls) != 3 {
		t.Fatalf("got %d collections, want 3", len(colls))
	}
	if !colls[0].IsSystem {
		t.Errorf("system collection should sort first, got %q", colls[0].Name)
	}
	if colls[1].Name != "Alpha" || colls[2].Name != "Zeta" {
		t.Errorf("non-system collections out of order: %q, %q", colls[1].Name, colls[2].Name)
	}
}

func TestRenameCollection_SystemForbidden(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "renamec@example.com")

	system, err := s.GetSystemCollection(ctx, user.ID)
	if err != nil {
		t.Fatalf("get system collection: %v", err)
	}

	if _, err := s.RenameCollection(ctx, user.ID, system.ID, "Sorted"); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	coll := createTestCollection(t, s, user.ID, "Old")
	renamed, err := s.RenameCollection(ctx, user.ID, coll.ID, "New")
	if err != nil {
		t.Fatalf("rename collection: %v", err)
	}
	if renamed.Name != "New" {
		t.Errorf("name: got %q, want %q", renamed.Name, "New")
	}
}

func TestDeleteCollectionCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "cascade@example.com")

	system, err := s.GetSystemCollection(ctx, user.ID)
	if err != nil {
		t.Fatalf("get system collection: %v", err)
	}
	doomed := createTestCollection(t, s, user.ID, "Doomed")
	other := createTestCollection(t, s, user.ID, "Other")

	// orphan: only in the doomed collection. both: doomed and another.
	// already: doomed and already in the system collection.
	orphan := createTestBookmark(t, s, user.ID, "https://example.com/orphan",
		nil, []string{doomed.ID})
	both := createTestBookmark(t, s, user.ID, "https://example.com/both",
		nil, []string{doomed.ID, other.ID})
	already := createTestBookmark(t, s, user.ID, "https://example.com/already",
		nil, []string{doomed.ID, system.ID})

	if err := s.DeleteCollectionCascade(ctx, user.ID, doomed.ID); err != nil {
		t.Fatalf("delete cascade: %v", err)
	}

	if _, err := s.GetCollection(ctx, user.ID, doomed.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("collection should be gone, got %v", err)
	}

	assertCollections := func(bookmarkID string, wantIDs ...string) {
		t.Helper()
		bm, err := s.GetBookmark(ctx, user.ID, bookmarkID)
		if err != nil {
			t.Fatalf("get bookmark: %v", err)
		}
		got := make(map[string]bool)
		for _, c := range bm.Collections {
			got[c.ID] = true
		}
		if len(got) != len(wantIDs) {
			t.Fatalf("bookmark %s collections: got %d, want %d (%v)",
				bookmarkID, len(got), len(wantIDs), bm.Collections)
		}
		for _, id := range wantIDs {
			if !got[id] {
				t.Errorf("bookmark %s missing collection %s", bookmarkID, id)
			}
		}
	}

	assertCollections(orphan.ID, system.ID)
	assertCollections(both.ID, system.ID, other.ID)
	assertCollections(already.ID, system.ID)
}

func TestDeleteCollectionCascade_SystemForbidden(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "cascadesys@example.com")

	system, err := s.GetSystemCollection(ctx, user.ID)
	if err != nil {
		t.Fatalf("get system collection: %v", err)
	}

	if err := s.DeleteCollectionCascade(ctx, user.ID, system.ID); !errors.Is(err, store.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDeleteCollectionCascade_OtherOwner(t *testing.T) {
	s := newTestStore(t)
	alice := createTestUser(t, s, "alice3@example.com")
	bob := createTestUser(t, s, "bob3@example.com")

	coll := createTestCollection(t, s, alice.ID, "Private")

	err := s.DeleteCollectionCascade(context.Background(), bob.ID, coll.ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}
