package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

func createTestBookmark(t *testing.T, s *Store, ownerID, url string, tagIDs, collectionIDs []string) *domain.Bookmark {
	t.Helper()

	now := time.Now().UTC()
	bm := &domain.Bookmark{
		ID: "bm-" + mustID(t), OwnerID: ownerID, URL: url,
		Title: "Title for " + url, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.CreateBookmark(context.Background(), bm, tagIDs, collectionIDs); err != nil {
		t.Fatalf("create bookmark %q: %v", url, err)
	}
	return bm
}

func TestCreateBookmark_DuplicateURL(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "bmdup@example.com")

	createTestBookmark(t, s, user.ID, "https://example.com", nil, nil)

	now := time.Now().UTC()
	dup := &domain.Bookmark{
		ID: "bm-" + mustID(t), OwnerID: user.ID,
		URL: "https://example.com", CreatedAt: now, UpdatedAt: now,
	}
	err := s.CreateBookmark(context.Background(), dup, nil, nil)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateBookmark_SameURLDifferentOwners(t *testing.T) {
	s := newTestStore(t)
	alice := createTestUser(t, s, "alice4@example.com")
	bob := createTestUser(t, s, "bob4@example.com")

	createTestBookmark(t, s, alice.ID, "https://example.com", nil, nil)
	createTestBookmark(t, s, bob.ID, "https://example.com", nil, nil)
}

func TestGetBookmark_LoadsLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "bmget@example.com")

	tag := createTestTag(t, s, user.ID, "linked")
	coll := createTestCollection(t, s, user.ID, "Linked")
	bm := createTestBookmark(t, s, user.ID, "https://example.com/x",
		[]string{tag.ID}, []string{coll.ID})

	got, err := s.GetBookmark(ctx, user.ID, bm.ID)
	if err != nil {
		t.Fatalf("get bookmark: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "linked" {
		t.Errorf("tags not loaded: %+v", got.Tags)
	}
	if len(got.Collections) != 1 || got.Collections[0].Name != "Linked" {
		t.Errorf("collections not loaded: %+v", got.Collections)
	}
}

func TestGetBookmark_OtherOwner(t *testing.T) {
	s := newTestStore(t)
	alice := createTestUser(t, s, "alice5@example.com")
	bob := createTestUser(t, s, "bob5@example.com")

	bm := createTestBookmark(t, s, alice.ID, "https://example.com/p", nil, nil)

	if _, err := s.GetBookmark(context.Background(), bob.ID, bm.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}

func TestGetLatestBookmark(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "latest@example.com")

	if _, err := s.GetLatestBookmark(ctx, user.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty account, got %v", err)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		bm := &domain.Bookmark{
			ID: "bm-" + mustID(t), OwnerID: user.ID,
			URL:       fmt.Sprintf("https://example.com/%d", i),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			UpdatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := s.CreateBookmark(ctx, bm, nil, nil); err != nil {
			t.Fatalf("create bookmark: %v", err)
		}
	}

	latest, err := s.GetLatestBookmark(ctx, user.ID)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.URL != "https://example.com/2" {
		t.Errorf("latest: got %q, want the newest", latest.URL)
	}
}

func TestListBookmarks_PaginationAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "bmlist@example.com")

	now := time.Now().UTC()
	for i := 0; i < 25; i++ {
		bm := &domain.Bookmark{
			ID: "bm-" + mustID(t), OwnerID: user.ID,
			URL:       fmt.Sprintf("https://example.com/page/%02d", i),
			Title:     fmt.Sprintf("Page %02d", i),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			UpdatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := s.CreateBookmark(ctx, bm, nil, nil); err != nil {
			t.Fatalf("create bookmark: %v", err)
		}
	}

	page1, err := s.ListBookmarks(ctx, user.ID, store.ListParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(page1.Items) != 10 {
		t.Fatalf("page 1: got %d items, want 10", len(page1.Items))
	}
	if page1.Items[0].Title != "Page 24" {
		t.Errorf("newest first: got %q", page1.Items[0].Title)
	}
	if page1.Metadata.TotalCount != 25 || page1.Metadata.TotalPages != 3 {
		t.Errorf("metadata: %+v", page1.Metadata)
	}
	if !page1.Metadata.HasNextPage || page1.Metadata.HasPreviousPage {
		t.Errorf("page 1 metadata flags: %+v", page1.Metadata)
	}

	page3, err := s.ListBookmarks(ctx, user.ID, store.ListParams{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(page3.Items) != 5 {
		t.Errorf("page 3: got %d items, want 5", len(page3.Items))
	}
	if page3.Metadata.HasNextPage {
		t.Errorf("page 3 should be last: %+v", page3.Metadata)
	}
}

func TestListBookmarks_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "bmfilter@example.com")

	tag := createTestTag(t, s, user.ID, "golang")
	coll := createTestCollection(t, s, user.ID, "Work")

	createTestBookmark(t, s, user.ID, "https://go.dev/blog", []string{tag.ID}, nil)
	createTestBookmark(t, s, user.ID, "https://example.com/report", nil, []string{coll.ID})
	createTestBookmark(t, s, user.ID, "https://example.com/other", nil, nil)

	byTag, err := s.ListBookmarks(ctx, user.ID, store.ListParams{TagID: tag.ID})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(byTag.Items) != 1 || byTag.Items[0].URL != "https://go.dev/blog" {
		t.Errorf("tag filter: %+v", byTag.Items)
	}

	byColl, err := s.ListBookmarks(ctx, user.ID, store.ListParams{CollectionID: coll.ID})
	if err != nil {
		t.Fatalf("list by collection: %v", err)
	}
	if len(byColl.Items) != 1 || byColl.Items[0].URL != "https://example.com/report" {
		t.Errorf("collection filter: %+v", byColl.Items)
	}

	bySearch, err := s.ListBookmarks(ctx, user.ID, store.ListParams{Search: "go.dev"})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(bySearch.Items) != 1 {
		t.Errorf("search filter: %+v", bySearch.Items)
	}

	// Wildcards in search input match literally.
	byWildcard, err := s.ListBookmarks(ctx, user.ID, store.ListParams{Search: "%"})
	if err != nil {
		t.Fatalf("list by wildcard: %v", err)
	}
	if len(byWildcard.Items) != 0 {
		t.Errorf("literal %% should match nothing: %+v", byWildcard.Items)
	}
}

func TestUpdateBookmark_ReplaceSets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "bmupdate@example.com")

	tagA := createTestTag(t, s, user.ID, "a")
	tagB := createTestTag(t, s, user.ID, "b")
	tagC := createTestTag(t, s, user.ID, "c")
	coll := createTestCollection(t, s, user.ID, "Kept")

	bm := createTestBookmark(t, s, user.ID, "https://example.com/u",
		[]string{tagA.ID, tagB.ID}, []string{coll.ID})

	// Replace {a, b} with {b, c}; collections untouched (nil).
	bm.Title = "Updated"
	bm.Touch()
	newTags := []string{tagB.ID, tagC.ID}
	if err := s.UpdateBookmark(ctx, bm, &newTags, nil); err != nil {
		t.Fatalf("update bookmark: %v", err)
	}

	got, err := s.GetBookmark(ctx, user.ID, bm.ID)
	if err != nil {
		t.Fatalf("get bookmark: %v", err)
	}
	if got.Title != "Updated" {
		t.Errorf("title: got %q", got.Title)
	}
	names := make(map[string]bool)
	for _, tag := range got.Tags {
		names[tag.Name] = true
	}
	if len(names) != 2 || !names["b"] || !names["c"] {
		t.Errorf("tags after replace: %+v", got.Tags)
	}
	if len(got.Collections) != 1 {
		t.Errorf("nil collectionIDs should leave collections untouched: %+v", got.Collections)
	}

	// Empty slice clears the relation.
	empty := []string{}
	if err := s.UpdateBookmark(ctx, bm, nil, &empty); err != nil {
		t.Fatalf("clear collections: %v", err)
	}
	got, err = s.GetBookmark(ctx, user.ID, bm.ID)
	if err != nil {
		t.Fatalf("get bookmark: %v", err)
	}
	if len(got.Collections) != 0 {
		t.Errorf("empty collectionIDs should clear: %+v", got.Collections)
	}
	if len(got.Tags) != 2 {
		t.Errorf("nil tagIDs should leave tags untouched: %+v", got.Tags)
	}
}

func TestUpdateBookmark_NotFound(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "bmupdate404@example.com")

	now := time.Now().UTC()
	bm := &domain.Bookmark{
		ID: "bm-missing", OwnerID: user.ID,
		URL: "https://example.com", CreatedAt: now, UpdatedAt: now,
	}
	err := s.UpdateBookmark(context.Background(), bm, nil, nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBookmark(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "bmdelete@example.com")

	tag := createTestTag(t, s, user.ID, "survives")
	bm := createTestBookmark(t, s, user.ID, "https://example.com/d", []string{tag.ID}, nil)

	if err := s.DeleteBookmark(ctx, user.ID, bm.ID); err != nil {
		t.Fatalf("delete bookmark: %v", err)
	}
	if _, err := s.GetBookmark(ctx, user.ID, bm.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("bookmark should be gone, got %v", err)
	}

	// Deleting a bookmark never deletes its tags.
	if _, err := s.GetTag(ctx, user.ID, tag.ID); err != nil {
		t.Errorf("tag should survive bookmark deletion: %v", err)
	}

	if err := s.DeleteBookmark(ctx, user.ID, bm.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}
