package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	domainerrors "github.com/markhavenapp/markhaven-server/internal/errors"
	"github.com/markhavenapp/markhaven-server/internal/id"
	"github.com/markhavenapp/markhaven-server/internal/normalize"
	"github.com/markhavenapp/markhaven-server/internal/scrape"
	"github.com/markhavenapp/markhaven-server/internal/store"
	"github.com/markhavenapp/markhaven-server/internal/validation"
)

// MetadataResolver fetches page metadata for a URL. Resolution is
// best-effort and never fails; missing metadata comes back as zero values.
type MetadataResolver interface {
	Resolve(ctx context.Context, rawURL string) scrape.Metadata
}

// BookmarkService orchestrates bookmark creation, listing, updates, and the
// metadata pipeline.
type BookmarkService struct {
	store     store.Store
	resolver  MetadataResolver
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookmarkService creates a new bookmark service.
func NewBookmarkService(
	store store.Store,
	resolver MetadataResolver,
	validator *validation.Validator,
	logger *slog.Logger,
) *BookmarkService {
	return &BookmarkService{
		store:     store,
		resolver:  resolver,
		validator: validator,
		logger:    logger,
	}
}

// TagRef references a tag on a bookmark write. An ID is honored only when it
// still belongs to the caller; otherwise the name is resolved through
// find-or-create. Entries with neither a usable ID nor a name are skipped.
type TagRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty" validate:"omitempty,max=100"`
}

// CollectionRef references an existing collection on a bookmark write.
// IDs that do not resolve to a collection owned by the caller are dropped
// without error.
type CollectionRef struct {
	ID string `json:"id"`
}

// CreateBookmarkRequest contains the data to save a URL. Title and
// description, when present, override whatever metadata resolution finds.
type CreateBookmarkRequest struct {
	URL         string          `json:"url" validate:"required,http_url,max=2048"`
	Title       string          `json:"title,omitempty" validate:"omitempty,max=255"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=1024"`
	Tags        []TagRef        `json:"tags,omitempty" validate:"omitempty,dive"`
	Collections []CollectionRef `json:"collections,omitempty"`
}

// UpdateBookmarkRequest patches a bookmark. Nil fields are untouched. Tags
// and Collections are replace-set: nil leaves the relation alone, an empty
// list clears it, and a non-nil list replaces the full set.
type UpdateBookmarkRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=1024"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,max=2048"`
	Tags        *[]TagRef        `json:"tags" validate:"omitempty,dive"`
	Collections *[]CollectionRef `json:"collections"`
}

// Create saves a URL as a bookmark. The page is fetched for metadata with a
// bounded budget; whatever cannot be resolved falls back (title to a URL
// prefix, description and image to empty). When the request names no tags
// and no collections at all, defaults are seeded from the caller's most
// recent bookmark.
func (s *BookmarkService) Create(ctx context.Context, principal domain.Principal, req CreateBookmarkRequest) (*domain.Bookmark, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBookmarkByURL(ctx, principal.UserID, req.URL); err == nil {
		return nil, domainerrors.Conflict("bookmark for this URL already exists")
	} else if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check for duplicate: %w", err)
	}

	var tagIDs, collectionIDs []string
	var err error
	if len(req.Tags) == 0 && len(req.Collections) == 0 {
		tagIDs, collectionIDs = s.seedFromLatest(ctx, principal.UserID)
	} else {
		tagIDs, err = s.resolveTagRefs(ctx, principal.UserID, req.Tags)
		if err != nil {
			return nil, err
		}
		collectionIDs, err = s.resolveCollectionRefs(ctx, principal.UserID, req.Collections)
		if err != nil {
			return nil, err
		}
	}

	meta := s.resolver.Resolve(ctx, req.URL)

	title := req.Title
	if title == "" {
		title = meta.Title
	}
	if title == "" {
		title = domain.FallbackTitle(req.URL)
	}
	description := req.Description
	if description == "" {
		description = meta.Description
	}

	bookmarkID, err := id.Generate("bm")
	if err != nil {
		return nil, fmt.Errorf("generate bookmark ID: %w", err)
	}
	now := time.Now().UTC()
	bm := &domain.Bookmark{
		ID:          bookmarkID,
		OwnerID:     principal.UserID,
		URL:         req.URL,
		Title:       title,
		Description: description,
		ImageURL:    meta.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateBookmark(ctx, bm, tagIDs, collectionIDs); err != nil {
		return nil, err
	}

	s.logger.Info("bookmark created",
		"bookmark_id", bm.ID,
		"user_id", principal.UserID,
		"tags", len(tagIDs),
		"collections", len(collectionIDs),
	)

	return s.store.GetBookmark(ctx, principal.UserID, bm.ID)
}

// Get returns one of the caller's bookmarks with links loaded.
func (s *BookmarkService) Get(ctx context.Context, principal domain.Principal, bookmarkID string) (*domain.Bookmark, error) {
	return s.store.GetBookmark(ctx, principal.UserID, bookmarkID)
}

// List returns a page of the caller's bookmarks, newest first.
func (s *BookmarkService) List(ctx context.Context, principal domain.Principal, params store.ListParams) (*store.PaginatedResult[*domain.Bookmark], error) {
	return s.store.ListBookmarks(ctx, principal.UserID, params)
}

// Update patches a bookmark and replaces its association sets. Link updates
// happen atomically with the scalar patch.
func (s *BookmarkService) Update(ctx context.Context, principal domain.Principal, bookmarkID string, req UpdateBookmarkRequest) (*domain.Bookmark, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bm, err := s.store.GetBookmark(ctx, principal.UserID, bookmarkID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		bm.Title = *req.Title
	}
	if req.Description != nil {
		bm.Description = *req.Description
	}
	if req.ImageURL != nil {
		bm.ImageURL = *req.ImageURL
	}

	var tagIDs, collectionIDs *[]string
	if req.Tags != nil {
		resolved, err := s.resolveTagRefs(ctx, principal.UserID, *req.Tags)
		if err != nil {
			return nil, err
		}
		tagIDs = &resolved
	}
	if req.Collections != nil {
		resolved, err := s.resolveCollectionRefs(ctx, principal.UserID, *req.Collections)
		if err != nil {
			return nil, err
		}
		collectionIDs = &resolved
	}

	bm.Touch()
	if err := s.store.UpdateBookmark(ctx, bm, tagIDs, collectionIDs); err != nil {
		return nil, err
	}

	s.logger.Info("bookmark updated", "bookmark_id", bookmarkID, "user_id", principal.UserID)
	return s.store.GetBookmark(ctx, principal.UserID, bookmarkID)
}

// Delete removes a bookmark. Tags and collections are never deleted with it.
func (s *BookmarkService) Delete(ctx context.Context, principal domain.Principal, bookmarkID string) error {
	if err := s.store.DeleteBookmark(ctx, principal.UserID, bookmarkID); err != nil {
		return err
	}
	s.logger.Info("bookmark deleted", "bookmark_id", bookmarkID, "user_id", principal.UserID)
	return nil
}

// seedFromLatest suggests default associations for a bookmark created with
// none: the first tag and first collection of the caller's most recent
// bookmark. A caller with no bookmarks gets no defaults. Best-effort; a
// lookup failure just means no seeding.
func (s *BookmarkService) seedFromLatest(ctx context.Context, ownerID string) (tagIDs, collectionIDs []string) {
	latest, err := s.store.GetLatestBookmark(ctx, ownerID)
	if err != nil {
		if !domainerrors.Is(err, store.ErrNotFound) {
			s.logger.Warn("seed lookup failed", "user_id", ownerID, "error", err)
		}
		return nil, nil
	}

	if len(latest.Tags) > 0 {
		tagIDs = []string{latest.Tags[0].ID}
	}
	if len(latest.Collections) > 0 {
		collectionIDs = []string{latest.Collections[0].ID}
	}
	return tagIDs, collectionIDs
}

// resolveTagRefs turns tag references into an owned tag ID set. An ID is
// used as-is when it resolves to one of the caller's tags; everything else
// goes through find-or-create on the normalized name. Refs with a stale ID
// and no name are skipped. The result is deduplicated, preserving order.
func (s *BookmarkService) resolveTagRefs(ctx context.Context, ownerID string, refs []TagRef) ([]string, error) {
	resolved := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))

	for _, ref := range refs {
		var tagID string

		if ref.ID != "" {
			tag, err := s.store.GetTag(ctx, ownerID, ref.ID)
			switch {
			case err == nil:
				tagID = tag.ID
			case !domainerrors.Is(err, store.ErrNotFound):
				return nil, fmt.Errorf("resolve tag %s: %w", ref.ID, err)
			}
		}

		if tagID == "" {
			name := normalize.TagName(ref.Name)
			if name == "" {
				continue
			}
			tag, _, err := s.store.FindOrCreateTag(ctx, ownerID, name)
			if err != nil {
				return nil, fmt.Errorf("find or create tag %q: %w", name, err)
			}
			tagID = tag.ID
		}

		if _, dup := seen[tagID]; dup {
			continue
		}
		seen[tagID] = struct{}{}
		resolved = append(resolved, tagID)
	}

	return resolved, nil
}

// resolveCollectionRefs filters collection references down to the IDs that
// belong to the caller. Unknown and foreign IDs are dropped without error;
// the final set is the valid subset, deduplicated.
func (s *BookmarkService) resolveCollectionRefs(ctx context.Context, ownerID string, refs []CollectionRef) ([]string, error) {
	resolved := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))

	for _, ref := range refs {
		if ref.ID == "" {
			continue
		}
		if _, dup := seen[ref.ID]; dup {
			continue
		}

		_, err := s.store.GetCollection(ctx, ownerID, ref.ID)
		if err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve collection %s: %w", ref.ID, err)
		}

		seen[ref.ID] = struct{}{}
		resolved = append(resolved, ref.ID)
	}

	return resolved, nil
}
