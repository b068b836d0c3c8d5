package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	domainerrors "github.com/markhavenapp/markhaven-server/internal/errors"
	"github.com/markhavenapp/markhaven-server/internal/normalize"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

// TagService orchestrates per-user tag operations. Tag names are normalized
// (trimmed, lowercased, NFC) before they touch the store, so "Work" and
// " work " are the same tag.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{store: store, logger: logger}
}

// Create finds or creates a tag by name. Submitting an existing name returns
// the existing tag; created reports which happened. Concurrent creates of
// the same name converge on one tag.
func (s *TagService) Create(ctx context.Context, principal domain.Principal, rawName string) (*domain.Tag, bool, error) {
	name := normalize.TagName(rawName)
	if name == "" {
		return nil, false, domainerrors.Validation("tag name must not be empty")
	}

	tag, created, err := s.store.FindOrCreateTag(ctx, principal.UserID, name)
	if err != nil {
		return nil, false, fmt.Errorf("find or create tag: %w", err)
	}

	if created {
		s.logger.Info("tag created", "tag_id", tag.ID, "user_id", principal.UserID)
	}
	return tag, created, nil
}

// List returns all of the caller's tags ordered by name.
func (s *TagService) List(ctx context.Context, principal domain.Principal) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx, principal.UserID)
}

// Get returns one of the caller's tags.
func (s *TagService) Get(ctx context.Context, principal domain.Principal, tagID string) (*domain.Tag, error) {
	return s.store.GetTag(ctx, principal.UserID, tagID)
}

// Rename renames a tag. The new name is normalized; renaming onto an
// existing tag is a conflict rather than a merge.
func (s *TagService) Rename(ctx context.Context, principal domain.Principal, tagID, rawName string) (*domain.Tag, error) {
	name := normalize.TagName(rawName)
	if name == "" {
		return nil, domainerrors.Validation("tag name must not be empty")
	}

	tag, err := s.store.RenameTag(ctx, principal.UserID, tagID, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag renamed", "tag_id", tagID, "user_id", principal.UserID)
	return tag, nil
}

// Delete removes a tag everywhere: the tag is detached from every bookmark
// and deleted. No bookmark is removed.
func (s *TagService) Delete(ctx context.Context, principal domain.Principal, tagID string) error {
	if err := s.store.DetachAndDeleteTag(ctx, principal.UserID, tagID); err != nil {
		return err
	}
	s.logger.Info("tag deleted", "tag_id", tagID, "user_id", principal.UserID)
	return nil
}
