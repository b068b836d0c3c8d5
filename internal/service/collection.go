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
	"github.com/markhavenapp/markhaven-server/internal/store"
)

// CollectionService orchestrates per-user collection operations and guards
// the system collection.
type CollectionService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store store.Store, logger *slog.Logger) *CollectionService {
	return &CollectionService{store: store, logger: logger}
}

// Create creates a collection. Names keep their case but are trimmed and
// NFC-normalized; duplicates are a conflict.
func (s *CollectionService) Create(ctx context.Context, principal domain.Principal, rawName string) (*domain.Collection, error) {
	name := normalize.CollectionName(rawName)
	if name == "" {
		return nil, domainerrors.Validation("collection name must not be empty")
	}

	collID, err := id.Generate("col")
	if err != nil {
		return nil, fmt.Errorf("generate collection ID: %w", err)
	}
	now := time.Now().UTC()
	coll := &domain.Collection{
		ID:        collID,
		OwnerID:   principal.UserID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateCollection(ctx, coll); err != nil {
		return nil, err
	}

	s.logger.Info("collection created", "collection_id", coll.ID, "user_id", principal.UserID)
	return coll, nil
}

// List returns all of the caller's collections, system collection first.
func (s *CollectionService) List(ctx context.Context, principal domain.Principal) ([]*domain.Collection, error) {
	return s.store.ListCollections(ctx, principal.UserID)
}

// Get returns one of the caller's collections.
func (s *CollectionService) Get(ctx context.Context, principal domain.Principal, collectionID string) (*domain.Collection, error) {
	return s.store.GetCollection(ctx, principal.UserID, collectionID)
}

// Rename renames a collection. The system collection is protected.
func (s *CollectionService) Rename(ctx context.Context, principal domain.Principal, collectionID, rawName string) (*domain.Collection, error) {
	name := normalize.CollectionName(rawName)
	if name == "" {
		return nil, domainerrors.Validation("collection name must not be empty")
	}

	coll, err := s.store.RenameCollection(ctx, principal.UserID, collectionID, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection renamed", "collection_id", collectionID, "user_id", principal.UserID)
	return coll, nil
}

// Delete removes a collection. Every bookmark linked to it ends up linked to
// the system collection instead; no bookmark is deleted. The system
// collection itself cannot be deleted.
func (s *CollectionService) Delete(ctx context.Context, principal domain.Principal, collectionID string) error {
	if err := s.store.DeleteCollectionCascade(ctx, principal.UserID, collectionID); err != nil {
		return err
	}
	s.logger.Info("collection deleted", "collection_id", collectionID, "user_id", principal.UserID)
	return nil
}
