package store

import (
	"context"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/domain"
)

// Store is the persistence interface for the Markhaven server.
// It is implemented by the SQLite store; services depend on this interface
// so they can be exercised against any conforming implementation.
//
// Ownership checks are part of the mutation's query predicate, not a
// separate read, so concurrent requests from different users cannot race a
// check against a write. Cascading operations run inside a single
// transaction.
type Store interface {
	UserStore
	SessionStore
	BookmarkStore
	TagStore
	CollectionStore

	// Close closes the underlying database handle.
	Close() error
}

// UserStore owns user rows and account seeding.
type UserStore interface {
	// CreateUser inserts the user and, in the same transaction, seeds the
	// system collection and the default tags. Returns ErrAlreadyExists on a
	// duplicate email.
	CreateUser(ctx context.Context, user *domain.User, system *domain.Collection, defaults []*domain.Tag) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// SetResetToken stores a pending password-reset token hash with expiry.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// GetUserByResetTokenHash looks up a user by a pending reset token hash.
	GetUserByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	// UpdatePassword replaces the password hash and clears any reset state.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// SessionStore owns refresh-token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	// DeleteExpiredSessions removes sessions expired before now and returns
	// how many were deleted.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// BookmarkStore owns bookmark rows and both association edges.
type BookmarkStore interface {
	// CreateBookmark inserts the bookmark and its initial tag/collection
	// links in one transaction. Returns ErrAlreadyExists when the owner
	// already has a bookmark with the same URL.
	CreateBookmark(ctx context.Context, bm *domain.Bookmark, tagIDs, collectionIDs []string) error
	// GetBookmark returns the bookmark with its tags and collections loaded.
	// Returns ErrNotFound when absent or not owned by ownerID.
	GetBookmark(ctx context.Context, ownerID, bookmarkID string) (*domain.Bookmark, error)
	GetBookmarkByURL(ctx context.Context, ownerID, url string) (*domain.Bookmark, error)
	// GetLatestBookmark returns the owner's most recently created bookmark
	// with links loaded, or ErrNotFound when the owner has none.
	GetLatestBookmark(ctx context.Context, ownerID string) (*domain.Bookmark, error)
	ListBookmarks(ctx context.Context, ownerID string, params ListParams) (*PaginatedResult[*domain.Bookmark], error)
	// UpdateBookmark patches scalar fields and applies replace-set
	// association updates in one transaction. A nil tagIDs or collectionIDs
	// leaves that relation untouched; an empty slice clears it. The final
	// link sets are applied as a symmetric difference against current links,
	// so unchanged links are never dropped and re-added.
	UpdateBookmark(ctx context.Context, bm *domain.Bookmark, tagIDs, collectionIDs *[]string) error
	// DeleteBookmark removes the bookmark; link rows go with it via cascade.
	DeleteBookmark(ctx context.Context, ownerID, bookmarkID string) error
}

// TagStore owns per-user tags and the bookmark↔tag edge's cleanup.
type TagStore interface {
	// CreateTag inserts a tag. Returns ErrAlreadyExists on a duplicate
	// (owner, name) pair.
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, ownerID, tagID string) (*domain.Tag, error)
	GetTagByName(ctx context.Context, ownerID, name string) (*domain.Tag, error)
	ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error)
	// FindOrCreateTag finds an existing tag by normalized name or creates
	// one. Race-tolerant: a unique-constraint failure on insert is retried
	// as a lookup. Returns (tag, created, error).
	FindOrCreateTag(ctx context.Context, ownerID, name string) (*domain.Tag, bool, error)
	// RenameTag renames a tag; the new name must already be normalized.
	// Returns ErrAlreadyExists when the name collides with another tag.
	RenameTag(ctx context.Context, ownerID, tagID, newName string) (*domain.Tag, error)
	// DetachAndDeleteTag removes the tag's links from every bookmark and
	// deletes the tag row, in one transaction. Returns ErrNotFound when the
	// tag doesn't belong to the owner.
	DetachAndDeleteTag(ctx context.Context, ownerID, tagID string) error
}

// CollectionStore owns per-user collections, the system collection
// invariant, and the delete cascade.
type CollectionStore interface {
	// CreateCollection inserts a collection. Returns ErrAlreadyExists on a
	// duplicate (owner, name) pair.
	CreateCollection(ctx context.Context, coll *domain.Collection) error
	GetCollection(ctx context.Context, ownerID, collectionID string) (*domain.Collection, error)
	// GetSystemCollection returns the owner's system collection, or
	// ErrSystemCollectionMissing if it is absent (a data-integrity bug).
	GetSystemCollection(ctx context.Context, ownerID string) (*domain.Collection, error)
	ListCollections(ctx context.Context, ownerID string) ([]*domain.Collection, error)
	// RenameCollection renames a collection. Returns ErrForbidden for the
	// system collection and ErrAlreadyExists on a name collision.
	RenameCollection(ctx context.Context, ownerID, collectionID, newName string) (*domain.Collection, error)
	// DeleteCollectionCascade deletes a collection in one transaction:
	// every bookmark linked to it is linked to the owner's system collection
	// (no duplicate link if already present), the old links are dropped, and
	// the collection row is removed. Returns ErrForbidden for the system
	// collection, ErrNotFound when not owned, and ErrSystemCollectionMissing
	// when the reassignment target is absent.
	DeleteCollectionCascade(ctx context.Context, ownerID, collectionID string) error
}
