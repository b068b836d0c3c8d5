package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

const collectionColumns = `id, owner_id, name, is_system, created_at, updated_at`

// scanCollection scans a collection row from either *sql.Row or *sql.Rows.
func scanCollection(scanner interface{ Scan(...any) error }) (*domain.Collection, error) {
	var c domain.Collection
	var isSystem int
	var createdAt, updatedAt string

	err := scanner.Scan(&c.ID, &c.OwnerID, &c.Name, &isSystem, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.IsSystem = isSystem != 0
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &c, nil
}

// CreateCollection inserts a non-system collection.
func (s *Store) CreateCollection(ctx context.Context, coll *domain.Collection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (id, owner_id, name, is_system, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		coll.ID, coll.OwnerID, coll.Name, boolToInt(coll.IsSystem),
		formatTime(coll.CreatedAt), formatTime(coll.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(
				fmt.Sprintf("collection %q already exists", coll.Name))
		}
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

// GetCollection returns the owner's collection with the given ID.
func (s *Store) GetCollection(ctx context.Context, ownerID, collectionID string) (*domain.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = ? AND owner_id = ?`,
		collectionID, ownerID)

	coll, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("collection not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}
	return coll, nil
}

// GetSystemCollection returns the owner's system collection. Its absence is
// a data-integrity bug, not a user error.
func (s *Store) GetSystemCollection(ctx context.Context, ownerID string) (*domain.Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE owner_id = ? AND is_system = 1`,
		ownerID)

	coll, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSystemCollectionMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get system collection: %w", err)
	}
	return coll, nil
}

// ListCollections returns all of the owner's collections, system collection
// first, then by name.
func (s *Store) ListCollections(ctx context.Context, ownerID string) ([]*domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM collections
		 WHERE owner_id = ? ORDER BY is_system DESC, name`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	colls := make([]*domain.Collection, 0)
	for rows.Next() {
		coll, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		colls = append(colls, coll)
	}
	return colls, rows.Err()
}

// RenameCollection renames the owner's collection. The system collection
// cannot be renamed; the is_system predicate makes that check race-free.
func (s *Store) RenameCollection(ctx context.Context, ownerID, collectionID, newName string) (*domain.Collection, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE collections SET name = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND is_system = 0`,
		newName, formatTime(time.Now().UTC()), collectionID, ownerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrAlreadyExists.WithMessage(
				fmt.Sprintf("collection %q already exists", newName))
		}
		return nil, fmt.Errorf("rename collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a protected system collection from a missing one.
		coll, getErr := s.GetCollection(ctx, ownerID, collectionID)
		if getErr != nil {
			return nil, store.ErrNotFound.WithMessage("collection not found")
		}
		if coll.IsSystem {
			return nil, store.ErrForbidden.WithMessage("system collection cannot be renamed")
		}
		return nil, store.ErrNotFound.WithMessage("collection not found")
	}
	return s.GetCollection(ctx, ownerID, collectionID)
}

// DeleteCollectionCascade deletes a collection in one transaction. Every
// bookmark linked to it gains a link to the owner's system collection
// (skipping bookmarks already linked there), the old links are dropped, and
// the collection row is removed.
func (s *Store) DeleteCollectionCascade(ctx context.Context, ownerID, collectionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT is_system FROM collections WHERE id = ? AND owner_id = ?`,
		collectionID, ownerID)
	var isSystem int
	if err := row.Scan(&isSystem); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound.WithMessage("collection not found")
		}
		return fmt.Errorf("check collection: %w", err)
	}
	if isSystem != 0 {
		return store.ErrForbidden.WithMessage("system collection cannot be deleted")
	}

	row = tx.QueryRowContext(ctx,
		`SELECT id FROM collections WHERE owner_id = ? AND is_system = 1`, ownerID)
	var systemID string
	if err := row.Scan(&systemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrSystemCollectionMissing
		}
		return fmt.Errorf("find system collection: %w", err)
	}

	// Reassign: each linked bookmark gains a system-collection link unless
	// it already has one.
	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO bookmark_collections (bookmark_id, collection_id, created_at)
		SELECT bookmark_id, ?, ? FROM bookmark_collections WHERE collection_id = ?`,
		systemID, formatTime(time.Now().UTC()), collectionID,
	)
	if err != nil {
		return fmt.Errorf("reassign bookmarks: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookmark_collections WHERE collection_id = ?`, collectionID); err != nil {
		return fmt.Errorf("drop collection links: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM collections WHERE id = ?`, collectionID); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}

	return tx.Commit()
}
