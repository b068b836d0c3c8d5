package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

const tagColumns = `id, owner_id, name, created_at, updated_at`

// scanTag scans a tag row from either *sql.Row or *sql.Rows.
func scanTag(scanner interface{ Scan(...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	var createdAt, updatedAt string

	err := scanner.Scan(&t.ID, &t.OwnerID, &t.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &t, nil
}

// CreateTag inserts a tag. The name must already be normalized.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, owner_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		tag.ID, tag.OwnerID, tag.Name,
		formatTime(tag.CreatedAt), formatTime(tag.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(
				fmt.Sprintf("tag %q already exists", tag.Name))
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// GetTag returns the owner's tag with the given ID.
func (s *Store) GetTag(ctx context.Context, ownerID, tagID string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ? AND owner_id = ?`,
		tagID, ownerID)

	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("tag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// GetTagByName returns the owner's tag with the given normalized name.
func (s *Store) GetTagByName(ctx context.Context, ownerID, name string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? AND name = ?`,
		ownerID, name)

	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("tag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get tag by name: %w", err)
	}
	return tag, nil
}

// ListTags returns all of the owner's tags ordered by name.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? ORDER BY name`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// FindOrCreateTag finds an existing tag by normalized name or creates one.
// A concurrent insert of the same name surfaces as a unique violation, which
// is resolved by re-reading the winner's row; the caller never sees the race.
func (s *Store) FindOrCreateTag(ctx context.Context, ownerID, name string) (*domain.Tag, bool, error) {
	tag, err := s.GetTagByName(ctx, ownerID, name)
	if err == nil {
		return tag, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}
	now := time.Now().UTC()
	tag = &domain.Tag{
		ID:        "tag-" + id,
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.CreateTag(ctx, tag)
	if err == nil {
		return tag, true, nil
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		tag, err = s.GetTagByName(ctx, ownerID, name)
		if err != nil {
			return nil, false, fmt.Errorf("re-read tag after conflict: %w", err)
		}
		return tag, false, nil
	}
	return nil, false, err
}

// RenameTag renames the owner's tag. The new name must already be normalized.
func (s *Store) RenameTag(ctx context.Context, ownerID, tagID, newName string) (*domain.Tag, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		newName, formatTime(time.Now().UTC()), tagID, ownerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrAlreadyExists.WithMessage(
				fmt.Sprintf("tag %q already exists", newName))
		}
		return nil, fmt.Errorf("rename tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, store.ErrNotFound.WithMessage("tag not found")
	}
	return s.GetTag(ctx, ownerID, tagID)
}

// DetachAndDeleteTag removes the tag's links from every bookmark and deletes
// the tag row, in one transaction. No bookmark is deleted.
func (s *Store) DetachAndDeleteTag(ctx context.Context, ownerID, tagID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM tags WHERE id = ? AND owner_id = ?`, tagID, ownerID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("tag not found")
	}

	// Link rows go with the tag via ON DELETE CASCADE; the explicit delete
	// keeps the behavior correct even with foreign keys off.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookmark_tags WHERE tag_id = ?`, tagID); err != nil {
		return fmt.Errorf("detach tag links: %w", err)
	}

	return tx.Commit()
}
