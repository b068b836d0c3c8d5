package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/store"
)

const bookmarkColumns = `id, owner_id, url, title, description, image_url, created_at, updated_at`

// scanBookmark scans a bookmark row from either *sql.Row or *sql.Rows.
func scanBookmark(scanner interface{ Scan(...any) error }) (*domain.Bookmark, error) {
	var b domain.Bookmark
	var createdAt, updatedAt string

	err := scanner.Scan(
		&b.ID, &b.OwnerID, &b.URL, &b.Title, &b.Description, &b.ImageURL,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &b, nil
}

// CreateBookmark inserts the bookmark and its initial links in one
// transaction.
func (s *Store) CreateBookmark(ctx context.Context, bm *domain.Bookmark, tagIDs, collectionIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookmarks (id, owner_id, url, title, description, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bm.ID, bm.OwnerID, bm.URL, bm.Title, bm.Description, bm.ImageURL,
		formatTime(bm.CreatedAt), formatTime(bm.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("bookmark for this URL already exists")
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}

	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO bookmark_tags (bookmark_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			bm.ID, tagID, now,
		)
		if err != nil {
			return fmt.Errorf("link tag %s: %w", tagID, err)
		}
	}
	for _, collID := range collectionIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO bookmark_collections (bookmark_id, collection_id, created_at)
			VALUES (?, ?, ?)`,
			bm.ID, collID, now,
		)
		if err != nil {
			return fmt.Errorf("link collection %s: %w", collID, err)
		}
	}

	return tx.Commit()
}

// GetBookmark returns the owner's bookmark with tags and collections loaded.
func (s *Store) GetBookmark(ctx context.Context, ownerID, bookmarkID string) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ? AND owner_id = ?`,
		bookmarkID, ownerID)

	bm, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("bookmark not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	if err := s.loadLinks(ctx, []*domain.Bookmark{bm}); err != nil {
		return nil, err
	}
	return bm, nil
}

// GetBookmarkByURL returns the owner's bookmark for the exact URL.
func (s *Store) GetBookmarkByURL(ctx context.Context, ownerID, url string) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE owner_id = ? AND url = ?`,
		ownerID, url)

	bm, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("bookmark not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark by url: %w", err)
	}
	if err := s.loadLinks(ctx, []*domain.Bookmark{bm}); err != nil {
		return nil, err
	}
	return bm, nil
}

// GetLatestBookmark returns the owner's most recently created bookmark.
func (s *Store) GetLatestBookmark(ctx context.Context, ownerID string) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks
		 WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		ownerID)

	bm, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("no bookmarks")
	}
	if err != nil {
		return nil, fmt.Errorf("get latest bookmark: %w", err)
	}
	if err := s.loadLinks(ctx, []*domain.Bookmark{bm}); err != nil {
		return nil, err
	}
	return bm, nil
}

// ListBookmarks returns a page of the owner's bookmarks, newest first, with
// tags and collections loaded. Filters combine with AND.
func (s *Store) ListBookmarks(ctx context.Context, ownerID string, params store.ListParams) (*store.PaginatedResult[*domain.Bookmark], error) {
	params.Validate()

	where := []string{"b.owner_id = ?"}
	args := []any{ownerID}

	if params.Search != "" {
		pattern := "%" + escapeLike(params.Search) + "%"
		where = append(where,
			`(b.title LIKE ? ESCAPE '\' OR b.description LIKE ? ESCAPE '\' OR b.url LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if params.CollectionID != "" {
		where = append(where,
			`EXISTS (SELECT 1 FROM bookmark_collections bc
			         WHERE bc.bookmark_id = b.id AND bc.collection_id = ?)`)
		args = append(args, params.CollectionID)
	}
	if params.TagID != "" {
		where = append(where,
			`EXISTS (SELECT 1 FROM bookmark_tags bt
			         WHERE bt.bookmark_id = b.id AND bt.tag_id = ?)`)
		args = append(args, params.TagID)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks b WHERE `+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count bookmarks: %w", err)
	}

	query := `SELECT b.id, b.owner_id, b.url, b.title, b.description, b.image_url,
		b.created_at, b.updated_at
		FROM bookmarks b WHERE ` + whereClause + `
		ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, params.PageSize, params.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]*domain.Bookmark, 0, params.PageSize)
	for rows.Next() {
		bm, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, bm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadLinks(ctx, bookmarks); err != nil {
		return nil, err
	}

	return &store.PaginatedResult[*domain.Bookmark]{
		Items:    bookmarks,
		Metadata: store.NewPageMetadata(total, params.Page, params.PageSize),
	}, nil
}

// UpdateBookmark patches scalar fields and applies replace-set association
// updates in one transaction. A nil tagIDs or collectionIDs leaves that
// relation untouched; an empty slice clears it. Links are reconciled as a
// symmetric difference, so unchanged rows keep their created_at.
func (s *Store) UpdateBookmark(ctx context.Context, bm *domain.Bookmark, tagIDs, collectionIDs *[]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bookmarks SET url = ?, title = ?, description = ?, image_url = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		bm.URL, bm.Title, bm.Description, bm.ImageURL, formatTime(bm.UpdatedAt),
		bm.ID, bm.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("bookmark for this URL already exists")
		}
		return fmt.Errorf("update bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("bookmark not found")
	}

	if tagIDs != nil {
		err = reconcileLinks(ctx, tx, "bookmark_tags", "tag_id", bm.ID, *tagIDs)
		if err != nil {
			return fmt.Errorf("reconcile tags: %w", err)
		}
	}
	if collectionIDs != nil {
		err = reconcileLinks(ctx, tx, "bookmark_collections", "collection_id", bm.ID, *collectionIDs)
		if err != nil {
			return fmt.Errorf("reconcile collections: %w", err)
		}
	}

	return tx.Commit()
}

// reconcileLinks replaces the link set for one bookmark relation: rows not
// in want are deleted, rows missing from the table are inserted, and rows in
// both are left alone.
func reconcileLinks(ctx context.Context, tx *sql.Tx, table, column, bookmarkID string, want []string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+column+` FROM `+table+` WHERE bookmark_id = ?`, bookmarkID)
	if err != nil {
		return fmt.Errorf("read current links: %w", err)
	}
	current := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		current[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	wanted := make(map[string]bool, len(want))
	for _, id := range want {
		wanted[id] = true
	}

	for id := range current {
		if !wanted[id] {
			_, err := tx.ExecContext(ctx,
				`DELETE FROM `+table+` WHERE bookmark_id = ? AND `+column+` = ?`,
				bookmarkID, id)
			if err != nil {
				return fmt.Errorf("remove link %s: %w", id, err)
			}
		}
	}

	now := formatTime(time.Now().UTC())
	for id := range wanted {
		if !current[id] {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO `+table+` (bookmark_id, `+column+`, created_at) VALUES (?, ?, ?)`,
				bookmarkID, id, now)
			if err != nil {
				return fmt.Errorf("add link %s: %w", id, err)
			}
		}
	}

	return nil
}

// DeleteBookmark removes the owner's bookmark. Link rows go with it via
// ON DELETE CASCADE.
func (s *Store) DeleteBookmark(ctx context.Context, ownerID, bookmarkID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = ? AND owner_id = ?`, bookmarkID, ownerID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("bookmark not found")
	}
	return nil
}

// loadLinks populates Tags and Collections for the given bookmarks with one
// query per relation.
func (s *Store) loadLinks(ctx context.Context, bookmarks []*domain.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Bookmark, len(bookmarks))
	placeholders := make([]string, len(bookmarks))
	ids := make([]any, len(bookmarks))
	for i, bm := range bookmarks {
		bm.Tags = make([]*domain.Tag, 0)
		bm.Collections = make([]*domain.Collection, 0)
		byID[bm.ID] = bm
		placeholders[i] = "?"
		ids[i] = bm.ID
	}
	in := strings.Join(placeholders, ", ")

	rows, err := s.db.QueryContext(ctx, `
		SELECT bt.bookmark_id, t.id, t.owner_id, t.name, t.created_at, t.updated_at
		FROM bookmark_tags bt JOIN tags t ON t.id = bt.tag_id
		WHERE bt.bookmark_id IN (`+in+`) ORDER BY t.name`, ids...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for rows.Next() {
		var bookmarkID string
		var t domain.Tag
		var createdAt, updatedAt string
		if err := rows.Scan(&bookmarkID, &t.ID, &t.OwnerID, &t.Name, &createdAt, &updatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan tag link: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			rows.Close()
			return err
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			rows.Close()
			return err
		}
		if bm, ok := byID[bookmarkID]; ok {
			bm.Tags = append(bm.Tags, &t)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT bc.bookmark_id, c.id, c.owner_id, c.name, c.is_system, c.created_at, c.updated_at
		FROM bookmark_collections bc JOIN collections c ON c.id = bc.collection_id
		WHERE bc.bookmark_id IN (`+in+`) ORDER BY c.is_system DESC, c.name`, ids...)
	if err != nil {
		return fmt.Errorf("load collections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bookmarkID string
		var c domain.Collection
		var isSystem int
		var createdAt, updatedAt string
		if err := rows.Scan(&bookmarkID, &c.ID, &c.OwnerID, &c.Name, &isSystem, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("scan collection link: %w", err)
		}
		c.IsSystem = isSystem != 0
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}
		if bm, ok := byID[bookmarkID]; ok {
			bm.Collections = append(bm.Collections, &c)
		}
	}
	return rows.Err()
}

// escapeLike escapes LIKE wildcards in user-supplied search input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
