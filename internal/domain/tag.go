package domain

import "time"

// Tag is a per-user label for bookmarks. Name is stored in normalized form
// (trimmed, lowercased); (OwnerID, Name) is unique. Many-to-many with Bookmark.
type Tag struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
