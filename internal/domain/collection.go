package domain

import "time"

// SystemCollectionName is the name of the protected, auto-created collection
// every user receives at registration. It is the reassignment target when
// another collection is deleted.
const SystemCollectionName = "Unsorted"

// Collection is a per-user grouping of bookmarks. (OwnerID, Name) is unique
// (case-sensitive as stored, trimmed). Exactly one collection per user has
// IsSystem set; it can be neither renamed nor deleted. Many-to-many with
// Bookmark.
type Collection struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	IsSystem  bool      `json:"is_system"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (c *Collection) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
