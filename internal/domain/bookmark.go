package domain

import (
	"time"
	"unicode/utf8"
)

// Limits applied to bookmark metadata fields.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1024
	// FallbackTitleLength is how much of the URL is used as the title when
	// metadata resolution yields nothing.
	FallbackTitleLength = 100
)

// Bookmark represents a saved URL with its fetched metadata.
// (OwnerID, URL) is unique: a user cannot save the same URL twice, but
// different users may save the same URL independently.
//
// A bookmark participates in two independent many-to-many relations,
// Bookmark↔Tag and Bookmark↔Collection. Tags and Collections carry the
// currently linked rows when loaded through the store.
type Bookmark struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tags        []*Tag        `json:"tags"`
	Collections []*Collection `json:"collections"`
}

// Touch updates the UpdatedAt timestamp.
func (b *Bookmark) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// FallbackTitle derives a title from the URL when metadata resolution
// produced none: the first FallbackTitleLength runes of the URL.
func FallbackTitle(url string) string {
	return TruncateRunes(url, FallbackTitleLength)
}

// TruncateRunes shortens s to at most n runes without splitting a rune.
func TruncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
