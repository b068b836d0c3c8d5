// Package normalize provides canonical forms for user-supplied names.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TagName returns the canonical form of a tag name: NFC-normalized,
// surrounding whitespace trimmed, and case folded to lowercase.
// The result is the per-owner uniqueness key for tags.
func TagName(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}

// CollectionName returns the canonical form of a collection name.
// Collection names keep their case as stored; only surrounding whitespace
// is trimmed after NFC normalization.
func CollectionName(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}
