package store

// Pagination defaults and bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListParams contains bookmark listing parameters: page-based pagination
// plus optional filters.
type ListParams struct {
	Page         int    // 1-based page number
	PageSize     int    // items per page (defaults to 20, max 100)
	Search       string // substring match over title, description, and url
	CollectionID string // only bookmarks linked to this collection
	TagID        string // only bookmarks linked to this tag
}

// Validate checks and corrects pagination parameters.
func (p *ListParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageMetadata describes a page of results.
type PageMetadata struct {
	TotalCount      int  `json:"totalCount"`
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	NextPage        *int `json:"nextPage"`
	PreviousPage    *int `json:"previousPage"`
}

// NewPageMetadata computes page metadata from a total count and the
// requested page/pageSize.
func NewPageMetadata(totalCount, page, pageSize int) PageMetadata {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}

	m := PageMetadata{
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}

	if page < totalPages {
		next := page + 1
		m.HasNextPage = true
		m.NextPage = &next
	}
	if page > 1 && totalCount > 0 {
		prev := page - 1
		m.HasPreviousPage = true
		m.PreviousPage = &prev
	}

	return m
}

// PaginatedResult contains a page of items and its metadata.
type PaginatedResult[T any] struct {
	Items    []T          `json:"items"`
	Metadata PageMetadata `json:"metadata"`
}
