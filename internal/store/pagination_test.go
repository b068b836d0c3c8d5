package store

import "testing"

func TestListParams_Validate(t *testing.T) {
	tests := []struct {
		name         string
		in           ListParams
		wantPage     int
		wantPageSize int
	}{
		{"zero values", ListParams{}, 1, DefaultPageSize},
		{"negative page", ListParams{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size", ListParams{Page: 2, PageSize: 5000}, 2, MaxPageSize},
		{"valid", ListParams{Page: 3, PageSize: 50}, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Validate()
			if tt.in.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", tt.in.Page, tt.wantPage)
			}
			if tt.in.PageSize != tt.wantPageSize {
				t.Errorf("PageSize: got %d, want %d", tt.in.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestListParams_Offset(t *testing.T) {
	p := ListParams{Page: 3, PageSize: 20}
	if got := p.Offset(); got != 40 {
		t.Errorf("Offset: got %d, want 40", got)
	}
}

func TestNewPageMetadata(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		m := NewPageMetadata(45, 2, 20)
		if m.TotalPages != 3 {
			t.Errorf("TotalPages: got %d, want 3", m.TotalPages)
		}
		if !m.HasNextPage || m.NextPage == nil || *m.NextPage != 3 {
			t.Errorf("NextPage: got %+v", m)
		}
		if !m.HasPreviousPage || m.PreviousPage == nil || *m.PreviousPage != 1 {
			t.Errorf("PreviousPage: got %+v", m)
		}
	})

	t.Run("first page", func(t *testing.T) {
		m := NewPageMetadata(45, 1, 20)
		if m.HasPreviousPage || m.PreviousPage != nil {
			t.Errorf("first page should have no previous: %+v", m)
		}
		if !m.HasNextPage {
			t.Error("first page of 3 should have next")
		}
	})

	t.Run("last page", func(t *testing.T) {
		m := NewPageMetadata(45, 3, 20)
		if m.HasNextPage || m.NextPage != nil {
			t.Errorf("last page should have no next: %+v", m)
		}
		if !m.HasPreviousPage {
			t.Error("last page should have previous")
		}
	})

	t.Run("empty result", func(t *testing.T) {
		m := NewPageMetadata(0, 1, 20)
		if m.TotalPages != 0 || m.HasNextPage || m.HasPreviousPage {
			t.Errorf("empty result metadata wrong: %+v", m)
		}
	})

	t.Run("exact multiple", func(t *testing.T) {
		m := NewPageMetadata(40, 2, 20)
		if m.TotalPages != 2 {
			t.Errorf("TotalPages: got %d, want 2", m.TotalPages)
		}
		if m.HasNextPage {
			t.Error("page 2 of 2 should have no next")
		}
	})
}
