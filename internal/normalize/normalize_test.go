package normalize

import "testing"

func TestTagName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Work ", "work"},
		{" work", "work"},
		{"WORK", "work"},
		{"read later", "read later"},
		{"", ""},
		{"   ", ""},
		{"\tGoLang\n", "golang"},
	}

	for _, tt := range tests {
		if got := TagName(tt.in); got != tt.want {
			t.Errorf("TagName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTagName_Idempotent(t *testing.T) {
	inputs := []string{"Work ", " WORK", "work"}
	for _, in := range inputs {
		once := TagName(in)
		twice := TagName(once)
		if once != twice {
			t.Errorf("TagName not idempotent for %q: %q != %q", in, once, twice)
		}
		if once != "work" {
			t.Errorf("TagName(%q) = %q, want %q", in, once, "work")
		}
	}
}

func TestCollectionName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" Reading ", "Reading"},
		{"Reading", "Reading"},
		{"UPPER case", "UPPER case"},
	}

	for _, tt := range tests {
		if got := CollectionName(tt.in); got != tt.want {
			t.Errorf("CollectionName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
