package scrape

import (
	"net/url"
	"strings"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url %q: %v", raw, err)
	}
	return u
}

func TestExtract_OpenGraphWins(t *testing.T) {
	doc := `<html><head>
		<title>Document Title</title>
		<meta name="description" content="Named description">
		<meta name="twitter:title" content="Twitter Title">
		<meta property="og:title" content="OG Title">
		<meta property="og:description" content="OG description">
		<meta property="og:image" content="https://cdn.example.com/img.png">
	</head><body></body></html>`

	meta := Extract(strings.NewReader(doc), mustParseURL(t, "https://example.com/page"))

	if meta.Title != "OG Title" {
		t.Errorf("title: got %q, want OG Title", meta.Title)
	}
	if meta.Description != "OG description" {
		t.Errorf("description: got %q", meta.Description)
	}
	if meta.ImageURL != "https://cdn.example.com/img.png" {
		t.Errorf("image: got %q", meta.ImageURL)
	}
}

func TestExtract_FallbackOrder(t *testing.T) {
	doc := `<html><head>
		<title>  Document Title  </title>
		<meta name="twitter:description" content="Twitter description">
	</head><body></body></html>`

	meta := Extract(strings.NewReader(doc), nil)

	if meta.Title != "Document Title" {
		t.Errorf("title should fall back to <title>: got %q", meta.Title)
	}
	if meta.Description != "Twitter description" {
		t.Errorf("description should fall back to twitter card: got %q", meta.Description)
	}
	if meta.ImageURL != "" {
		t.Errorf("image should be empty: got %q", meta.ImageURL)
	}
}

func TestExtract_NamedMetaBeatsTwitter(t *testing.T) {
	doc := `<html><head>
		<meta name="twitter:description" content="Twitter description">
		<meta name="description" content="Named description">
	</head></html>`

	meta := Extract(strings.NewReader(doc), nil)
	if meta.Description != "Named description" {
		t.Errorf("description: got %q, want named meta", meta.Description)
	}
}

func TestExtract_RelativeImageResolved(t *testing.T) {
	doc := `<html><head>
		<meta property="og:image" content="/assets/cover.jpg">
	</head></html>`

	meta := Extract(strings.NewReader(doc), mustParseURL(t, "https://example.com/articles/1"))
	if meta.ImageURL != "https://example.com/assets/cover.jpg" {
		t.Errorf("image: got %q", meta.ImageURL)
	}
}

func TestExtract_RelativeImageWithoutBaseDropped(t *testing.T) {
	doc := `<html><head>
		<meta property="og:image" content="/assets/cover.jpg">
	</head></html>`

	meta := Extract(strings.NewReader(doc), nil)
	if meta.ImageURL != "" {
		t.Errorf("unresolvable image should be dropped: got %q", meta.ImageURL)
	}
}

func TestExtract_NonHTTPImageDropped(t *testing.T) {
	doc := `<html><head>
		<meta property="og:image" content="data:image/png;base64,AAAA">
	</head></html>`

	meta := Extract(strings.NewReader(doc), mustParseURL(t, "https://example.com"))
	if meta.ImageURL != "" {
		t.Errorf("non-http image should be dropped: got %q", meta.ImageURL)
	}
}

func TestExtract_TruncatesLongFields(t *testing.T) {
	long := strings.Repeat("x", 2000)
	doc := `<html><head>
		<meta property="og:title" content="` + long + `">
		<meta property="og:description" content="` + long + `">
	</head></html>`

	meta := Extract(strings.NewReader(doc), nil)
	if len(meta.Title) != 255 {
		t.Errorf("title length: got %d, want 255", len(meta.Title))
	}
	if len(meta.Description) != 1024 {
		t.Errorf("description length: got %d, want 1024", len(meta.Description))
	}
}

func TestExtract_EmptyAndMalformed(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":      "",
		"not html":   "just some text",
		"broken":     "<html><head><meta property=og:title content=<><title>x",
		"empty meta": `<html><head><meta property="og:title" content="  "></head></html>`,
	} {
		t.Run(name, func(t *testing.T) {
			// Must not panic; empty content is ignored.
			Extract(strings.NewReader(doc), nil)
		})
	}
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"", true},
		{"application/json", false},
		{"image/png", false},
	}
	for _, tt := range tests {
		if got := isHTML(tt.contentType); got != tt.want {
			t.Errorf("isHTML(%q): got %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
