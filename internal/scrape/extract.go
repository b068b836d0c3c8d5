// Package scrape fetches and extracts page metadata for bookmarked URLs.
// Resolution is strictly best-effort: a page that cannot be fetched or
// parsed yields empty metadata, never an error.
package scrape

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/markhavenapp/markhaven-server/internal/domain"
)

// Metadata is what page inspection yields. Any field may be empty.
type Metadata struct {
	Title       string
	Description string
	ImageURL    string
}

// Extract parses an HTML document and pulls out title, description, and
// preview image. Sources are tried in a fixed order per field: OpenGraph
// properties win, then named meta tags, then Twitter card tags, then the
// document itself (<title>, nothing for images). base resolves relative
// image URLs; a relative image that cannot be resolved is dropped.
func Extract(r io.Reader, base *url.URL) Metadata {
	doc, err := html.Parse(r)
	if err != nil {
		// The tokenizer recovers from almost anything; a hard error means
		// the reader itself failed. Treat as no metadata.
		return Metadata{}
	}

	var meta Metadata
	var docTitle string

	// rank per field: lower wins. 1 = OpenGraph, 2 = named meta, 3 = Twitter.
	titleRank, descRank, imageRank := 4, 4, 4

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "title":
				if docTitle == "" {
					docTitle = textContent(n)
				}
			case "meta":
				key := strings.ToLower(attr(n, "property"))
				if key == "" {
					key = strings.ToLower(attr(n, "name"))
				}
				content := strings.TrimSpace(attr(n, "content"))
				if content == "" {
					break
				}

				switch key {
				case "og:title":
					if titleRank > 1 {
						meta.Title, titleRank = content, 1
					}
				case "title":
					if titleRank > 2 {
						meta.Title, titleRank = content, 2
					}
				case "twitter:title":
					if titleRank > 3 {
						meta.Title, titleRank = content, 3
					}
				case "og:description":
					if descRank > 1 {
						meta.Description, descRank = content, 1
					}
				case "description":
					if descRank > 2 {
						meta.Description, descRank = content, 2
					}
				case "twitter:description":
					if descRank > 3 {
						meta.Description, descRank = content, 3
					}
				case "og:image":
					if imageRank > 1 {
						meta.ImageURL, imageRank = content, 1
					}
				case "twitter:image":
					if imageRank > 3 {
						meta.ImageURL, imageRank = content, 3
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = docTitle
	}

	meta.Title = domain.TruncateRunes(strings.TrimSpace(meta.Title), domain.MaxTitleLength)
	meta.Description = domain.TruncateRunes(strings.TrimSpace(meta.Description), domain.MaxDescriptionLength)
	meta.ImageURL = resolveImageURL(meta.ImageURL, base)

	return meta
}

// resolveImageURL makes an image reference absolute against base. References
// that cannot be resolved, or that resolve to a non-http scheme, are dropped.
func resolveImageURL(raw string, base *url.URL) string {
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// textContent returns the trimmed text content of a node.
func textContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// attr returns the value of an attribute, case-insensitive on the key.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
