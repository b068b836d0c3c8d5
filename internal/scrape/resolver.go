package scrape

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// userAgent mimics a desktop browser. Many sites serve stripped-down or
// blocked pages to unknown clients.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// Resolver fetches page metadata over HTTP with a bounded timeout and body
// size. Every failure mode degrades to empty metadata.
type Resolver struct {
	client       *http.Client
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewResolver creates a metadata resolver. timeout bounds the whole fetch
// including redirects; maxBodyBytes caps how much of the response is read.
func NewResolver(timeout time.Duration, maxBodyBytes int64, logger *slog.Logger) *Resolver {
	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
		},
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Resolve fetches rawURL and extracts its metadata. It never returns an
// error: unreachable hosts, non-HTML responses, error statuses, and parse
// failures all yield zero-value metadata, and the caller proceeds with
// fallbacks. The context deadline applies in addition to the client timeout.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) Metadata {
	base, err := url.Parse(rawURL)
	if err != nil {
		return Metadata{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Metadata{}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("metadata fetch failed", "url", rawURL, "error", err)
		return Metadata{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Debug("metadata fetch non-2xx", "url", rawURL, "status", resp.StatusCode)
		return Metadata{}
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return Metadata{}
	}

	// The final URL after redirects is the base for relative references.
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}

	return Extract(io.LimitReader(resp.Body, r.maxBodyBytes), base)
}

// isHTML reports whether a Content-Type header denotes an HTML document.
// An absent header is treated as HTML; servers that omit it usually serve it.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml" ||
		strings.HasSuffix(mediaType, "+html")
}
