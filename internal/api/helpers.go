package api

import (
	"github.com/go-json-experiment/json"
	"net/http"
	"strconv"

	"github.com/markhavenapp/markhaven-server/internal/store"
)

// decodeBody reads a JSON request body into dst using json/v2.
func decodeBody(r *http.Request, dst any) error {
	return json.UnmarshalRead(r.Body, dst)
}

// parseListParams reads pagination and filter query parameters. Out-of-range
// values are clamped by the store, not rejected.
func parseListParams(r *http.Request) store.ListParams {
	q := r.URL.Query()

	params := store.ListParams{
		Search:       q.Get("search"),
		CollectionID: q.Get("collectionId"),
		TagID:        q.Get("tagId"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		params.Page = page
	}
	if pageSize, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		params.PageSize = pageSize
	}
	return params
}
