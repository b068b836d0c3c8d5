package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markhavenapp/markhaven-server/internal/http/response"
	"github.com/markhavenapp/markhaven-server/internal/service"
)

// handleCreateBookmark saves a URL with resolved metadata.
func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	var req service.CreateBookmarkRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	bm, err := s.bookmarkService.Create(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, "bookmark created", bm, s.logger)
}

// handleListBookmarks returns a page of bookmarks, newest first.
func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	page, err := s.bookmarkService.List(r.Context(), principal, parseListParams(r))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessPage(w, "bookmarks listed", page.Items, page.Metadata, s.logger)
}

// handleGetBookmark returns one bookmark with tags and collections.
func (s *Server) handleGetBookmark(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	bm, err := s.bookmarkService.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "bookmark retrieved", bm, s.logger)
}

// handleUpdateBookmark patches a bookmark and replaces its association sets.
func (s *Server) handleUpdateBookmark(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	var req service.UpdateBookmarkRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	bm, err := s.bookmarkService.Update(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "bookmark updated", bm, s.logger)
}

// handleDeleteBookmark removes a bookmark.
func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	if err := s.bookmarkService.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "bookmark deleted", nil, s.logger)
}
