package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markhavenapp/markhaven-server/internal/http/response"
)

// handleCreateCollection creates a collection.
func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	coll, err := s.collectionService.Create(r.Context(), principal, req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, "collection created", coll, s.logger)
}

// handleListCollections returns all of the caller's collections.
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	colls, err := s.collectionService.List(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "collections listed", colls, s.logger)
}

// handleGetCollection returns one collection.
func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	coll, err := s.collectionService.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "collection retrieved", coll, s.logger)
}

// handleRenameCollection renames a collection. The system collection is
// protected.
func (s *Server) handleRenameCollection(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	coll, err := s.collectionService.Rename(r.Context(), principal, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "collection renamed", coll, s.logger)
}

// handleDeleteCollection deletes a collection, reassigning its bookmarks to
// the system collection.
func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	if err := s.collectionService.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "collection deleted", nil, s.logger)
}
