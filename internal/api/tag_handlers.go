package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markhavenapp/markhaven-server/internal/http/response"
)

// nameRequest carries a single name field, shared by tag and collection
// create/rename bodies.
type nameRequest struct {
	Name string `json:"name"`
}

// handleCreateTag finds or creates a tag by name. A fresh tag is a 201; a
// resubmitted name returns the existing tag with a 200.
func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
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

	tag, created, err := s.tagService.Create(r.Context(), principal, req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if created {
		response.Created(w, "tag created", tag, s.logger)
		return
	}
	response.Success(w, "tag already exists", tag, s.logger)
}

// handleListTags returns all of the caller's tags.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	tags, err := s.tagService.List(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "tags listed", tags, s.logger)
}

// handleGetTag returns one tag.
func (s *Server) handleGetTag(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	tag, err := s.tagService.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "tag retrieved", tag, s.logger)
}

// handleRenameTag renames a tag.
func (s *Server) handleRenameTag(w http.ResponseWriter, r *http.Request) {
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

	tag, err := s.tagService.Rename(r.Context(), principal, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "tag renamed", tag, s.logger)
}

// handleDeleteTag detaches a tag from every bookmark and deletes it.
func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	if err := s.tagService.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "tag deleted", nil, s.logger)
}
