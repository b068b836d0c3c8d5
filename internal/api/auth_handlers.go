package api

import (
	"net/http"

	"github.com/markhavenapp/markhaven-server/internal/http/response"
	"github.com/markhavenapp/markhaven-server/internal/service"
)

// handleRegister creates a new account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	user, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, "account created", user, s.logger)
}

// handleLogin exchanges credentials for tokens.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "logged in", resp, s.logger)
}

// handleRefresh rotates a refresh token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Refresh(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "token refreshed", resp, s.logger)
}

// handleLogout revokes a refresh token's session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	if err := s.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "logged out", nil, s.logger)
}

// handleForgotPassword starts a password reset.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	if err := s.authService.RequestPasswordReset(r.Context(), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "if the address is registered, a reset mail was sent", nil, s.logger)
}

// handleResetPassword completes a password reset.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ResetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	if err := s.authService.ResetPassword(r.Context(), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, "password updated", nil, s.logger)
}

// handleGetCurrentUser returns the authenticated caller's identity.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := getPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	response.Success(w, "current user", map[string]string{
		"id":    principal.UserID,
		"email": principal.Email,
	}, s.logger)
}
