// Package service contains the application services sitting between the HTTP
// layer and the store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/markhavenapp/markhaven-server/internal/auth"
	"github.com/markhavenapp/markhaven-server/internal/domain"
	domainerrors "github.com/markhavenapp/markhaven-server/internal/errors"
	"github.com/markhavenapp/markhaven-server/internal/id"
	"github.com/markhavenapp/markhaven-server/internal/store"
	"github.com/markhavenapp/markhaven-server/internal/validation"
)

// resetTokenTTL bounds how long an emailed password-reset token stays valid.
const resetTokenTTL = time.Hour

// AuthService handles registration, login, token refresh, and password
// resets. Refresh tokens are stored hashed; access tokens are stateless.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	mailer    Mailer
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokens *auth.TokenService,
	validator *validation.Validator,
	mailer Mailer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		validator: validator,
		mailer:    mailer,
		logger:    logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest contains the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=1024"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// Register creates a new account. The system collection and the default tags
// are seeded in the same transaction as the user row, so a registered
// account always satisfies the one-system-collection invariant.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	userID, err := id.Generate("usr")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	systemID, err := id.Generate("col")
	if err != nil {
		return nil, fmt.Errorf("generate collection ID: %w", err)
	}
	system := &domain.Collection{
		ID:        systemID,
		OwnerID:   userID,
		Name:      domain.SystemCollectionName,
		IsSystem:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	defaults := make([]*domain.Tag, 0, len(domain.DefaultTagNames))
	for _, name := range domain.DefaultTagNames {
		tagID, err := id.Generate("tag")
		if err != nil {
			return nil, fmt.Errorf("generate tag ID: %w", err)
		}
		defaults = append(defaults, &domain.Tag{
			ID:        tagID,
			OwnerID:   userID,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.store.CreateUser(ctx, user, system, defaults); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "email", user.Email)
	return user, nil
}

// Login verifies credentials and opens a refresh-token session. An unknown
// email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	resp, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return resp, nil
}

// Refresh rotates a refresh token: the presented token's session is replaced
// by a new one and a fresh access token is issued. An expired session is
// deleted on sight.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("look up session: %w", err)
	}

	if session.IsExpired(time.Now().UTC()) {
		if err := s.store.DeleteSession(ctx, session.ID); err != nil {
			s.logger.Warn("delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, domainerrors.TokenExpired("refresh token expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("look up session user: %w", err)
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	return s.openSession(ctx, user)
}

// Logout revokes the session behind a refresh token. Unknown tokens succeed;
// logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("look up session: %w", err)
	}
	if err := s.store.DeleteSession(ctx, session.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("user logged out", "user_id", session.UserID)
	return nil
}

// VerifyAccessToken validates a bearer token and returns the caller's
// identity.
func (s *AuthService) VerifyAccessToken(token string) (domain.Principal, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return domain.Principal{}, domainerrors.Unauthorized("invalid or expired token")
	}
	return domain.Principal{UserID: claims.UserID, Email: claims.Email}, nil
}

// RequestPasswordReset issues a reset token and hands it to the mailer. An
// unknown email succeeds silently so the endpoint doesn't leak which
// addresses have accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req ForgotPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			s.logger.Info("password reset for unknown email", "email", req.Email)
			return nil
		}
		return fmt.Errorf("look up user: %w", err)
	}

	token := uuid.NewString()
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := s.store.SetResetToken(ctx, user.ID, auth.HashRefreshToken(token), expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword exchanges a valid reset token for a new password and clears
// the pending reset.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.store.GetUserByResetTokenHash(ctx, auth.HashRefreshToken(req.Token))
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.Unauthorized("invalid or expired reset token")
		}
		return fmt.Errorf("look up reset token: %w", err)
	}
	if !user.HasPendingReset(time.Now().UTC()) {
		return domainerrors.TokenExpired("reset token expired")
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password reset completed", "user_id", user.ID)
	return nil
}

// CleanupExpiredSessions deletes sessions past their expiry.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	return s.store.DeleteExpiredSessions(ctx, time.Now().UTC())
}

// openSession issues an access token and a fresh refresh-token session.
func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate("ses")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}
	now := time.Now().UTC()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt:        now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(s.tokens.AccessTokenDuration()),
	}, nil
}
