// Package api provides the HTTP API server and handlers for Markhaven.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markhavenapp/markhaven-server/internal/http/response"
	"github.com/markhavenapp/markhaven-server/internal/ratelimit"
	"github.com/markhavenapp/markhaven-server/internal/service"
)

// Auth endpoints are brute-force targets and get a tight per-IP budget.
const (
	authRatePerMinute = 20
	authRateBurst     = 10
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService       *service.AuthService
	bookmarkService   *service.BookmarkService
	tagService        *service.TagService
	collectionService *service.CollectionService
	authLimiter       *ratelimit.KeyedRateLimiter
	router            *chi.Mux
	logger            *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authService *service.AuthService,
	bookmarkService *service.BookmarkService,
	tagService *service.TagService,
	collectionService *service.CollectionService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:       authService,
		bookmarkService:   bookmarkService,
		tagService:        tagService,
		collectionService: collectionService,
		authLimiter:       ratelimit.New(float64(authRatePerMinute)/60, authRateBurst),
		router:            chi.NewRouter(),
		logger:            logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited).
		r.Route("/auth", func(r chi.Router) {
			r.Use(s.rateLimitByIP(s.authLimiter))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
			r.Post("/forgot-password", s.handleForgotPassword)
			r.Post("/reset-password", s.handleResetPassword)
		})

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Bookmarks (require auth).
		r.Route("/bookmarks", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateBookmark)
			r.Get("/", s.handleListBookmarks)
			r.Get("/{id}", s.handleGetBookmark)
			r.Put("/{id}", s.handleUpdateBookmark)
			r.Delete("/{id}", s.handleDeleteBookmark)
		})

		// Tags (require auth).
		r.Route("/tags", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateTag)
			r.Get("/", s.handleListTags)
			r.Get("/{id}", s.handleGetTag)
			r.Put("/{id}", s.handleRenameTag)
			r.Delete("/{id}", s.handleDeleteTag)
		})

		// Collections (require auth).
		r.Route("/collections", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateCollection)
			r.Get("/", s.handleListCollections)
			r.Get("/{id}", s.handleGetCollection)
			r.Put("/{id}", s.handleRenameCollection)
			r.Delete("/{id}", s.handleDeleteCollection)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, "healthy", map[string]string{"status": "healthy"}, s.logger)
}
