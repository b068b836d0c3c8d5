// Package di provides dependency injection configuration for the Markhaven server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/markhavenapp/markhaven-server/internal/auth"
	"github.com/markhavenapp/markhaven-server/internal/config"
	"github.com/markhavenapp/markhaven-server/internal/di/providers"
	"github.com/markhavenapp/markhaven-server/internal/logger"
	"github.com/markhavenapp/markhaven-server/internal/scrape"
	"github.com/markhavenapp/markhaven-server/internal/service"
	"github.com/markhavenapp/markhaven-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Metadata resolution
	do.Provide(injector, providers.ProvideMetadataResolver)

	// Business services
	do.Provide(injector, providers.ProvideMailer)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookmarkService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideCollectionService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization in
// dependency order; the HTTP server comes up last.
func Bootstrap(injector *do.RootScope) error {
	invocations := []func() error{
		func() error { _, err := do.Invoke[*config.Config](injector); return err },
		func() error { _, err := do.Invoke[*logger.Logger](injector); return err },
		func() error { _, err := do.Invoke[providers.AuthKey](injector); return err },
		func() error { _, err := do.Invoke[*validation.Validator](injector); return err },
		func() error { _, err := do.Invoke[*providers.StoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*auth.TokenService](injector); return err },
		func() error { _, err := do.Invoke[*scrape.Resolver](injector); return err },
		func() error { _, err := do.Invoke[*service.AuthService](injector); return err },
		func() error { _, err := do.Invoke[*service.BookmarkService](injector); return err },
		func() error { _, err := do.Invoke[*service.TagService](injector); return err },
		func() error { _, err := do.Invoke[*service.CollectionService](injector); return err },
		func() error { _, err := do.Invoke[*providers.SessionCleanupJob](injector); return err },
		func() error { _, err := do.Invoke[*providers.HTTPServerHandle](injector); return err },
	}
	for _, invoke := range invocations {
		if err := invoke(); err != nil {
			return err
		}
	}
	return nil
}
