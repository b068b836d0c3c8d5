package providers

import (
	"github.com/samber/do/v2"

	"github.com/markhavenapp/markhaven-server/internal/auth"
	"github.com/markhavenapp/markhaven-server/internal/config"
	"github.com/markhavenapp/markhaven-server/internal/logger"
	"github.com/markhavenapp/markhaven-server/internal/scrape"
	"github.com/markhavenapp/markhaven-server/internal/service"
	"github.com/markhavenapp/markhaven-server/internal/validation"
)

// ProvideMetadataResolver provides the bounded page-metadata fetcher.
func ProvideMetadataResolver(i do.Injector) (*scrape.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return scrape.NewResolver(cfg.Scrape.Timeout, cfg.Scrape.MaxBodyBytes, log.Logger), nil
}

// ProvideMailer provides the account mailer. Without SMTP configuration,
// reset tokens go to the log for operator delivery.
func ProvideMailer(i do.Injector) (service.Mailer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewLogMailer(log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	mailer := do.MustInvoke[service.Mailer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, validator, mailer, log.Logger), nil
}

// ProvideBookmarkService provides the bookmark service.
func ProvideBookmarkService(i do.Injector) (*service.BookmarkService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*scrape.Resolver](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookmarkService(storeHandle.Store, resolver, validator, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideCollectionService provides the collection service.
func ProvideCollectionService(i do.Injector) (*service.CollectionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCollectionService(storeHandle.Store, log.Logger), nil
}
