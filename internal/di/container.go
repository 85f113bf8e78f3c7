// Package di provides dependency injection configuration for the Notivo server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/notivo/notivo-server/internal/config"
	"github.com/notivo/notivo-server/internal/di/providers"
	"github.com/notivo/notivo-server/internal/logger"
	"github.com/notivo/notivo-server/internal/ratelimit"
	"github.com/notivo/notivo-server/internal/service"
	"github.com/notivo/notivo-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)

	// Business services
	do.Provide(injector, providers.ProvideMaterializer)
	do.Provide(injector, providers.ProvideNoteService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideRegisterLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.Materializer](injector)
	_ = do.MustInvoke[*service.NoteService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*ratelimit.KeyedRateLimiter](injector)

	// Server comes up last so everything it needs already exists
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
