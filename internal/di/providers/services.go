package providers

import (
	"github.com/samber/do/v2"

	"github.com/notivo/notivo-server/internal/config"
	"github.com/notivo/notivo-server/internal/logger"
	"github.com/notivo/notivo-server/internal/ratelimit"
	"github.com/notivo/notivo-server/internal/service"
	"github.com/notivo/notivo-server/internal/validation"
)

// ProvideMaterializer provides the result-set materializer.
func ProvideMaterializer(i do.Injector) (*service.Materializer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewMaterializer(storeHandle.Store), nil
}

// ProvideNoteService provides the note service.
func ProvideNoteService(i do.Injector) (*service.NoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	materializer := do.MustInvoke[*service.Materializer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNoteService(storeHandle.Store, cacheHandle.Cache, materializer, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, cacheHandle.Cache, log.Logger), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, cacheHandle.Cache, log.Logger), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideRegisterLimiter provides the per-IP registration rate limiter.
func ProvideRegisterLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Server.RegisterRate, cfg.Server.RegisterBurst), nil
}
