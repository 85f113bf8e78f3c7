package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/notivo/notivo-server/internal/cache"
	"github.com/notivo/notivo-server/internal/config"
	"github.com/notivo/notivo-server/internal/logger"
	"github.com/notivo/notivo-server/internal/store/sqlite"
)

// StoreHandle wraps the relational store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the relational store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.RelationalPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Relational store initialized", "path", cfg.RelationalPath())

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the query cache with shutdown capability.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the query cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	c, err := cache.Open(cfg.CachePath(), cfg.Cache.TTL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Query cache initialized", "path", cfg.CachePath(), "ttl", cfg.Cache.TTL)

	return &CacheHandle{Cache: c}, nil
}
