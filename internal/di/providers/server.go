package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/notivo/notivo-server/internal/api"
	"github.com/notivo/notivo-server/internal/config"
	"github.com/notivo/notivo-server/internal/logger"
	"github.com/notivo/notivo-server/internal/ratelimit"
	"github.com/notivo/notivo-server/internal/service"
	"github.com/notivo/notivo-server/internal/validation"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	noteService := do.MustInvoke[*service.NoteService](i)
	tagService := do.MustInvoke[*service.TagService](i)
	userService := do.MustInvoke[*service.UserService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	registerLimiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)

	services := &api.Services{
		Note: noteService,
		Tag:  tagService,
		User: userService,
	}

	handler := api.NewServer(storeHandle.Store, cacheHandle.Cache, services, validator, registerLimiter, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
