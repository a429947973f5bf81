package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	audioHandler "github.com/b4babl/backend/internal/handler/audio"
	babelHandler "github.com/b4babl/backend/internal/handler/babel"
	messageHandler "github.com/b4babl/backend/internal/handler/message"
	sessionHandler "github.com/b4babl/backend/internal/handler/session"
	middlewarePkg "github.com/b4babl/backend/internal/middleware"
	audioService "github.com/b4babl/backend/internal/service/audio"
	babelService "github.com/b4babl/backend/internal/service/babel"
	channelService "github.com/b4babl/backend/internal/service/channel"
	registryService "github.com/b4babl/backend/internal/service/registry"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(registry *registryService.Service, channel *channelService.Service, audio *audioService.Service, babel *babelService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		sessionHandler.New(registry).RegisterRoutes(api)
		messageHandler.New(channel).RegisterRoutes(api)
		audioHandler.New(audio).RegisterRoutes(api)
		babelHandler.New(babel).RegisterRoutes(api)
	})

	return r
}
