package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/minigames/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	broker := deps.Broker
	if broker == nil {
		broker = NewMemoryBroker()
	}

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Mini-games API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())

	// Engine sessions; {engine} is resolved by engineMiddleware.
	r.Route("/ws/play/{engine}", func(r chi.Router) {
		r.Use(engineMiddleware(deps.Engines))
		r.Get("/", handlePlay(logger, deps.Engines, broker, deps.Play))
	})

	// Live relay for leaderboards.
	r.Get("/api/live/{creationID}/events", handleEvents(logger, broker))
	r.Get("/api/engines", handleListEngines(deps.Engines))

	if deps.GamesDir != "" {
		if info, err := os.Stat(deps.GamesDir); err == nil && info.IsDir() {
			logger.Info("serving game bundles", "dir", deps.GamesDir)
			r.NotFound(handleSPA(deps.GamesDir))
		}
	}
}
