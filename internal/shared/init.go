package shared

import (
	"fmt"
	"log/slog"

	"github.com/gatherly-app/gatherly/internal/api"
	"github.com/gatherly-app/gatherly/internal/config"
	"github.com/gatherly-app/gatherly/internal/events"
	"github.com/gatherly-app/gatherly/internal/inbox"
	sqliteRepo "github.com/gatherly-app/gatherly/internal/repository/sqlite"
	"github.com/gatherly-app/gatherly/internal/session"
)

// InitializeEngine wires one inbox engine from configuration: HTTP
// transport, sqlite store, session cache, and invalidation bus. The
// returned bus is what the rest of the app publishes invalidations into.
func InitializeEngine(cfg *config.ConfigSchema, logger *slog.Logger) (*inbox.Engine, *events.Bus, error) {
	store, err := sqliteRepo.Initialize(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize conversation store: %w", err)
	}

	client := api.NewHTTPClient(cfg.API)
	cache := session.NewCache()
	bus := events.NewBus()

	coordinator := inbox.NewCoordinator(client, cache, store, logger)
	engine := inbox.NewEngine(coordinator, bus, logger)
	engine.SetSession(cfg.UserID, cfg.API.Token != "" && cfg.UserID != "")

	return engine, bus, nil
}
