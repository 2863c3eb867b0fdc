package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"weathertrack.app/api"
	"weathertrack.app/config"
	"weathertrack.app/database"
	"weathertrack.app/providers"
	"weathertrack.app/repository"
	"weathertrack.app/service"
)

// Application holds the wired components of the service
type Application struct {
	config *config.Config
	db     *gorm.DB
	server *api.Server
}

// New loads configuration, connects the database, and wires every
// component up to the HTTP server
func New() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	locationRepo := repository.NewLocationRepository(db)
	requestRepo := repository.NewWeatherRequestRepository(db)
	snapshotRepo := repository.NewWeatherSnapshotRepository(db)

	gateway, err := providers.NewOpenWeatherGateway(&cfg.Weather)
	if err != nil {
		return nil, fmt.Errorf("failed to configure weather gateway: %w", err)
	}
	instrumented := providers.NewInstrumentedGateway(gateway)

	locationService := service.NewLocationService(locationRepo, instrumented)
	requestService := service.NewWeatherRequestService(db, requestRepo, snapshotRepo, locationService, instrumented)
	exportService := service.NewExportService(requestRepo, &cfg.Export)

	var mediaProvider providers.MediaProvider
	if p := providers.NewYouTubeProvider(&cfg.Media); p != nil {
		mediaProvider = p
	} else {
		slog.Info("Media provider disabled, no YouTube API key configured")
	}
	mediaService := service.NewMediaService(locationRepo, mediaProvider)

	server := api.NewServer(db, cfg, requestService, exportService, mediaService)

	return &Application{
		config: cfg,
		db:     db,
		server: server,
	}, nil
}

// Run starts the HTTP server and blocks until it exits
func (a *Application) Run() error {
	slog.Info("Starting server", "port", a.config.Server.Port, "driver", a.config.Database.Driver)
	return a.server.Start()
}

// Shutdown releases held resources
func (a *Application) Shutdown() {
	if a.db != nil {
		if err := database.CloseDB(a.db); err != nil {
			slog.Error("Error closing database", "error", err)
		}
	}
}
