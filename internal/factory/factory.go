package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/arcadelab/gamehub/internal/dependencies/clock"
	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/server"
	"github.com/arcadelab/gamehub/internal/services/auth"
	"github.com/arcadelab/gamehub/internal/services/catalog"
	"github.com/arcadelab/gamehub/internal/services/room"
	"github.com/arcadelab/gamehub/internal/services/worker"
	"github.com/arcadelab/gamehub/internal/storage"
	"github.com/arcadelab/gamehub/internal/storage/memory"
	redisstorage "github.com/arcadelab/gamehub/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	AuthService    *auth.Service
	CatalogService *catalog.Service
	Orchestrator   *worker.Orchestrator
	RoomManager    *room.Manager

	// Transport
	Lobby *server.Server

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ServerConfig holds the lobby listener settings (optional)
	// If zero value, defaults to server.DefaultConfig()
	ServerConfig server.Config
	// WorkerConfig holds orchestrator settings (optional)
	// If zero value, defaults to worker.DefaultConfig()
	WorkerConfig worker.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	serverCfg := cfg.ServerConfig
	if serverCfg.Addr == "" {
		serverCfg = server.DefaultConfig()
	}
	workerCfg := cfg.WorkerConfig
	if workerCfg.BasePort == 0 {
		workerCfg = worker.DefaultConfig()
	}

	return newWithDependencies(store, clk, serverCfg, workerCfg, logger)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, serverCfg server.Config, workerCfg worker.Config, logger *slog.Logger) (*App, error) {
	archive, err := catalog.NewArchiveStore(workerCfg.GamesDir)
	if err != nil {
		return nil, err
	}

	authService := auth.New(store, clk, logger)
	catalogService := catalog.New(store, archive, clk, logger)
	orchestrator := worker.New(workerCfg, clk, logger)
	roomManager := room.NewManager(catalogService, orchestrator, authService, logger)

	// The catalog refuses to delete games referenced by live rooms; wired
	// here as a setter because the room manager depends on the catalog
	catalogService.BindUsage(roomManager)

	lobby := server.New(serverCfg, authService, catalogService, roomManager, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		AuthService:    authService,
		CatalogService: catalogService,
		Orchestrator:   orchestrator,
		RoomManager:    roomManager,
		Lobby:          lobby,
		logger:         logger,
	}, nil
}

// State assembles the runtime diagnostics snapshot: live rooms, online
// identities and tracked workers. Served by the admin endpoint and
// persisted on shutdown.
func (a *App) State() *model.Snapshot {
	return &model.Snapshot{
		Rooms:            a.RoomManager.Snapshot(),
		OnlinePlayers:    a.AuthService.OnlineUsers(model.RolePlayer),
		OnlineDevelopers: a.AuthService.OnlineUsers(model.RoleDeveloper),
		Workers:          a.Orchestrator.Workers(),
		SavedAt:          a.Clock.Now(),
	}
}

// SaveState persists the current snapshot to storage
func (a *App) SaveState(ctx context.Context) error {
	snap := a.State()
	if err := a.Storage.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	a.logger.Info("state snapshot saved",
		slog.Int("rooms", len(snap.Rooms)),
		slog.Int("workers", len(snap.Workers)))
	return nil
}
