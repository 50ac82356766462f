package main

import (
	"fmt"

	"github.com/rafgames/roletrando/config"
	"github.com/rafgames/roletrando/data"
	"github.com/rafgames/roletrando/engine"
	"github.com/rafgames/roletrando/history"
	"github.com/rafgames/roletrando/logger"
	"github.com/rafgames/roletrando/monitor"
	"github.com/rafgames/roletrando/rpc"
	"github.com/rafgames/roletrando/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Load game data
	loader, err := data.Load(cfg.Game.DataDir, cfg.Game.DefaultTheme)
	if err != nil {
		logger.Log.Fatalf("Failed to load game data: %v", err)
	}
	logger.Log.Infof("Loaded themes: %v", loader.Themes())

	// Initialize history store
	store, err := newHistoryStore(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize history store: %v", err)
	}
	defer store.Close()

	eng := engine.New(loader)

	// Monitoring endpoint on its own address
	mon := monitor.NewMonitor("roletrando")
	mon.StartServer(cfg.Server.MetricsAddress)

	gameServer := server.NewGameServer(cfg, eng, loader, store, mon)
	defer gameServer.Shutdown()

	// RPC admin surface
	rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to start RPC server: %v", err)
	}
	if err := rpc.RegisterAdminService(
		rpc.NewAdminService(store, mon, gameServer.Registry())); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}
	go rpcServer.Start()
	defer rpcServer.Stop()

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func newHistoryStore(cfg *config.Config) (history.Store, error) {
	pg := cfg.History.Postgres
	switch cfg.History.Backend {
	case "postgres":
		return history.NewGormPostgres(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "pq":
		return history.NewPostgres(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "file":
		return history.NewFileStore(cfg.History.File)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}
