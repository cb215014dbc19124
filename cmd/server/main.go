// Package main is the entry point of the application
package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/analysis-server/internal/auth"
	"github.com/tecu23/analysis-server/pkg/config"
	"github.com/tecu23/analysis-server/pkg/events"
	"github.com/tecu23/analysis-server/pkg/registry"
	"github.com/tecu23/analysis-server/pkg/server"
	"github.com/tecu23/analysis-server/pkg/transport"
)

// application encapsulates global dependencies.
type application struct {
	Auth      *auth.APIKeyAuth
	Logger    *zap.Logger
	Config    *config.Config
	Publisher *events.Publisher
	Registry  *registry.Registry
	Hub       *server.Hub
	Server    *http.Server

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.String("port", "8080", "server port")
	flag.Parse()

	logger := initLogger(*debug)
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded", zap.Error(err))
	}

	cfg, err := config.Load(*debug, *port)
	if err != nil {
		logger.Fatal("loading configuration", zap.Error(err))
	}

	publisher := events.NewPublisher()

	reg := registry.New(func() transport.Transport {
		return transport.NewProcess(cfg.EnginePath, nil, logger)
	}, publisher, logger)

	hub := server.NewHub(reg, logger)

	app := &application{
		Auth:      auth.NewAPIKeyAuth(cfg.APIKeys),
		Logger:    logger,
		Config:    cfg,
		Publisher: publisher,
		Registry:  reg,
		Hub:       hub,
		StartTime: time.Now(),
	}

	go app.Hub.Run()

	if err := app.serve(); err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// Shutdown cleans up resources.
func (app *application) Shutdown() {
	if app.Hub != nil {
		app.Hub.Shutdown()
	}
	if app.Registry != nil {
		app.Registry.Shutdown()
	}

	app.Logger.Info("all components shut down")
}
