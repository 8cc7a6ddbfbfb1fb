// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/b3folio-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andresilva/b3folio/internal/clients/brapi"
	"github.com/andresilva/b3folio/internal/clients/gemini"
	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
	"github.com/andresilva/b3folio/internal/services/backtest"
	"github.com/andresilva/b3folio/internal/services/ledger"
	"github.com/andresilva/b3folio/internal/services/portfolio"
	"github.com/andresilva/b3folio/internal/services/ticket"
	"github.com/andresilva/b3folio/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	QuoteClient      interfaces.QuoteClient
	AIClient         interfaces.AIClient
	LedgerService    interfaces.LedgerService
	PortfolioService interfaces.PortfolioService
	BacktestService  interfaces.BacktestService
	TicketService    interfaces.TicketService

	// ValuationEngine is an external collaborator; nil when unconfigured.
	ValuationEngine interfaces.ValuationEngine

	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: provided path, B3FOLIO_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("B3FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "b3folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/b3folio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory
	if !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}
	if !filepath.IsAbs(config.Storage.User.Path) {
		config.Storage.User.Path = filepath.Join(binDir, config.Storage.User.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ctx := context.Background()
	internalStore := storageManager.InternalStore()

	brapiKey, err := common.ResolveAPIKey(ctx, internalStore, "brapi_api_key", config.Clients.Brapi.APIKey)
	if err != nil {
		logger.Warn().Msg("brapi API key not configured - quotes and backtests will be unavailable")
	}

	geminiKey, err := common.ResolveAPIKey(ctx, internalStore, "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - statement import and chat will be unavailable")
	}

	var quoteClient interfaces.QuoteClient
	if brapiKey != "" {
		quoteClient = brapi.NewClient(brapiKey,
			brapi.WithBaseURL(config.Clients.Brapi.BaseURL),
			brapi.WithLogger(logger),
			brapi.WithRateLimit(config.Clients.Brapi.RateLimit),
			brapi.WithTimeout(config.Clients.Brapi.GetTimeout()),
		)
	}

	var aiClient interfaces.AIClient
	if geminiKey != "" {
		client, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			aiClient = client
		}
	}

	ledgerService := ledger.NewService(logger)
	portfolioService := portfolio.NewService(storageManager, ledgerService, quoteClient, aiClient, logger)
	backtestService := backtest.NewService(storageManager, ledgerService, quoteClient, logger)
	ticketService := ticket.NewService(storageManager, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		QuoteClient:      quoteClient,
		AIClient:         aiClient,
		LedgerService:    ledgerService,
		PortfolioService: portfolioService,
		BacktestService:  backtestService,
		TicketService:    ticketService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
