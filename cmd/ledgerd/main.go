package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/stakeflow/ledger/internal/auth"
	"github.com/stakeflow/ledger/internal/config"
	"github.com/stakeflow/ledger/internal/custody"
	"github.com/stakeflow/ledger/internal/indexer"
	"github.com/stakeflow/ledger/internal/ledger"
	"github.com/stakeflow/ledger/internal/logger"
	"github.com/stakeflow/ledger/internal/state"
	"github.com/stakeflow/ledger/internal/web"
)

// main is the entry point for the staking ledger daemon.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Staking ledger daemon starting...")

	// Initialize database connection (event history and analytics)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Start Event Indexer ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventIndexer := indexer.NewIndexer(config.GetEnvAsInt("INDEXER_BUFFER_SIZE", 1024))
	eventIndexer.Start(ctx)

	// --- 3. Create Ledger Engine with Dependency Injection ---
	engineConfig := ledger.Config{
		Custody:   custody.NewMemoryCustody(config.CustodyAccount),
		Auth:      auth.NewStaticAuthorizer(config.AdminAddresses, config.DistributorAddresses),
		EventSink: eventIndexer,
	}

	engine, err := ledger.NewEngine(engineConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger engine")
	}

	log.Info().
		Int("admins", len(config.AdminAddresses)).
		Int("distributors", len(config.DistributorAddresses)).
		Msg("Ledger engine created successfully")

	// --- 4. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, engine)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting ledger query API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Wait for Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	// Stop the indexer and let it drain queued events before the DB closes.
	cancel()
	eventIndexer.Wait()
	log.Info().Msg("Staking ledger daemon stopped")
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
