package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS ledger_events (
			event_id UUID PRIMARY KEY,
			kind VARCHAR(50) NOT NULL,
			pool_id BIGINT NOT NULL,
			user_address VARCHAR(255) NOT NULL DEFAULT '',
			asset VARCHAR(128) NOT NULL DEFAULT '',
			amount NUMERIC(78, 0) NOT NULL DEFAULT 0,
			reward_amount NUMERIC(78, 0) NOT NULL DEFAULT 0,
			fee_amount NUMERIC(78, 0) NOT NULL DEFAULT 0,
			event_timestamp BIGINT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_kind ON ledger_events(kind);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_pool ON ledger_events(pool_id, event_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_user ON ledger_events(user_address, event_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_timestamp ON ledger_events(event_timestamp DESC);

		CREATE TABLE IF NOT EXISTS daily_stats (
			stat_day DATE PRIMARY KEY,
			stakes_count BIGINT NOT NULL DEFAULT 0,
			withdrawals_count BIGINT NOT NULL DEFAULT 0,
			claims_count BIGINT NOT NULL DEFAULT 0,
			staked_volume NUMERIC(78, 0) NOT NULL DEFAULT 0,
			withdrawn_volume NUMERIC(78, 0) NOT NULL DEFAULT 0,
			rewards_paid NUMERIC(78, 0) NOT NULL DEFAULT 0,
			fees_collected NUMERIC(78, 0) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
