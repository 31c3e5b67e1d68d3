package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// AdminAddresses are the callers allowed to perform administrative
	// operations (pool creation/updates, treasury drawdown).
	AdminAddresses []string

	// DistributorAddresses are the callers allowed to fund pool rewards.
	DistributorAddresses []string

	// CustodyAccount is the ledger's own account inside the custody
	// collaborator; staked principal and reward funding are held under it.
	CustodyAccount string

	// WebPort is the port the HTTP query server listens on.
	WebPort string
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// Admin/distributor lists and the custody account are required; the web port defaults to 8080.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	AdminAddresses, err = getEnvAsList("LEDGER_ADMIN_ADDRESSES")
	if err != nil {
		return err
	}

	DistributorAddresses, err = getEnvAsList("LEDGER_DISTRIBUTOR_ADDRESSES")
	if err != nil {
		return err
	}

	CustodyAccount, err = getEnv("LEDGER_CUSTODY_ACCOUNT")
	if err != nil {
		return err
	}

	WebPort = os.Getenv("WEB_PORT")
	if WebPort == "" {
		WebPort = "8080"
	}

	log.Debug().
		Int("admins", len(AdminAddresses)).
		Int("distributors", len(DistributorAddresses)).
		Str("custodyAccount", CustodyAccount).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsList retrieves a comma-separated environment variable as a trimmed,
// non-empty list. Returns error if not set or empty.
func getEnvAsList(key string) ([]string, error) {
	raw, err := getEnv(key)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return nil, errors.New("environment variable " + key + " must contain at least one address")
	}
	return values, nil
}

// GetEnvAsInt retrieves an environment variable as an int with a default value.
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
