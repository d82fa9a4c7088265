package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config captures environment driven configuration values for the inventory service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionSecret string
	SessionTTL    time.Duration
	BcryptCost    int
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	CompanyName   string
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values. The admin credentials are only used to seed the initial
// administrator account on a fresh database.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:inventory.db",
		SessionTTL:    24 * time.Hour,
		BcryptCost:    bcrypt.DefaultCost,
		AdminUsername: "admin",
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin",
		CompanyName:   "My Company",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("INVENTORY_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "INVENTORY_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("INVENTORY_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("INVENTORY_SESSION_SECRET")); secret == "" {
		missing = append(missing, "INVENTORY_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("INVENTORY_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "INVENTORY_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if costValue := strings.TrimSpace(os.Getenv("INVENTORY_BCRYPT_COST")); costValue != "" {
		cost, err := strconv.Atoi(costValue)
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			invalid = append(invalid, "INVENTORY_BCRYPT_COST")
		} else {
			cfg.BcryptCost = cost
		}
	}

	if username := strings.TrimSpace(os.Getenv("INVENTORY_ADMIN_USERNAME")); username != "" {
		cfg.AdminUsername = username
	}

	if email := strings.TrimSpace(os.Getenv("INVENTORY_ADMIN_EMAIL")); email != "" {
		cfg.AdminEmail = email
	}

	if password := os.Getenv("INVENTORY_ADMIN_PASSWORD"); strings.TrimSpace(password) != "" {
		cfg.AdminPassword = password
	}

	if company := strings.TrimSpace(os.Getenv("INVENTORY_COMPANY_NAME")); company != "" {
		cfg.CompanyName = company
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables hold invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
