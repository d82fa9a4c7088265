package migration

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedConfig supplies the deployment-specific values baked into the fixed
// migration list when it is built.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	BcryptCost    int
	CompanyName   string
}

// Definitions builds the fixed migration list. The administrative account's
// password hash is computed here, once, when the list is built; executing the
// seed migration later inserts the precomputed hash verbatim.
func Definitions(seed SeedConfig) ([]Migration, error) {
	cost := seed.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(seed.AdminPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed admin password: %w", err)
	}
	seededAt := time.Now().UTC().Format(time.RFC3339)

	return []Migration{
		{
			ID:   1,
			Name: "create users table",
			SQL: `CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'viewer',
				totp_secret TEXT NOT NULL DEFAULT '',
				totp_enabled INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
		{
			ID:   2,
			Name: "create equipment table",
			SQL: `CREATE TABLE IF NOT EXISTS equipment (
				id TEXT PRIMARY KEY,
				asset_tag TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'in_stock',
				assigned_to TEXT,
				purchase_date TEXT,
				warranty_expires TEXT,
				notes TEXT,
				last_checked_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
		{
			ID:   3,
			Name: "create licenses table",
			SQL: `CREATE TABLE IF NOT EXISTS licenses (
				id TEXT PRIMARY KEY,
				product TEXT NOT NULL,
				vendor TEXT NOT NULL DEFAULT '',
				license_key TEXT NOT NULL DEFAULT '',
				seats INTEGER NOT NULL DEFAULT 1,
				expires_on TEXT,
				notes TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
		{
			ID:   4,
			Name: "create equipment history table",
			SQL: `CREATE TABLE IF NOT EXISTS equipment_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				equipment_id TEXT NOT NULL,
				actor TEXT NOT NULL DEFAULT '',
				change_type TEXT NOT NULL,
				detail TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
		{
			ID:   5,
			Name: "create audit log table",
			SQL: `CREATE TABLE IF NOT EXISTS audit_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				actor TEXT NOT NULL DEFAULT '',
				action TEXT NOT NULL,
				entity_type TEXT NOT NULL DEFAULT '',
				entity_id TEXT NOT NULL DEFAULT '',
				detail TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
		{
			ID:   6,
			Name: "create sessions table",
			SQL: `CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
		{
			ID:   7,
			Name: "create app config table and defaults",
			SQL: `CREATE TABLE IF NOT EXISTS app_config (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL DEFAULT ''
			);
			INSERT OR IGNORE INTO app_config (key, value) VALUES ('companyName', ` + quoteLiteral(seed.CompanyName) + `);
			INSERT OR IGNORE INTO app_config (key, value) VALUES ('isSsoEnabled', 'false')`,
		},
		{
			ID:   8,
			Name: "seed administrative account",
			SQL: `INSERT OR IGNORE INTO users (id, username, email, display_name, password_hash, role, created_at, updated_at)
			VALUES (` + quoteLiteral(uuid.NewString()) + `, ` +
				quoteLiteral(seed.AdminUsername) + `, ` +
				quoteLiteral(seed.AdminEmail) + `, 'Administrator', ` +
				quoteLiteral(string(adminHash)) + `, 'admin', ` +
				quoteLiteral(seededAt) + `, ` + quoteLiteral(seededAt) + `)`,
		},
		{
			ID:   9,
			Name: "create secondary indexes",
			SQL: `CREATE INDEX IF NOT EXISTS idx_equipment_history_equipment ON equipment_history (equipment_id);
			CREATE INDEX IF NOT EXISTS idx_audit_log_actor ON audit_log (actor);
			CREATE INDEX IF NOT EXISTS idx_licenses_expires ON licenses (expires_on);
			CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions (user_id)`,
		},
	}, nil
}

// DefaultRepairRules returns the generic column repairs evaluated on every
// start. Each rule targets a column that older deployments lack.
func DefaultRepairRules() []RepairRule {
	return []RepairRule{
		{Table: "users", Column: "role", Definition: "TEXT NOT NULL DEFAULT 'viewer'"},
		{Table: "users", Column: "totp_secret", Definition: "TEXT NOT NULL DEFAULT ''"},
		{Table: "users", Column: "totp_enabled", Definition: "INTEGER NOT NULL DEFAULT 0"},
		{Table: "equipment", Column: "assigned_to", Definition: "TEXT"},
		{Table: "equipment", Column: "warranty_expires", Definition: "TEXT"},
		{Table: "equipment", Column: "notes", Definition: "TEXT"},
		{Table: "equipment", Column: "last_checked_at", Definition: "TEXT"},
		{Table: "licenses", Column: "seats", Definition: "INTEGER NOT NULL DEFAULT 1"},
		{Table: "licenses", Column: "expires_on", Definition: "TEXT"},
		{Table: "equipment_history", Column: "change_type", Definition: "TEXT NOT NULL DEFAULT 'update'"},
		{Table: "equipment_history", Column: "equipment_id", Definition: "TEXT"},
	}
}

// quoteLiteral renders a value as a single-quoted SQL string literal.
func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
