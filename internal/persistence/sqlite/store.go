package sqlite

import (
	"context"
	"log/slog"

	"github.com/example/asset-inventory/internal/persistence/sqlite/migration"
)

// Store bundles the SQLite-backed repositories behind one connection pool.
type Store struct {
	pool *ConnectionPool

	Users     *UserRepository
	Equipment *EquipmentRepository
	Licenses  *LicenseRepository
	Audit     *AuditLogRepository
	Config    *AppConfigRepository
	Sessions  *SessionRepository
}

// Open opens the database described by config and wires the repositories.
func Open(config Config) (*Store, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	return &Store{
		pool:      pool,
		Users:     NewUserRepository(pool),
		Equipment: NewEquipmentRepository(pool),
		Licenses:  NewLicenseRepository(pool),
		Audit:     NewAuditLogRepository(pool),
		Config:    NewAppConfigRepository(pool),
		Sessions:  NewSessionRepository(pool),
	}, nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *ConnectionPool {
	return s.pool
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Migrate runs the schema repair pass and the fixed migration list. The only
// error it returns is a failure to borrow a connection; individual migration
// failures are logged and skipped so the service can start degraded.
func (s *Store) Migrate(ctx context.Context, seed migration.SeedConfig, logger *slog.Logger) error {
	defs, err := migration.Definitions(seed)
	if err != nil {
		return err
	}

	runner := migration.NewRunner(s.pool.DB(), defs, migration.DefaultRepairRules(), logger)
	return runner.Run(ctx)
}
