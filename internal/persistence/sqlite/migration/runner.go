package migration

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
)

// Runner executes the startup schema pass: the repair rules followed by the
// fixed migration sequence.
type Runner struct {
	db     *sql.DB
	defs   []Migration
	rules  []RepairRule
	logger *slog.Logger
}

// NewRunner constructs a Runner over the shared connection pool. The
// definition list is copied and kept in ascending id order.
func NewRunner(db *sql.DB, defs []Migration, rules []RepairRule, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	ordered := make([]Migration, len(defs))
	copy(ordered, defs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	return &Runner{db: db, defs: ordered, rules: rules, logger: logger}
}

// Run performs the whole startup pass on a single borrowed connection. The
// connection is returned to the pool on every exit path. Individual repair
// and migration failures are logged and never propagate; the only error Run
// returns is the inability to borrow a connection at all, which the caller is
// expected to log and survive.
func (r *Runner) Run(ctx context.Context) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return &AcquireError{Err: err}
	}
	defer conn.Close()

	r.repairPass(ctx, conn)

	exec := &executor{conn: conn}

	if err := exec.ensureBookkeepingTable(ctx); err != nil {
		r.logger.Error("migration pass aborted", "error", err)
		return nil
	}

	applied, err := exec.appliedIDs(ctx)
	if err != nil {
		r.logger.Error("migration pass aborted", "error", err)
		return nil
	}

	pending := 0
	for _, m := range r.defs {
		if _, done := applied[m.ID]; done {
			continue
		}
		pending++

		if err := exec.execute(ctx, m); err != nil {
			// Left unrecorded: the whole migration is retried next start.
			applyErr := &ApplyError{ID: m.ID, Name: m.Name, Err: err}
			r.logger.Error("migration failed", "id", m.ID, "name", m.Name, "error", applyErr)
			continue
		}

		if err := exec.recordApplied(ctx, m.ID); err != nil {
			r.logger.Error("failed to record migration", "id", m.ID, "name", m.Name, "error", err)
			continue
		}

		r.logger.Info("migration applied", "id", m.ID, "name", m.Name)
	}

	if pending == 0 {
		r.logger.Info("schema up to date", "migrations", len(r.defs))
	}

	return nil
}
