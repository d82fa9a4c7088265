package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// executor performs the bookkeeping-table operations of the migration pass.
// All statements run on the single connection borrowed for the pass.
type executor struct {
	conn *sql.Conn
}

// ensureBookkeepingTable creates the migrations table when absent. Presence
// of a row means the migration with that id has been applied; no other
// metadata is recorded.
func (e *executor) ensureBookkeepingTable(ctx context.Context) error {
	_, err := e.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS migrations (id INTEGER PRIMARY KEY)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedIDs reads the full set of recorded migration ids.
func (e *executor) appliedIDs(ctx context.Context) (map[int]struct{}, error) {
	rows, err := e.conn.QueryContext(ctx, `SELECT id FROM migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan migration id: %w", err)
		}
		applied[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	return applied, nil
}

// recordApplied marks a migration id as applied. Called only after its SQL
// succeeded; ids are never updated or deleted afterwards.
func (e *executor) recordApplied(ctx context.Context, id int) error {
	if _, err := e.conn.ExecContext(ctx, `INSERT INTO migrations (id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", id, err)
	}
	return nil
}

// execute runs a migration's SQL statement by statement. No transaction wraps
// the statements: migrations are written to be safe under partial application
// and a failure leaves the id unrecorded so the whole unit is retried on the
// next start.
func (e *executor) execute(ctx context.Context, m Migration) error {
	statements := splitStatements(m.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("no SQL statements found in migration %d", m.ID)
	}

	for i, stmt := range statements {
		if _, err := e.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	return nil
}

// splitStatements breaks the SQL on semicolons that sit outside quoted text.
// Single quotes delimit literals and double quotes identifiers; a doubled
// quote inside either is an escape, not a terminator. Seeded values such as
// the company name may legitimately contain semicolons.
func splitStatements(sqlText string) []string {
	var statements []string
	var b strings.Builder
	var quote byte

	for i := 0; i < len(sqlText); i++ {
		ch := sqlText[i]
		switch {
		case quote != 0:
			b.WriteByte(ch)
			if ch == quote {
				if i+1 < len(sqlText) && sqlText[i+1] == quote {
					b.WriteByte(sqlText[i+1])
					i++
				} else {
					quote = 0
				}
			}
		case ch == '\'' || ch == '"':
			quote = ch
			b.WriteByte(ch)
		case ch == ';':
			if trimmed := strings.TrimSpace(b.String()); trimmed != "" {
				statements = append(statements, trimmed)
			}
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	if trimmed := strings.TrimSpace(b.String()); trimmed != "" {
		statements = append(statements, trimmed)
	}

	return statements
}
