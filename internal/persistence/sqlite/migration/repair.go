package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// columnMeta mirrors one pragma_table_info row.
type columnMeta struct {
	Name       string
	Type       string
	NotNull    bool
	Default    string // dflt_value as stored, empty when no default
	PrimaryKey bool
}

// prober answers table and column metadata questions on the borrowed
// connection.
type prober struct {
	conn *sql.Conn
}

func (p *prober) tableExists(ctx context.Context, table string) (bool, error) {
	var one int
	err := p.conn.QueryRowContext(ctx,
		`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &ProbeError{Table: table, Err: err}
	}
	return true, nil
}

func (p *prober) columnInfo(ctx context.Context, table, column string) (columnMeta, bool, error) {
	var meta columnMeta
	var notNull, pk int
	var dflt sql.NullString
	err := p.conn.QueryRowContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) WHERE name = ?`,
		table, column).Scan(&meta.Name, &meta.Type, &notNull, &dflt, &pk)
	if errors.Is(err, sql.ErrNoRows) {
		return columnMeta{}, false, nil
	}
	if err != nil {
		return columnMeta{}, false, &ProbeError{Table: table, Column: column, Err: err}
	}
	meta.NotNull = notNull != 0
	meta.PrimaryKey = pk != 0
	if dflt.Valid {
		meta.Default = dflt.String
	}
	return meta, true, nil
}

func (p *prober) tableColumns(ctx context.Context, table string) ([]columnMeta, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, &ProbeError{Table: table, Err: err}
	}
	defer rows.Close()

	var columns []columnMeta
	for rows.Next() {
		var meta columnMeta
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&meta.Name, &meta.Type, &notNull, &dflt, &pk); err != nil {
			return nil, &ProbeError{Table: table, Err: err}
		}
		meta.NotNull = notNull != 0
		meta.PrimaryKey = pk != 0
		if dflt.Valid {
			meta.Default = dflt.String
		}
		columns = append(columns, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, &ProbeError{Table: table, Err: err}
	}

	return columns, nil
}

// tableIndexSQL returns the CREATE INDEX statements recorded for the table.
// Auto-indexes backing UNIQUE and PRIMARY KEY constraints carry no sql and
// are excluded; SQLite recreates those with the table.
func (p *prober) tableIndexSQL(ctx context.Context, table string) ([]string, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL`, table)
	if err != nil {
		return nil, &ProbeError{Table: table, Err: err}
	}
	defer rows.Close()

	var stmts []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return nil, &ProbeError{Table: table, Err: err}
		}
		stmts = append(stmts, stmt)
	}
	if err := rows.Err(); err != nil {
		return nil, &ProbeError{Table: table, Err: err}
	}

	return stmts, nil
}

// repairPass applies the generic column rules and the targeted definition
// repairs. Every failure is logged and skipped; the pass always finishes. No
// transaction wraps the pass: each repair is independently idempotent and is
// re-checked on the next start.
func (r *Runner) repairPass(ctx context.Context, conn *sql.Conn) {
	p := &prober{conn: conn}

	for _, rule := range r.rules {
		if err := r.applyRule(ctx, conn, p, rule); err != nil {
			r.logger.Error("schema repair skipped",
				"table", rule.Table, "column", rule.Column, "error", err)
		}
	}

	// Incompatible-definition repairs. These fire whenever their target
	// column exists, regardless of the rule table above.
	if err := r.relaxColumnToNullable(ctx, conn, p, "equipment_history", "equipmentId"); err != nil {
		r.logger.Error("schema repair skipped",
			"table", "equipment_history", "column", "equipmentId", "error", err)
	}
	for _, table := range []string{"equipment_history", "audit_log"} {
		if err := r.ensureTimestampDefault(ctx, conn, p, table, "created_at"); err != nil {
			r.logger.Error("schema repair skipped",
				"table", table, "column", "created_at", "error", err)
		}
	}
}

// applyRule adds the rule's column when its table exists and the column is
// missing. A missing table is skipped silently: creating it is the job of a
// later migration.
func (r *Runner) applyRule(ctx context.Context, conn *sql.Conn, p *prober, rule RepairRule) error {
	exists, err := p.tableExists(ctx, rule.Table)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	_, present, err := p.columnInfo(ctx, rule.Table, rule.Column)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`,
		quoteIdent(rule.Table), quoteIdent(rule.Column), rule.Definition)
	if _, err := conn.ExecContext(ctx, stmt); err != nil {
		return &RepairError{Table: rule.Table, Column: rule.Column, Err: err}
	}

	r.logger.Info("schema repaired: added missing column",
		"table", rule.Table, "column", rule.Column, "definition", rule.Definition)
	return nil
}

// relaxColumnToNullable drops a NOT NULL constraint from a legacy column so
// that inserts populating only its modern replacement succeed. SQLite cannot
// alter a column definition in place, so the table is rebuilt with the same
// columns and the constraint removed.
func (r *Runner) relaxColumnToNullable(ctx context.Context, conn *sql.Conn, p *prober, table, column string) error {
	meta, present, err := p.columnInfo(ctx, table, column)
	if err != nil {
		return err
	}
	if !present || !meta.NotNull {
		return nil
	}

	if err := r.rebuildTable(ctx, conn, p, table, func(col columnMeta) columnMeta {
		if col.Name == column {
			col.NotNull = false
		}
		return col
	}); err != nil {
		return &RepairError{Table: table, Column: column, Err: err}
	}

	r.logger.Info("schema repaired: relaxed legacy column to nullable",
		"table", table, "column", column)
	return nil
}

// ensureTimestampDefault guarantees the column carries a CURRENT_TIMESTAMP
// default so inserts that omit it do not fail. Also a table rebuild, for the
// same reason as above.
func (r *Runner) ensureTimestampDefault(ctx context.Context, conn *sql.Conn, p *prober, table, column string) error {
	meta, present, err := p.columnInfo(ctx, table, column)
	if err != nil {
		return err
	}
	if !present || strings.EqualFold(strings.TrimSpace(meta.Default), "CURRENT_TIMESTAMP") {
		return nil
	}

	// Only the default is added. Nullability is left as found: a legacy
	// column may hold NULL rows, and strengthening it would make the rebuild
	// copy fail on them.
	if err := r.rebuildTable(ctx, conn, p, table, func(col columnMeta) columnMeta {
		if col.Name == column {
			col.Default = "CURRENT_TIMESTAMP"
		}
		return col
	}); err != nil {
		return &RepairError{Table: table, Column: column, Err: err}
	}

	r.logger.Info("schema repaired: ensured timestamp default",
		"table", table, "column", column)
	return nil
}

// rebuildTable recreates the table with each column passed through transform,
// copying all rows. Dropping the old table takes its indexes with it, so
// their CREATE INDEX statements are captured from sqlite_master first and
// re-executed once the scratch table is renamed into place. The statements
// are not wrapped in a transaction; a crash mid-rebuild leaves the scratch
// table behind, which the next start's rebuild replaces.
func (r *Runner) rebuildTable(ctx context.Context, conn *sql.Conn, p *prober, table string, transform func(columnMeta) columnMeta) error {
	columns, err := p.tableColumns(ctx, table)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return fmt.Errorf("table %s has no columns", table)
	}

	indexes, err := p.tableIndexSQL(ctx, table)
	if err != nil {
		return err
	}

	defs := make([]string, 0, len(columns))
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		col = transform(col)
		def := quoteIdent(col.Name) + " " + col.Type
		if col.PrimaryKey {
			def += " PRIMARY KEY"
			if strings.EqualFold(col.Type, "INTEGER") {
				def += " AUTOINCREMENT"
			}
		}
		if col.NotNull && !col.PrimaryKey {
			def += " NOT NULL"
		}
		if col.Default != "" {
			def += " DEFAULT " + col.Default
		}
		defs = append(defs, def)
		names = append(names, quoteIdent(col.Name))
	}

	scratch := table + "__repair"
	columnList := strings.Join(names, ", ")
	statements := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(scratch)),
		fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(scratch), strings.Join(defs, ", ")),
		fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM %s`,
			quoteIdent(scratch), columnList, columnList, quoteIdent(table)),
		fmt.Sprintf(`DROP TABLE %s`, quoteIdent(table)),
		fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`, quoteIdent(scratch), quoteIdent(table)),
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%q: %w", stmt, err)
		}
	}

	// The rebuild is complete at this point and will not re-run once the
	// definition reads as repaired, so a failed index re-creation is logged
	// instead of returned.
	for _, stmt := range indexes {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			r.logger.Error("failed to restore index after table rebuild",
				"table", table, "statement", stmt, "error", err)
		}
	}

	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
