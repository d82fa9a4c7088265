package migration

// Migration is a single, identified, one-time schema or data change. The
// runner treats SQL as an opaque executable unit; it never inspects the
// statement text. Ids are caller-assigned and need not be contiguous, but the
// list order must be ascending.
type Migration struct {
	ID   int    // unique id recorded in the bookkeeping table
	Name string // human-readable label used in logs
	SQL  string // one or more statements separated by semicolons
}

// RepairRule adds a missing column to an existing table. Rules are evaluated
// on every start and are idempotent by construction: when the table does not
// exist yet (a later migration creates it) or the column is already present,
// the rule is a no-op.
type RepairRule struct {
	Table      string
	Column     string
	Definition string // column type and constraints, e.g. "TEXT NOT NULL DEFAULT ''"
}
