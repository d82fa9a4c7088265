// Package migration brings the database schema up to date at process start.
//
// Two mechanisms cooperate, in order:
//
//  1. A repair pass: a fixed set of idempotent check-and-fix rules that are
//     re-evaluated on every start. Generic rules add missing columns to
//     tables that already exist; a handful of targeted repairs fix
//     incompatible column definitions left behind by older deployments.
//     Repairs carry no applied-state bookkeeping.
//
//  2. A fixed, ordered, in-code list of numbered migrations. A bookkeeping
//     table, migrations(id INTEGER PRIMARY KEY), records which ids have run;
//     presence of a row means applied. Each pending migration is executed in
//     ascending id order and recorded on success. A failing migration is
//     logged, left unrecorded, and retried in full on the next start; later
//     migrations still run. Ids are never removed and applied migrations are
//     never re-executed, so editing an already-applied migration's SQL has no
//     effect on deployed databases.
//
// Every migration's SQL is written to be safe under partial application
// (CREATE TABLE IF NOT EXISTS, INSERT OR IGNORE) because nothing rolls back.
// The whole pass runs on a single borrowed connection that is returned to the
// pool on every exit path, and it never fails startup: only the inability to
// borrow a connection at all is reported to the caller, and even that is
// treated by the bootstrap as a degraded start rather than a fatal error.
package migration
