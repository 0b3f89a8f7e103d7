// Package docbridge keeps a SurrealDB table and a PostgreSQL table containing the
// same documents in sync, both ways, on a fixed period.
//
// Each cycle fetches the documents written to either store since the last
// successful cycle, diffs the two sides by document id, and replays whatever one
// side is missing into the other. Upserts are keyed by id and preserve the
// document's original timestamp, so replaying a window twice is harmless and a
// replayed document is not mistaken for a new write on the destination.
//
// The command line mirrors the stores' connection settings through flags and
// environment variables; see Parse for the full usage text.
package docbridge
