// Package store defines the capability every backend adapter must provide
// to take part in synchronization, together with the error taxonomy the
// orchestrator keys its retry behavior on.
package store

import (
	"context"
	"time"

	"github.com/docbridge/docbridge/pkg/document"
)

// Store is the document-store capability. The sync loop only ever talks to
// this interface; it never knows which concrete backend it is driving.
type Store interface {
	// Name identifies the store in logs and errors.
	Name() string

	// FetchSince returns every document whose timestamp is strictly
	// greater than since, across all indices and types. The result is
	// finite; ordering is not guaranteed. Failures are reported as
	// *UnavailableError.
	FetchSince(ctx context.Context, since time.Time) ([]document.Document, error)

	// Upsert inserts the document or replaces the record with the same ID,
	// writing the document's own timestamp rather than the time of the
	// call. Preserving the original timestamp keeps replayed writes below
	// the advancing watermark so they are not re-detected next cycle.
	Upsert(ctx context.Context, doc document.Document) error

	// EnsureSchema idempotently creates the backing collection, its
	// timestamp field and the index supporting "timestamp > T" scans.
	// Called once at startup, outside the sync loop. Failures are
	// reported as *SchemaError and are fatal.
	EnsureSchema(ctx context.Context) error

	Close() error
}
