package store

import "fmt"

// UnavailableError reports that a backend could not serve a fetch or
// upsert. It aborts the current sync cycle without corrupting state; the
// orchestrator retries at the next period.
type UnavailableError struct {
	Store string
	Op    string
	Err   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable during %s: %v", e.Store, e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// SchemaError reports that a store's backing collection could not be
// created or validated. It is fatal at startup.
type SchemaError struct {
	Store string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s schema setup failed: %v", e.Store, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
