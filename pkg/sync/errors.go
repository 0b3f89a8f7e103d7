package sync

import (
	"fmt"

	"github.com/docbridge/docbridge/pkg/document"
)

// ReplayError reports that replaying one missing document into a store
// failed. The document is skipped, the remaining replays continue, and
// the cycle is marked degraded so the watermark does not advance and the
// document is re-detected next cycle.
type ReplayError struct {
	Store string
	ID    document.DocumentID
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay of %s into %s failed: %v", e.ID, e.Store, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }
