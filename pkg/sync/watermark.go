package sync

import (
	"time"

	"github.com/docbridge/docbridge/pkg/document"
)

// The watermark is the timestamp boundary below which both stores are
// assumed synchronized. It is a plain value threaded through cycle
// invocations rather than ambient state: RunCycle takes the previous
// watermark and returns the next, so tests drive cycles deterministically.
//
// It advances only after a cycle completes fetch, diff and replay for both
// stores without a single error, and then only to the maximum timestamp
// observed across both fetched sets. A failed cycle leaves it untouched,
// so the same window is rescanned next period; replays are idempotent by
// ID, which makes the rescan safe.

// MaxObserved returns the latest timestamp seen across the given document
// sets, never earlier than prev. With no documents fetched the watermark
// holds its previous value, keeping it monotonically non-decreasing.
func MaxObserved(prev time.Time, sets ...[]document.Document) time.Time {
	max := prev
	for _, docs := range sets {
		for _, doc := range docs {
			if doc.Timestamp.After(max) {
				max = doc.Timestamp
			}
		}
	}
	return max
}
