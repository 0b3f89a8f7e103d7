package sync_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docbridge/docbridge/pkg/document"
	"github.com/docbridge/docbridge/pkg/sync"
)

func TestMaxObservedPicksLatestAcrossSets(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := []document.Document{doc(base.Add(time.Second)), doc(base.Add(3 * time.Second))}
	b := []document.Document{doc(base.Add(2 * time.Second))}

	got := sync.MaxObserved(base, a, b)
	assert.Equal(t, base.Add(3*time.Second), got)
}

func TestMaxObservedNeverDecreases(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// No documents fetched: the watermark holds.
	assert.Equal(t, base, sync.MaxObserved(base))

	// Only older documents fetched: the watermark still holds.
	older := []document.Document{doc(base.Add(-time.Hour))}
	assert.Equal(t, base, sync.MaxObserved(base, older))
}
