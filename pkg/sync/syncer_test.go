package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbridge/docbridge/pkg/document"
	"github.com/docbridge/docbridge/pkg/store"
	"github.com/docbridge/docbridge/pkg/store/memory"
	"github.com/docbridge/docbridge/pkg/sync"
)

func newSyncer(a, b *memory.Store) *sync.Syncer {
	return &sync.Syncer{
		A:      a,
		B:      b,
		Period: time.Millisecond,
		Log:    zerolog.Nop(),
	}
}

// Scenario: one document in A, B empty. One cycle replicates it to B with
// identical fields and advances the watermark to at least its timestamp.
func TestCycleReplicatesMissingDocument(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC)
	a, b := memory.New("a"), memory.New("b")
	src := document.New("idx", "typ", document.JSONMap{"a": float64(1)},
		document.WithTimestamp(ts))
	a.Put(src)

	next, err := newSyncer(a, b).RunCycle(context.Background(), time.Time{})
	require.NoError(t, err)

	got, ok := b.Get(src.ID)
	require.True(t, ok)
	assert.Equal(t, src.ID, got.ID)
	assert.Equal(t, src.Index, got.Index)
	assert.Equal(t, src.Type, got.Type)
	assert.True(t, got.Timestamp.Equal(ts), "replay must preserve the original timestamp")
	assert.Equal(t, src.Content, got.Content)
	assert.False(t, next.Before(ts), "watermark must advance to at least the observed timestamp")
}

// Scenario: both stores already hold the document; no upserts happen.
func TestCycleNoFalsePositives(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := memory.New("a"), memory.New("b")
	shared := document.New("idx", "typ", document.JSONMap{"x": true},
		document.WithTimestamp(ts))
	a.Put(shared)
	b.Put(shared)

	_, err := newSyncer(a, b).RunCycle(context.Background(), time.Time{})
	require.NoError(t, err)

	assert.Zero(t, a.UpsertCount(shared.ID))
	assert.Zero(t, b.UpsertCount(shared.ID))
}

// Scenario: fetch on B fails. The cycle aborts before any replay and the
// watermark does not advance.
func TestCycleFetchFailureAborts(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := memory.New("a"), memory.New("b")
	a.Put(document.New("idx", "typ", nil, document.WithTimestamp(ts)))
	b.SetFailFetch(errors.New("connection refused"))

	since := ts.Add(-time.Hour)
	next, err := newSyncer(a, b).RunCycle(context.Background(), since)

	var unavailable *store.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "b", unavailable.Store)
	assert.True(t, next.Equal(since), "watermark must not advance on a fetch failure")
	assert.Zero(t, b.Len())
	assert.Equal(t, 1, a.Len(), "no replay into A from B's unfetched data")
}

// Scenario: one of two replays fails. The other succeeds, the watermark
// holds, and the next cycle retries the failed document.
func TestCycleReplayFailureHoldsWatermark(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := memory.New("a"), memory.New("b")
	good := document.New("idx", "typ", nil, document.WithTimestamp(ts))
	bad := document.New("idx", "typ", nil, document.WithTimestamp(ts.Add(time.Second)))
	a.Put(good)
	a.Put(bad)
	b.SetFailUpsert(func(id document.DocumentID) error {
		if id == bad.ID {
			return errors.New("write timeout")
		}
		return nil
	})

	since := ts.Add(-time.Hour)
	s := newSyncer(a, b)
	next, err := s.RunCycle(context.Background(), since)
	require.NoError(t, err, "a degraded cycle is not an aborted cycle")

	_, ok := b.Get(good.ID)
	assert.True(t, ok, "the successful replay must be visible")
	_, ok = b.Get(bad.ID)
	assert.False(t, ok)
	assert.True(t, next.Equal(since), "any replay failure suppresses advancement")

	// Next period the backend recovered; the same window is rescanned and
	// the failed document is re-detected and replayed.
	b.SetFailUpsert(nil)
	next, err = s.RunCycle(context.Background(), next)
	require.NoError(t, err)
	_, ok = b.Get(bad.ID)
	assert.True(t, ok)
	assert.False(t, next.Before(bad.Timestamp))
}

// Replaying the same document again leaves the store in the same
// observable state as replaying it once.
func TestCycleIdempotent(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := memory.New("a"), memory.New("b")
	src := document.New("idx", "typ", document.JSONMap{"k": "v"},
		document.WithTimestamp(ts))
	a.Put(src)

	s := newSyncer(a, b)
	since := time.Time{}
	next, err := s.RunCycle(context.Background(), since)
	require.NoError(t, err)
	first, _ := b.Get(src.ID)

	// Re-running over the same window replays the same upsert again.
	_, err = s.RunCycle(context.Background(), since)
	require.NoError(t, err)
	second, _ := b.Get(src.ID)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, b.Len())
	assert.False(t, next.Before(ts))
}

// Completeness both ways: after one cycle each store holds the union.
func TestCycleCompletenessAndSymmetry(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := memory.New("a"), memory.New("b")
	var docs []document.Document
	for i := 0; i < 5; i++ {
		d := document.New("idx", "typ", document.JSONMap{"i": float64(i)},
			document.WithTimestamp(base.Add(time.Duration(i)*time.Second)))
		docs = append(docs, d)
		if i%2 == 0 {
			a.Put(d)
		} else {
			b.Put(d)
		}
	}

	next, err := newSyncer(a, b).RunCycle(context.Background(), time.Time{})
	require.NoError(t, err)

	for _, want := range docs {
		gotA, okA := a.Get(want.ID)
		gotB, okB := b.Get(want.ID)
		require.True(t, okA, "document %s missing from a", want.ID)
		require.True(t, okB, "document %s missing from b", want.ID)
		assert.Equal(t, want, gotA)
		assert.Equal(t, want, gotB)
	}
	assert.True(t, next.Equal(base.Add(4*time.Second)))
}

// A replayed write carries its original timestamp, which is at or below
// the new watermark, so the next cycle's window excludes it: no replay
// ping-pong between the stores.
func TestReplayDoesNotLoop(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := memory.New("a"), memory.New("b")
	src := document.New("idx", "typ", nil, document.WithTimestamp(ts))
	a.Put(src)

	s := newSyncer(a, b)
	next, err := s.RunCycle(context.Background(), ts.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, b.UpsertCount(src.ID))

	// Second cycle starts from the advanced watermark; nothing is fetched
	// and nothing is replayed again.
	_, err = s.RunCycle(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, 1, b.UpsertCount(src.ID))
	assert.Zero(t, a.UpsertCount(src.ID))
}

func TestRunStopsOnCancel(t *testing.T) {
	a, b := memory.New("a"), memory.New("b")
	s := newSyncer(a, b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Now()) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRunRetriesAfterFailedCycle(t *testing.T) {
	ts := time.Now().Add(time.Hour)
	a, b := memory.New("a"), memory.New("b")
	src := document.New("idx", "typ", nil, document.WithTimestamp(ts))
	a.Put(src)
	b.SetFailFetch(errors.New("connection refused"))

	s := newSyncer(a, b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Now()) }()

	// Let a few failing cycles pass, then heal the backend.
	time.Sleep(10 * time.Millisecond)
	b.SetFailFetch(nil)

	require.Eventually(t, func() bool {
		_, ok := b.Get(src.ID)
		return ok
	}, time.Second, time.Millisecond, "document must be replicated once the backend recovers")

	cancel()
	<-done
}

func TestVerboseCycleLogsDetections(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, b := memory.New("a"), memory.New("b")
	a.Put(document.New("idx", "typ", nil, document.WithTimestamp(ts)))

	var buf logBuffer
	s := newSyncer(a, b)
	s.Log = zerolog.New(&buf)
	s.Verbose = true

	_, err := s.RunCycle(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "detected missing document")
	assert.Contains(t, buf.String(), "replayed document")
}

type logBuffer struct {
	data []byte
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *logBuffer) String() string { return string(b.data) }
