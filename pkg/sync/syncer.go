package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/docbridge/docbridge/pkg/document"
	"github.com/docbridge/docbridge/pkg/store"
)

// Syncer runs the fetch-diff-replay-advance cycle between two stores.
// A and B are interchangeable; the orchestrator never knows which
// concrete backend sits behind either side.
type Syncer struct {
	A store.Store
	B store.Store

	// Period is the fixed delay between the end of one cycle and the
	// start of the next. It doubles as the retry interval after a failed
	// cycle; there is no additional backoff.
	Period time.Duration

	Log zerolog.Logger

	// Verbose logs every detected missing document and every replay
	// outcome. Without it only cycle-level summaries and errors appear.
	Verbose bool
}

// RunCycle executes one synchronization cycle against the window
// (since, now] and returns the next watermark.
//
// A fetch failure on either side aborts the cycle before any replay: the
// error is returned and the watermark is unchanged. Individual replay
// failures are logged, skipped and counted; the remaining replays still
// run, but any failure suppresses watermark advancement for the whole
// cycle so the failed documents are re-detected next period. Only a cycle
// with zero errors advances the watermark, to the maximum timestamp
// observed across both fetched sets.
func (s *Syncer) RunCycle(ctx context.Context, since time.Time) (time.Time, error) {
	sideA, err := s.A.FetchSince(ctx, since)
	if err != nil {
		return since, err
	}
	sideB, err := s.B.FetchSince(ctx, since)
	if err != nil {
		return since, err
	}

	missingInB, missingInA := Diff(sideA, sideB)
	if s.Verbose {
		for _, doc := range missingInB {
			s.Log.Debug().Stringer("id", doc.ID).Str("missing_from", s.B.Name()).Msg("detected missing document")
		}
		for _, doc := range missingInA {
			s.Log.Debug().Stringer("id", doc.ID).Str("missing_from", s.A.Name()).Msg("detected missing document")
		}
	}

	// The two replay directions touch independent stores, so they run
	// concurrently. Both must finish before the advance decision.
	var failedB, failedA int
	var g errgroup.Group
	g.Go(func() error {
		failedB = s.replay(ctx, s.B, missingInB)
		return nil
	})
	g.Go(func() error {
		failedA = s.replay(ctx, s.A, missingInA)
		return nil
	})
	_ = g.Wait()

	failed := failedA + failedB
	if failed > 0 {
		s.Log.Warn().
			Int("replayed", len(missingInA)+len(missingInB)-failed).
			Int("failed", failed).
			Time("watermark", since).
			Msg("cycle degraded, watermark held")
		return since, nil
	}

	next := MaxObserved(since, sideA, sideB)
	s.Log.Info().
		Str("a", s.A.Name()).Int("fetched_a", len(sideA)).Int("replayed_a", len(missingInA)).
		Str("b", s.B.Name()).Int("fetched_b", len(sideB)).Int("replayed_b", len(missingInB)).
		Time("watermark", next).
		Msg("cycle complete")
	return next, nil
}

// replay upserts each document into dst, logging and skipping individual
// failures. It returns the number of failed replays.
func (s *Syncer) replay(ctx context.Context, dst store.Store, docs []document.Document) int {
	failed := 0
	for _, doc := range docs {
		if err := dst.Upsert(ctx, doc); err != nil {
			rerr := &ReplayError{Store: dst.Name(), ID: doc.ID, Err: err}
			s.Log.Warn().Err(rerr).Msg("replay failed")
			failed++
			continue
		}
		if s.Verbose {
			s.Log.Debug().Stringer("id", doc.ID).Str("into", dst.Name()).Msg("replayed document")
		}
	}
	return failed
}

// Run drives cycles forever, starting from the given watermark. The delay
// is fixed rather than fixed-rate: cycle N+1 never starts before cycle N's
// sleep completes, so a slow replay simply drifts the schedule. A cycle
// error is logged and retried at the next period. Run returns when ctx is
// canceled, letting any in-flight cycle finish first.
func (s *Syncer) Run(ctx context.Context, watermark time.Time) error {
	timer := time.NewTimer(s.Period)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		next, err := s.RunCycle(ctx, watermark)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			s.Log.Error().Err(err).Time("watermark", watermark).Msg("cycle aborted")
		default:
			watermark = next
		}

		timer.Reset(s.Period)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
