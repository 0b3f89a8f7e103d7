// Package memory provides an in-memory document store used by tests and
// dry runs. Failures can be injected per operation so sync cycles can be
// exercised against unavailable or flaky backends without a network.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/docbridge/docbridge/pkg/document"
	"github.com/docbridge/docbridge/pkg/store"
)

// Store keeps documents keyed by ID. The zero value is not usable; call New.
type Store struct {
	name string

	mu         sync.Mutex
	docs       map[document.DocumentID]document.Document
	upserts    map[document.DocumentID]int
	failFetch  error
	failUpsert func(id document.DocumentID) error
}

func New(name string) *Store {
	return &Store{
		name:    name,
		docs:    make(map[document.DocumentID]document.Document),
		upserts: make(map[document.DocumentID]int),
	}
}

func (s *Store) Name() string { return s.name }

// SetFailFetch makes every FetchSince fail with an UnavailableError
// wrapping err; nil restores normal operation.
func (s *Store) SetFailFetch(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFetch = err
}

// SetFailUpsert installs a per-document failure hook; a non-nil return
// fails that single upsert with an UnavailableError. Nil restores normal
// operation.
func (s *Store) SetFailUpsert(fn func(id document.DocumentID) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpsert = fn
}

func (s *Store) FetchSince(ctx context.Context, since time.Time) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFetch != nil {
		return nil, &store.UnavailableError{Store: s.name, Op: "fetch", Err: s.failFetch}
	}
	var out []document.Document
	for _, doc := range s.docs {
		if doc.Timestamp.After(since) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *Store) Upsert(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpsert != nil {
		if err := s.failUpsert(doc.ID); err != nil {
			return &store.UnavailableError{Store: s.name, Op: "upsert", Err: err}
		}
	}
	s.docs[doc.ID] = doc
	s.upserts[doc.ID]++
	return nil
}

func (s *Store) EnsureSchema(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Put seeds a document without counting it as an upsert, for arranging
// test fixtures.
func (s *Store) Put(doc document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

// Get returns the stored document with the given ID.
func (s *Store) Get(id document.DocumentID) (document.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	return doc, ok
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// UpsertCount reports how many times Upsert was called for the given ID.
func (s *Store) UpsertCount(id document.DocumentID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts[id]
}
