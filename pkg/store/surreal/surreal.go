// Package surreal implements the search-store side of the document store
// capability on SurrealDB. All documents live in one table regardless of
// their index and type, which stay on the record as routing metadata, and
// the record's timestamp field is indexed so the sync loop's windowed
// fetches are served from the index.
package surreal

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/docbridge/docbridge/pkg/document"
	"github.com/docbridge/docbridge/pkg/store"
)

// record is the table row. The record ID is derived from the document ID
// so upserts are keyed naturally; doc_id repeats the identifier as a plain
// field to keep fetches free of record-ID decoding.
type record struct {
	DocID     document.DocumentID `json:"doc_id"`
	Index     string              `json:"index"`
	Type      string              `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Content   document.JSONMap    `json:"content"`
}

// Config carries the connection settings for a SurrealDB store.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	Table     string
}

// Store implements store.Store on a SurrealDB table.
type Store struct {
	db    *surrealdb.DB
	table string
}

// New connects to SurrealDB over WebSocket with the surrealcbor codec,
// signs in when credentials are given and selects the namespace/database.
func New(ctx context.Context, cfg Config) (*Store, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SurrealDB URL: %w", err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{db: db, table: cfg.Table}, nil
}

func (s *Store) Name() string { return "surrealdb" }

// EnsureSchema defines the table, its timestamp field and the index
// backing windowed fetches. SurrealQL DDL cannot be parameterized; the
// table name is validated as an identifier at configuration time before
// it is interpolated here.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		DEFINE TABLE IF NOT EXISTS %[1]s SCHEMALESS;
		DEFINE FIELD IF NOT EXISTS timestamp ON %[1]s TYPE datetime;
		DEFINE INDEX IF NOT EXISTS %[1]s_timestamp ON %[1]s FIELDS timestamp;`, s.table)
	if _, err := surrealdb.Query[any](ctx, s.db, ddl, nil); err != nil {
		return &store.SchemaError{Store: s.Name(), Err: err}
	}
	return nil
}

func (s *Store) FetchSince(ctx context.Context, since time.Time) ([]document.Document, error) {
	query := fmt.Sprintf(
		"SELECT doc_id, index, type, timestamp, content FROM %s WHERE timestamp > $since", s.table)
	res, err := surrealdb.Query[[]record](ctx, s.db, query, map[string]any{"since": since})
	if err != nil {
		return nil, &store.UnavailableError{Store: s.Name(), Op: "fetch", Err: err}
	}

	var docs []document.Document
	if res != nil && len(*res) > 0 {
		docs = make([]document.Document, 0, len((*res)[0].Result))
		for _, r := range (*res)[0].Result {
			docs = append(docs, r.toDocument())
		}
	}
	return docs, nil
}

func (s *Store) Upsert(ctx context.Context, doc document.Document) error {
	rid := surrealmodels.NewRecordID(s.table, doc.ID.String())
	if _, err := surrealdb.Upsert[record](ctx, s.db, rid, recordFromDocument(doc)); err != nil {
		return &store.UnavailableError{Store: s.Name(), Op: "upsert", Err: err}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

func recordFromDocument(doc document.Document) record {
	return record{
		DocID:     doc.ID,
		Index:     doc.Index,
		Type:      doc.Type,
		Timestamp: doc.Timestamp,
		Content:   doc.Content,
	}
}

func (r record) toDocument() document.Document {
	return document.Document{
		ID:        r.DocID,
		Index:     r.Index,
		Type:      r.Type,
		Timestamp: r.Timestamp,
		Content:   r.Content,
	}
}
