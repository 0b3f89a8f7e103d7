// Package postgres implements the column-store side of the document store
// capability on PostgreSQL through GORM. Documents live in a single table
// with columns id, index_, type, timestamp and content, where content is
// the JSON-serialized document body and timestamp carries an index so the
// sync loop's "timestamp > T" window scans stay cheap.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/docbridge/docbridge/pkg/document"
	"github.com/docbridge/docbridge/pkg/store"
)

// row mirrors the table layout. index_ keeps the underscore because index
// is reserved in SQL.
type row struct {
	ID        document.DocumentID `gorm:"column:id;type:uuid;primaryKey"`
	Index     string              `gorm:"column:index_;not null"`
	Type      string              `gorm:"column:type;not null"`
	Timestamp time.Time           `gorm:"column:timestamp;index;not null"`
	Content   string              `gorm:"column:content;type:text"`
}

// Store implements store.Store on a PostgreSQL table.
type Store struct {
	db    *gorm.DB
	table string
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidTableName reports whether name is a plain, optionally
// schema-qualified identifier. The table name reaches SQL unquoted, so
// anything else is rejected up front.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// New connects to PostgreSQL and targets the given table. The table is
// not created here; EnsureSchema does that.
func New(dsn, table string) (*Store, error) {
	if !ValidTableName(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return &Store{db: db, table: table}, nil
}

func (s *Store) Name() string { return "postgres" }

// EnsureSchema creates the table and its timestamp index if absent.
// AutoMigrate only adds missing schema elements, so repeated calls are
// safe.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Table(s.table).AutoMigrate(&row{}); err != nil {
		return &store.SchemaError{Store: s.Name(), Err: err}
	}
	return nil
}

func (s *Store) FetchSince(ctx context.Context, since time.Time) ([]document.Document, error) {
	var rows []row
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("timestamp > ?", since).
		Find(&rows).Error
	if err != nil {
		return nil, &store.UnavailableError{Store: s.Name(), Op: "fetch", Err: err}
	}

	docs := make([]document.Document, 0, len(rows))
	for _, r := range rows {
		doc, err := r.toDocument()
		if err != nil {
			return nil, &store.UnavailableError{Store: s.Name(), Op: "fetch", Err: err}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) Upsert(ctx context.Context, doc document.Document) error {
	r, err := rowFromDocument(doc)
	if err != nil {
		return &store.UnavailableError{Store: s.Name(), Op: "upsert", Err: err}
	}
	err = s.db.WithContext(ctx).
		Table(s.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"index_", "type", "timestamp", "content"}),
		}).
		Create(&r).Error
	if err != nil {
		return &store.UnavailableError{Store: s.Name(), Op: "upsert", Err: err}
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func rowFromDocument(doc document.Document) (row, error) {
	content, err := json.Marshal(doc.Content)
	if err != nil {
		return row{}, fmt.Errorf("encoding content of %s: %w", doc.ID, err)
	}
	return row{
		ID:        doc.ID,
		Index:     doc.Index,
		Type:      doc.Type,
		Timestamp: doc.Timestamp,
		Content:   string(content),
	}, nil
}

func (r row) toDocument() (document.Document, error) {
	var content document.JSONMap
	if r.Content != "" {
		if err := json.Unmarshal([]byte(r.Content), &content); err != nil {
			return document.Document{}, fmt.Errorf("decoding content of %s: %w", r.ID, err)
		}
	}
	return document.Document{
		ID:        r.ID,
		Index:     r.Index,
		Type:      r.Type,
		Timestamp: r.Timestamp,
		Content:   content,
	}, nil
}
