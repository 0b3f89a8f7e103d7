// Package document defines the unit of replication shared by every store
// adapter: an immutable value carrying an identifier, routing metadata,
// a last-write timestamp and arbitrary JSON content.
package document

import (
	"fmt"
	"time"
)

// Document is the unit of replication. Two documents with the same ID are
// the same logical document regardless of content; replication ensures
// presence, it never merges content.
type Document struct {
	ID        DocumentID `json:"id"`
	Index     string     `json:"index"`
	Type      string     `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Content   JSONMap    `json:"content"`
}

// Option customizes a document at construction time.
type Option func(*Document)

// WithID sets an explicit identifier instead of generating one.
func WithID(id DocumentID) Option {
	return func(d *Document) { d.ID = id }
}

// WithTimestamp sets an explicit last-write timestamp instead of the
// current time. Replay uses this so a replicated document keeps the
// timestamp of its original write.
func WithTimestamp(t time.Time) Option {
	return func(d *Document) { d.Timestamp = t }
}

// New builds a document for the given index and type. When no WithID
// option is passed a fresh random identifier is generated; when no
// WithTimestamp option is passed the current time is used.
func New(index, typ string, content JSONMap, opts ...Option) Document {
	doc := Document{
		Index:   index,
		Type:    typ,
		Content: content,
	}
	for _, opt := range opts {
		opt(&doc)
	}
	if doc.ID.IsZero() {
		doc.ID = NewDocumentID()
	}
	if doc.Timestamp.IsZero() {
		doc.Timestamp = time.Now()
	}
	return doc
}

func (d Document) String() string {
	return fmt.Sprintf("<id: %s, index: %s, type: %s, timestamp: %s>",
		d.ID, d.Index, d.Type, d.Timestamp.Format(time.RFC3339Nano))
}
