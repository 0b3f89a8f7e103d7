package surreal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docbridge/docbridge/pkg/document"
)

func TestRecordDocumentRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := document.New("myindex", "mytype", document.JSONMap{"author": "pouet"},
		document.WithTimestamp(ts))

	r := recordFromDocument(doc)
	assert.Equal(t, doc.ID, r.DocID)
	assert.Equal(t, "myindex", r.Index)
	assert.Equal(t, "mytype", r.Type)
	assert.True(t, r.Timestamp.Equal(ts))

	assert.Equal(t, doc, r.toDocument())
}
