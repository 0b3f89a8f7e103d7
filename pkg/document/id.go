package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// DocumentID identifies a logical document across both stores. It wraps a
// 128-bit UUID and marshals to its canonical string form on every boundary
// the sync loop crosses: JSON, CBOR (search store records) and
// database/sql (column store rows).
type DocumentID struct {
	uuid uuid.UUID
}

// NewDocumentID returns a fresh random identifier.
func NewDocumentID() DocumentID {
	return DocumentID{uuid: uuid.New()}
}

// NewDocumentIDFromUUID wraps an existing UUID.
func NewDocumentIDFromUUID(id uuid.UUID) DocumentID {
	return DocumentID{uuid: id}
}

// ParseDocumentID parses the canonical string form.
func ParseDocumentID(s string) (DocumentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return DocumentID{}, fmt.Errorf("invalid document ID: %w", err)
	}
	return DocumentID{uuid: id}, nil
}

func (d DocumentID) UUID() uuid.UUID { return d.uuid }
func (d DocumentID) String() string  { return d.uuid.String() }
func (d DocumentID) IsZero() bool    { return d.uuid == uuid.Nil }

func (d DocumentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.uuid.String())
}

func (d *DocumentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	d.uuid = id
	return nil
}

// MarshalCBOR encodes the ID as its string form so search-store records
// carry the same representation as column-store rows.
func (d DocumentID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(d.uuid.String())
}

func (d *DocumentID) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("document ID: %w", err)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("document ID: %w", err)
	}
	d.uuid = id
	return nil
}

// Value implements driver.Valuer for the column store.
func (d DocumentID) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.uuid.String(), nil
}

// Scan implements sql.Scanner for the column store.
func (d *DocumentID) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		d.uuid = uuid.Nil
		return nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		d.uuid = id
		return nil
	case []byte:
		id, err := uuid.Parse(string(v))
		if err != nil {
			return err
		}
		d.uuid = id
		return nil
	default:
		return fmt.Errorf("cannot scan %T into DocumentID", value)
	}
}
