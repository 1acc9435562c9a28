package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document is the generic JSON document type used for configuration
// content, per-job configuration data and submission request/response
// snapshots. It implements driver.Valuer and sql.Scanner so that documents
// persist as JSON columns.
type Document map[string]interface{}

// NewDocument creates a new empty Document.
func NewDocument() Document {
	return make(Document)
}

// Value implements the `driver.Valuer` interface, converting the Document
// to a JSON string.
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to
// a Document.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = make(Document)
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for Document: %T", value)
	}

	if len(b) == 0 {
		*d = make(Document)
		return nil
	}

	if err := json.Unmarshal(b, d); err != nil {
		return fmt.Errorf("failed to unmarshal Document JSON: %w", err)
	}
	return nil
}

// Get retrieves the value for the specified key.
func (d Document) Get(key string) (interface{}, bool) {
	val, ok := d[key]
	return val, ok
}

// GetString retrieves the value for the specified key as a string.
func (d Document) GetString(key string) (string, bool) {
	val, ok := d[key]
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// Put sets a value in the Document.
func (d Document) Put(key string, value interface{}) {
	d[key] = value
}

// Copy creates a shallow copy of the Document.
func (d Document) Copy() Document {
	copied := make(Document, len(d))
	for k, v := range d {
		copied[k] = v
	}
	return copied
}

// DeepCopy creates a deep copy of the Document via a JSON round trip, so
// nested maps and slices do not share storage with the original. Documents
// only ever hold JSON-representable values, so the round trip is lossless
// apart from numeric widening to float64.
func (d Document) DeepCopy() Document {
	if d == nil {
		return nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		// A Document that cannot round-trip holds a non-JSON value; fall
		// back to a shallow copy rather than losing the data.
		return d.Copy()
	}
	copied := make(Document, len(d))
	if err := json.Unmarshal(data, &copied); err != nil {
		return d.Copy()
	}
	return copied
}

// StatusCounts holds per-status job counts captured by a reconciliation
// audit record. It persists as a JSON column.
type StatusCounts map[JobStatus]int

// Value implements the `driver.Valuer` interface, converting StatusCounts
// to a JSON string.
func (c StatusCounts) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to
// StatusCounts.
func (c *StatusCounts) Scan(value interface{}) error {
	if value == nil {
		*c = make(StatusCounts)
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for StatusCounts: %T", value)
	}

	if len(b) == 0 {
		*c = make(StatusCounts)
		return nil
	}

	if err := json.Unmarshal(b, c); err != nil {
		return fmt.Errorf("failed to unmarshal StatusCounts JSON: %w", err)
	}
	return nil
}

// Total returns the sum of all counts.
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
