// Package models defines the flat record structures shared by the toolkit.
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Kind tags the scalar variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindTime
)

// Value is a tagged scalar: string, number, timestamp, or null.
type Value struct {
	kind Kind
	str  string
	num  float64
	ts   time.Time
}

// String wraps a text value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number wraps a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Int wraps an integer as a numeric value.
func Int(i int) Value {
	return Number(float64(i))
}

// Time wraps a timestamp value.
func Time(t time.Time) Value {
	return Value{kind: KindTime, ts: t}
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Kind reports the scalar variant.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Text renders the value for tabular cells. Null renders empty.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.ts.Format(time.RFC3339)
	default:
		return ""
	}
}

// Native returns the value as a plain Go type suitable for SQL drivers
// and spreadsheet cells. Null maps to nil.
func (v Value) Native() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindTime:
		return v.ts
	default:
		return nil
	}
}

// MarshalJSON encodes the underlying scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// Record is an ordered mapping from field name to scalar value.
// Field insertion order is preserved; setting an existing field
// replaces its value in place.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores a field value, appending the key on first use.
// It returns the record to allow chained construction.
func (r *Record) Set(key string, v Value) *Record {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
	return r
}

// Get returns the value for key and whether the field is present.
// A nil record has no fields.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the field is present.
func (r *Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.values[key]
	return ok
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// MarshalJSON encodes the record as an object with keys in
// insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Batch is an ordered sequence of records. Insertion order is
// preserved for reproducible output row order.
type Batch []*Record

// Empty reports whether the batch holds no records.
func (b Batch) Empty() bool {
	return len(b) == 0
}

// Fields returns the union of field names across the batch in
// first-seen order. Batches are not required to share a schema.
func (b Batch) Fields() []string {
	var fields []string
	seen := make(map[string]struct{})
	for _, record := range b {
		if record == nil {
			continue
		}
		for _, key := range record.keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			fields = append(fields, key)
		}
	}
	return fields
}
