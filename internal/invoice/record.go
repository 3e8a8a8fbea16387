package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one scalar label/value pair of a Record.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Record is the structured result for one document.
//
// The zero value is an empty record ready for use. A Record is not safe for
// concurrent mutation; each document owns its own.
type Record struct {
	order  []string // labels in first-seen order, TableLabel included
	fields map[string]string
	table  *Table
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{}
}

// Set stores a scalar value under label. If the label already exists its
// value is replaced in place and Set reports true.
//
// The table slot is written only through SetTable: Set ignores any label
// IsTableLabel accepts and reports false.
func (r *Record) Set(label, value string) (replaced bool) {
	if IsTableLabel(label) {
		return false
	}
	if r.fields == nil {
		r.fields = make(map[string]string)
	}
	if _, ok := r.fields[label]; ok {
		replaced = true
	} else {
		r.order = append(r.order, label)
	}
	r.fields[label] = value
	return replaced
}

// SetTable stores the document's table. A second call replaces the first and
// reports true.
func (r *Record) SetTable(t Table) (replaced bool) {
	if r.table != nil {
		replaced = true
	} else {
		r.order = append(r.order, TableLabel)
	}
	r.table = &t
	return replaced
}

// Field returns the scalar value stored under label.
func (r *Record) Field(label string) (string, bool) {
	v, ok := r.fields[label]
	return v, ok
}

// Table returns the document's table, if a table region was detected.
func (r *Record) Table() (Table, bool) {
	if r.table == nil {
		return Table{}, false
	}
	return *r.table, true
}

// Fields returns the scalar fields in first-seen order.
func (r *Record) Fields() []Field {
	out := make([]Field, 0, len(r.fields))
	for _, label := range r.order {
		if v, ok := r.fields[label]; ok {
			out = append(out, Field{Label: label, Value: v})
		}
	}
	return out
}

// Len returns the number of entries, the table included.
func (r *Record) Len() int {
	return len(r.order)
}

// MarshalJSON writes the record as a single object in first-seen label
// order, with the table payload under TableLabel.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if label == TableLabel && r.table != nil {
			k, _ := json.Marshal(label)
			buf.Write(k)
			buf.WriteByte(':')
			b, err := r.table.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
			continue
		}
		if err := writeKeyValue(&buf, label, r.fields[label]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	*r = Record{}
	for dec.More() {
		label, err := readKey(dec)
		if err != nil {
			return err
		}
		if IsTableLabel(label) {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("record %s: %w", label, err)
			}
			var t Table
			if err := t.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("record %s: %w", label, err)
			}
			r.SetTable(t)
			continue
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("record %s: %w", label, err)
		}
		r.Set(label, value)
	}
	return expectDelim(dec, '}')
}
