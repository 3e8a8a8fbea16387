package invoice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// unparseableMessage is the payload written for the unparseable sentinel.
const unparseableMessage = "Unable to parse table"

// Cell is one header/value pair of a table row.
type Cell struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// TableRow is an ordered header -> cell mapping for one recognized line.
//
// Cells follow the table's header order. Duplicate headers produce repeated
// cells with the same Header; lookups by header return the first one.
type TableRow struct {
	// Position is the line's 1-based offset among the lines after the header.
	// Dropped lines leave gaps, so positions are not necessarily contiguous.
	Position int `json:"position"`

	Cells []Cell `json:"cells"`
}

// Get returns the value of the first cell with the given header.
func (r TableRow) Get(header string) (string, bool) {
	for _, c := range r.Cells {
		if c.Header == header {
			return c.Value, true
		}
	}
	return "", false
}

// Values returns the cell values in column order.
func (r TableRow) Values() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Value
	}
	return out
}

// MarshalJSON writes the row as an object keyed by header in column order.
// Duplicate headers are written as repeated keys.
func (r TableRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKeyValue(&buf, c.Header, c.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is the reconstructed line-item table of a document.
//
// A Table with a non-nil Err is a sentinel: the region was detected but its
// text could not be parsed. Headers and Rows are empty in that case.
type Table struct {
	Headers []string
	Rows    []TableRow
	Err     error
}

// UnparseableTable returns the sentinel table value.
func UnparseableTable() Table {
	return Table{Err: ErrUnparseableTable}
}

// Parsed reports whether the table holds rows rather than a sentinel.
func (t Table) Parsed() bool {
	return t.Err == nil
}

// MarshalJSON writes the table as {"<position>": {row}, ...}, or as
// {"error": "Unable to parse table"} for the sentinel.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if !t.Parsed() {
		msg := unparseableMessage
		if !errors.Is(t.Err, ErrUnparseableTable) {
			msg = t.Err.Error()
		}
		if err := writeKeyValue(&buf, "error", msg); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(strconv.Itoa(row.Position))
		buf.Write(key)
		buf.WriteByte(':')
		b, err := row.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the form written by MarshalJSON. Key order inside rows
// is preserved, including repeated keys.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	*t = Table{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		if key == "error" {
			var msg string
			if err := dec.Decode(&msg); err != nil {
				return fmt.Errorf("table error value: %w", err)
			}
			t.Err = ErrUnparseableTable
			continue
		}
		pos, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("table row key %q is not a position", key)
		}
		cells, err := readStringObject(dec)
		if err != nil {
			return fmt.Errorf("table row %d: %w", pos, err)
		}
		t.Rows = append(t.Rows, TableRow{Position: pos, Cells: cells})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	if t.Err != nil {
		t.Rows = nil
		return nil
	}
	if len(t.Rows) > 0 {
		t.Headers = make([]string, len(t.Rows[0].Cells))
		for i, c := range t.Rows[0].Cells {
			t.Headers[i] = c.Header
		}
	}
	return nil
}

func writeKeyValue(buf *bytes.Buffer, key, value string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// readStringObject reads a flat object of scalar values as ordered cells.
func readStringObject(dec *json.Decoder) ([]Cell, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var cells []Cell
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		var value string
		switch v := tok.(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		case bool:
			value = strconv.FormatBool(v)
		case nil:
		default:
			return nil, fmt.Errorf("cell %q: unexpected %v", key, tok)
		}
		cells = append(cells, Cell{Header: key, Value: value})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return cells, nil
}
