package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

const jsonIndent = "    "

// WriteJSON writes rec as an indented JSON object in field order.
func WriteJSON(w io.Writer, rec *invoice.Record) error {
	if rec == nil {
		rec = invoice.NewRecord()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return nil
}

// SaveJSON writes rec to path, replacing any existing file.
func SaveJSON(path string, rec *invoice.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteJSON(f, rec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadJSON reads a record written by SaveJSON.
func LoadJSON(path string) (*invoice.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rec := invoice.NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return rec, nil
}
