// Package store persists extraction records in PostgreSQL through gorm.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// ErrNotFound is returned by Get for an unknown document ID.
var ErrNotFound = errors.New("record not found")

// InvoiceRecord is the database row for one extracted document.
type InvoiceRecord struct {
	gorm.Model
	DocumentID string `gorm:"uniqueIndex;size:128;not null"`
	Source     string `gorm:"size:512"`

	// Fields is the scalar part of the record as an ordered JSON object.
	Fields string `gorm:"type:text"`

	// Table is the table payload as JSON, empty when no table was detected.
	Table string `gorm:"column:table_data;type:text"`

	// TableIndex is the table's position among the record's entries, or -1.
	TableIndex  int
	TableParsed bool
}

// Stored is a record read back from the database.
type Stored struct {
	DocumentID string          `json:"document_id"`
	Source     string          `json:"source"`
	CreatedAt  time.Time       `json:"created_at"`
	Record     *invoice.Record `json:"record"`
}

// Store saves and loads records.
type Store struct {
	db *gorm.DB
}

// Open connects to the database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an open gorm connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&InvoiceRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save stores rec under docID, replacing an earlier record with the same ID.
func (s *Store) Save(ctx context.Context, docID, source string, rec *invoice.Record) error {
	row, err := toRow(docID, source, rec)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"source", "fields", "table_data", "table_index", "table_parsed", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", docID, err)
	}
	return nil
}

// Get loads the record saved under docID.
func (s *Store) Get(ctx context.Context, docID string) (*Stored, error) {
	var row InvoiceRecord
	err := s.db.WithContext(ctx).Where("document_id = ?", docID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", docID, err)
	}
	return fromRow(row)
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Stored, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []InvoiceRecord
	if err := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	out := make([]*Stored, 0, len(rows))
	for _, row := range rows {
		st, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func toRow(docID, source string, rec *invoice.Record) (*InvoiceRecord, error) {
	if docID == "" {
		return nil, errors.New("document ID is required")
	}
	if rec == nil {
		rec = invoice.NewRecord()
	}

	scalars := invoice.NewRecord()
	for _, f := range rec.Fields() {
		scalars.Set(f.Label, f.Value)
	}
	fields, err := json.Marshal(scalars)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}

	row := &InvoiceRecord{
		DocumentID: docID,
		Source:     source,
		Fields:     string(fields),
		TableIndex: tableIndex(rec),
	}
	if t, ok := rec.Table(); ok {
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("failed to encode table: %w", err)
		}
		row.Table = string(b)
		row.TableParsed = t.Parsed()
	}
	return row, nil
}

// tableIndex finds the table's position in the record's entry order.
func tableIndex(rec *invoice.Record) int {
	if _, ok := rec.Table(); !ok {
		return -1
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return -1
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil {
		return -1
	}
	for i := 0; dec.More(); i++ {
		tok, err := dec.Token()
		if err != nil {
			return -1
		}
		if key, _ := tok.(string); key == invoice.TableLabel {
			return i
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return -1
		}
	}
	return -1
}

func fromRow(row InvoiceRecord) (*Stored, error) {
	scalars := invoice.NewRecord()
	if row.Fields != "" {
		if err := json.Unmarshal([]byte(row.Fields), scalars); err != nil {
			return nil, fmt.Errorf("record %s: bad fields: %w", row.DocumentID, err)
		}
	}

	var table *invoice.Table
	if row.Table != "" {
		var t invoice.Table
		if err := json.Unmarshal([]byte(row.Table), &t); err != nil {
			return nil, fmt.Errorf("record %s: bad table: %w", row.DocumentID, err)
		}
		table = &t
	}

	rec := invoice.NewRecord()
	for i, f := range scalars.Fields() {
		if table != nil && i == row.TableIndex {
			rec.SetTable(*table)
		}
		rec.Set(f.Label, f.Value)
	}
	if table != nil {
		if _, ok := rec.Table(); !ok {
			rec.SetTable(*table)
		}
	}

	return &Stored{
		DocumentID: row.DocumentID,
		Source:     row.Source,
		CreatedAt:  row.CreatedAt,
		Record:     rec,
	}, nil
}
