package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// Sheet names used in the workbook.
const (
	InvoiceSheet = "Invoice Data"
	TableSheet   = "Table Data"

	rowHeader = "Row"
)

// ErrNoTableSheet is returned by ReadTableSheet when the workbook has no
// table sheet.
var ErrNoTableSheet = errors.New("workbook has no table sheet")

// BuildWorkbook lays out rec in a new workbook. The caller must Close it.
func BuildWorkbook(rec *invoice.Record) (*excelize.File, error) {
	if rec == nil {
		rec = invoice.NewRecord()
	}
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", InvoiceSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	fields := rec.Fields()
	labels := make([]interface{}, len(fields))
	values := make([]interface{}, len(fields))
	for i, fl := range fields {
		labels[i] = fl.Label
		values[i] = fl.Value
	}
	if err := writeRow(f, InvoiceSheet, 1, labels); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRow(f, InvoiceSheet, 2, values); err != nil {
		f.Close()
		return nil, err
	}
	if err := boldHeader(f, InvoiceSheet, len(labels)); err != nil {
		f.Close()
		return nil, err
	}

	if t, ok := rec.Table(); ok && t.Parsed() {
		if err := writeTableSheet(f, t); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeTableSheet(f *excelize.File, t invoice.Table) error {
	if _, err := f.NewSheet(TableSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	header := make([]interface{}, 0, len(t.Headers)+1)
	header = append(header, rowHeader)
	for _, h := range t.Headers {
		header = append(header, h)
	}
	if err := writeRow(f, TableSheet, 1, header); err != nil {
		return err
	}
	if err := boldHeader(f, TableSheet, len(header)); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cells := make([]interface{}, 0, len(row.Cells)+1)
		cells = append(cells, row.Position)
		for _, v := range row.Values() {
			cells = append(cells, v)
		}
		if err := writeRow(f, TableSheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func boldHeader(f *excelize.File, sheet string, cols int) error {
	if cols == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

// SaveWorkbook writes rec as an XLSX workbook at path.
func SaveWorkbook(path string, rec *invoice.Record) error {
	f, err := BuildWorkbook(rec)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteWorkbook writes rec as an XLSX workbook to w.
func WriteWorkbook(w io.Writer, rec *invoice.Record) error {
	f, err := BuildWorkbook(rec)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadTableSheet reads the table sheet of a workbook written by
// SaveWorkbook. headers excludes the Row column.
func ReadTableSheet(path string) (headers []string, rows []invoice.TableRow, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(TableSheet); idx < 0 {
		return nil, nil, ErrNoTableSheet
	}
	grid, err := f.GetRows(TableSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", TableSheet, err)
	}
	if len(grid) == 0 || len(grid[0]) == 0 || grid[0][0] != rowHeader {
		return nil, nil, fmt.Errorf("%s: missing %q header", TableSheet, rowHeader)
	}

	headers = grid[0][1:]
	for n, line := range grid[1:] {
		if len(line) == 0 {
			continue
		}
		pos, err := strconv.Atoi(line[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s row %d: bad position %q", TableSheet, n+2, line[0])
		}
		row := invoice.TableRow{Position: pos, Cells: make([]invoice.Cell, len(headers))}
		for i, h := range headers {
			row.Cells[i].Header = h
			// GetRows drops trailing empty cells.
			if i+1 < len(line) {
				row.Cells[i].Value = line[i+1]
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// ReadInvoiceSheet reads the field labels and values of the invoice sheet.
func ReadInvoiceSheet(path string) ([]invoice.Field, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	grid, err := f.GetRows(InvoiceSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", InvoiceSheet, err)
	}
	if len(grid) == 0 {
		return nil, nil
	}
	fields := make([]invoice.Field, len(grid[0]))
	for i, label := range grid[0] {
		fields[i].Label = label
		if len(grid) > 1 && i < len(grid[1]) {
			fields[i].Value = grid[1][i]
		}
	}
	return fields, nil
}
