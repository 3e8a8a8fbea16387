// Package table rebuilds line-item tables from raw recognized text.
//
// The recognizer is run in tabular mode on table regions, which keeps the
// horizontal gaps between columns as runs of spaces. Reconstruct relies on
// that: a run of two or more whitespace characters separates columns, while
// a single space stays inside a cell ("Unit Price" is one header).
//
// The first non-empty line is the header. Every later line whose column
// count matches the header becomes a row; any other line is treated as
// recognition noise and dropped without affecting the lines after it.
//
// # Row Numbering
//
// A row's Position is its 1-based offset among the lines following the
// header, counted before mismatched lines are dropped. A dropped line
// therefore leaves a gap: in
//
//	Item  Qty
//	Widget  3
//	smudge
//	Gadget  1
//
// Widget is row 1 and Gadget is row 3.
package table

import (
	"regexp"
	"strings"

	"github.com/ironsheep/invoice-tools/internal/invoice"
)

// columnSep matches the gap between two columns. Go's \s is ASCII-only, so
// vertical tab, the separator characters, NEL and every Unicode space
// (NBSP included) are listed explicitly.
var columnSep = regexp.MustCompile(`[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]{2,}`)

// Reconstruct parses text into a table. Text with fewer than two non-empty
// lines yields the unparseable sentinel; Reconstruct never panics.
func Reconstruct(text string) invoice.Table {
	lines := nonEmptyLines(text)
	if len(lines) < 2 {
		return invoice.UnparseableTable()
	}

	headers := Tokenize(lines[0])
	rows := make([]invoice.TableRow, 0, len(lines)-1)
	for i, line := range lines[1:] {
		cols := Tokenize(line)
		if len(cols) != len(headers) {
			continue
		}
		cells := make([]invoice.Cell, len(headers))
		for j := range headers {
			cells[j] = invoice.Cell{Header: headers[j], Value: cols[j]}
		}
		rows = append(rows, invoice.TableRow{Position: i + 1, Cells: cells})
	}

	return invoice.Table{Headers: headers, Rows: rows}
}

// Tokenize splits one line into cells on runs of two or more whitespace
// characters. Leading and trailing whitespace is ignored.
func Tokenize(line string) []string {
	return columnSep.Split(strings.TrimSpace(line), -1)
}

// nonEmptyLines splits text on newlines and drops whitespace-only lines.
func nonEmptyLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
