// Package export writes extraction records to disk.
//
// Each record is written as a JSON document and as an XLSX workbook. The
// workbook has an "Invoice Data" sheet with one header row of field labels
// and one row of values, and a "Table Data" sheet with the line items: a
// "Row" column holding each row's position, followed by the table headers.
// The table sheet is left out when the table could not be parsed or no table
// region was detected.
package export
