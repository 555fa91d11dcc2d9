package parsers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor reads the first sheet of an Excel workbook.
type XLSXExtractor struct{}

// NewXLSXExtractor creates a new XLSX extractor
func NewXLSXExtractor() *XLSXExtractor {
	return &XLSXExtractor{}
}

// Open opens the workbook and positions the row iterator after the header.
// Cells are read raw so dates arrive as Excel serial day numbers.
func (e *XLSXExtractor) Open(r io.Reader) (RowReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		if strings.Contains(err.Error(), "zip: not a valid zip file") {
			return nil, &FormatError{Format: "XLSX", Message: "failed to open workbook (if this is a CSV file, please ensure it has a .csv extension)", Err: err}
		}
		return nil, &FormatError{Format: "XLSX", Message: "failed to open workbook", Err: err}
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, &FormatError{Format: "XLSX", Message: "workbook has no sheets"}
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, &FormatError{Format: "XLSX", Message: fmt.Sprintf("failed to read sheet %q", sheets[0]), Err: err}
	}

	xr := &xlsxRows{file: f, rows: rows}
	// Header.
	if rows.Next() {
		xr.line++
		if _, err := rows.Columns(); err != nil {
			_ = xr.Close()
			return nil, &FormatError{Format: "XLSX", Message: "failed to read header", Err: err}
		}
	}
	return xr, nil
}

type xlsxRows struct {
	file   *excelize.File
	rows   *excelize.Rows
	line   int
	closed bool
}

func (x *xlsxRows) Next() (RawRow, error) {
	if x.closed {
		return RawRow{}, io.EOF
	}
	for x.rows.Next() {
		x.line++
		cells, err := x.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return RawRow{}, &FormatError{Format: "XLSX", Message: fmt.Sprintf("failed to read row %d", x.line), Err: err}
		}
		row := RawRow{Line: x.line, Cells: cells}
		if row.Blank() {
			continue
		}
		return row, nil
	}
	if err := x.rows.Error(); err != nil {
		return RawRow{}, &FormatError{Format: "XLSX", Message: "failed to iterate rows", Err: err}
	}
	return RawRow{}, io.EOF
}

func (x *xlsxRows) Close() error {
	if x.closed {
		return nil
	}
	x.closed = true
	return errors.Join(x.rows.Close(), x.file.Close())
}
