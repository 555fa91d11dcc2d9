package parsers

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExtractor reads comma, semicolon or tab separated files.
type CSVExtractor struct{}

// NewCSVExtractor creates a new CSV extractor
func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

// Open strips a UTF-8 byte order mark, detects the delimiter from the header line and
// consumes the header.
func (e *CSVExtractor) Open(r io.Reader) (RowReader, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(br)
	reader.FieldsPerRecord = -1

	cr := &csvRows{reader: reader}
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			cr.done = true
			return cr, nil
		}
		return nil, &FormatError{Format: "CSV", Message: "failed to read header", Err: err}
	}
	return cr, nil
}

// detectDelimiter counts candidate separators outside quotes on the first line.
func detectDelimiter(br *bufio.Reader) rune {
	buf, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, b := range buf {
		switch b {
		case '"':
			inQuotes = !inQuotes
		case ',', ';', '\t':
			if !inQuotes {
				counts[rune(b)]++
			}
		}
	}

	best := ','
	for _, d := range []rune{';', '\t'} {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

type csvRows struct {
	reader *csv.Reader
	done   bool
}

func (c *csvRows) Next() (RawRow, error) {
	for !c.done {
		record, err := c.reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.done = true
				break
			}
			return RawRow{}, &FormatError{Format: "CSV", Message: "malformed row", Err: err}
		}
		line, _ := c.reader.FieldPos(0)
		row := RawRow{Line: line, Cells: record}
		if row.Blank() {
			continue
		}
		return row, nil
	}
	return RawRow{}, io.EOF
}

func (c *csvRows) Close() error {
	c.done = true
	return nil
}
