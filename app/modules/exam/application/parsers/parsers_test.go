package parsers

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func drain(t *testing.T, rr RowReader) []RawRow {
	t.Helper()
	var rows []RawRow
	for {
		row, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
	require.NoError(t, rr.Close())
	return rows
}

func buildXLSX(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestFactory_ForFileName(t *testing.T) {
	factory := NewFactory()
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "csv file", filename: "results.csv", want: "csv"},
		{name: "upper case extension", filename: "RESULTS.CSV", want: "csv"},
		{name: "xlsx file", filename: "results.xlsx", want: "xlsx"},
		{name: "xlsm file", filename: "results.xlsm", want: "xlsx"},
		{name: "unsupported file", filename: "results.txt", wantErr: true},
		{name: "no extension", filename: "results", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor, err := factory.ForFileName(tt.filename)
			if tt.wantErr {
				var fe *FormatError
				require.ErrorAs(t, err, &fe)
				require.ErrorIs(t, err, ErrUnsupportedFile)
				return
			}
			require.NoError(t, err)
			switch tt.want {
			case "csv":
				_, ok := extractor.(*CSVExtractor)
				require.True(t, ok)
			case "xlsx":
				_, ok := extractor.(*XLSXExtractor)
				require.True(t, ok)
			}
		})
	}
}

func TestCSVExtractor_Open(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantRows  []RawRow
		wantFatal bool
	}{
		{
			name: "comma separated with header",
			data: "testId,clubCode,memberCode\n12,CLB,M-1\n12,CLB,M-2\n",
			wantRows: []RawRow{
				{Line: 2, Cells: []string{"12", "CLB", "M-1"}},
				{Line: 3, Cells: []string{"12", "CLB", "M-2"}},
			},
		},
		{
			name: "semicolon separated with byte order mark",
			data: "\xEF\xBB\xBFtestId;clubCode;memberCode\n12;CLB;M-1\n",
			wantRows: []RawRow{
				{Line: 2, Cells: []string{"12", "CLB", "M-1"}},
			},
		},
		{
			name: "tab separated",
			data: "testId\tclubCode\n7\tCLB\n",
			wantRows: []RawRow{
				{Line: 2, Cells: []string{"7", "CLB"}},
			},
		},
		{
			name: "blank rows skipped but lines kept",
			data: "h1,h2\n,\n1,a\n\n , \n2,b\n,,\n",
			wantRows: []RawRow{
				{Line: 3, Cells: []string{"1", "a"}},
				{Line: 6, Cells: []string{"2", "b"}},
			},
		},
		{
			name: "quoted delimiter in header does not win",
			data: "\"a;b\",c,d\n1,2,3\n",
			wantRows: []RawRow{
				{Line: 2, Cells: []string{"1", "2", "3"}},
			},
		},
		{
			name:     "header only",
			data:     "testId,clubCode\n",
			wantRows: nil,
		},
		{
			name:     "empty stream",
			data:     "",
			wantRows: nil,
		},
		{
			name:      "broken quoting",
			data:      "h1,h2\n1,\"unterminated\n",
			wantFatal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, err := NewCSVExtractor().Open(strings.NewReader(tt.data))
			if tt.wantFatal && err != nil {
				var fe *FormatError
				require.ErrorAs(t, err, &fe)
				return
			}
			require.NoError(t, err)

			if tt.wantFatal {
				var fatal error
				for {
					if _, err := rr.Next(); err != nil {
						if !errors.Is(err, io.EOF) {
							fatal = err
						}
						break
					}
				}
				var fe *FormatError
				require.ErrorAs(t, fatal, &fe)
				return
			}

			require.Equal(t, tt.wantRows, drain(t, rr))
		})
	}
}

func TestXLSXExtractor_Open(t *testing.T) {
	t.Run("reads first sheet after header", func(t *testing.T) {
		data := buildXLSX(t, [][]interface{}{
			{"testId", "clubCode", "memberCode", "fullName"},
			{12, "CLB", "M-1", "Kim Lee"},
			{nil, nil, nil, nil},
			{12, "CLB", "M-2", "Park Min"},
		})

		rr, err := NewXLSXExtractor().Open(bytes.NewReader(data))
		require.NoError(t, err)
		rows := drain(t, rr)

		require.Len(t, rows, 2)
		require.Equal(t, 2, rows[0].Line)
		require.Equal(t, []string{"12", "CLB", "M-1", "Kim Lee"}, rows[0].Cells)
		require.Equal(t, 4, rows[1].Line)
		require.Equal(t, "M-2", rows[1].Cells[2])
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := NewXLSXExtractor().Open(strings.NewReader("testId,clubCode\n1,CLB\n"))
		var fe *FormatError
		require.ErrorAs(t, err, &fe)
		require.Contains(t, fe.Error(), ".csv extension")
	})

	t.Run("header only", func(t *testing.T) {
		data := buildXLSX(t, [][]interface{}{{"testId", "clubCode"}})
		rr, err := NewXLSXExtractor().Open(bytes.NewReader(data))
		require.NoError(t, err)
		require.Empty(t, drain(t, rr))
	})
}

func TestWriteTemplate(t *testing.T) {
	header := []string{"testId", "clubCode", "memberCode"}
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, header, []string{"12", "CLB", "M-1"}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{TemplateSheet}, f.GetSheetList())
	rows, err := f.GetRows(TemplateSheet)
	require.NoError(t, err)
	require.Equal(t, header, rows[0])
	require.Equal(t, []string{"#12", "CLB", "M-1"}, rows[1])
}
