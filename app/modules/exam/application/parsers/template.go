package parsers

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the sheet name of generated import templates.
const TemplateSheet = "Candidates"

// WriteTemplate writes an empty workbook whose first row is header. The example row is
// written as a template row (first cell prefixed with '#') so importing the template
// unchanged imports nothing.
func WriteTemplate(w io.Writer, header []string, example []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return fmt.Errorf("failed to name template sheet: %w", err)
	}

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	if len(example) > 0 {
		row := append([]string(nil), example...)
		row[0] = "#" + row[0]
		if err := setRow(f, 2, row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(TemplateSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowIndex int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIndex)
	if err != nil {
		return fmt.Errorf("failed to compute cell name: %w", err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(TemplateSheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write template row %d: %w", rowIndex, err)
	}
	return nil
}
