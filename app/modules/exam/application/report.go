package examservice

// sourceRow is a counted data row: Number is its 1-based ordinal among counted rows.
type sourceRow struct {
	Number int
	Line   int
	Cells  []string
}

type reportBuilder struct {
	report ImportReport
}

func newReportBuilder() *reportBuilder {
	return &reportBuilder{report: ImportReport{
		Errors:   []RowError{},
		Warnings: []Warning{},
	}}
}

func (b *reportBuilder) warn(row sourceRow, issues []FieldIssue) {
	for _, w := range issues {
		b.report.Warnings = append(b.report.Warnings, Warning{
			Row:     row.Number,
			Line:    row.Line,
			Field:   w.Field,
			Message: w.Message,
		})
	}
}

func (b *reportBuilder) imported(row sourceRow, warnings []FieldIssue) {
	b.report.Imported++
	b.warn(row, warnings)
}

func (b *reportBuilder) failed(row sourceRow, errs []FieldIssue, warnings []FieldIssue) {
	b.report.Failed++
	for _, e := range errs {
		b.report.Errors = append(b.report.Errors, RowError{
			Row:     row.Number,
			Line:    row.Line,
			Field:   e.Field,
			Message: e.Message,
		})
	}
	b.warn(row, warnings)
}

// build finalises the report. Rows must have been added in row order.
func (b *reportBuilder) build() *ImportReport {
	r := b.report
	r.Total = r.Imported + r.Failed
	r.Success = r.Failed == 0
	return &r
}
