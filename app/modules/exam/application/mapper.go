package examservice

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Accepted date layouts for dateOfBirth, besides Excel serial day numbers.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02"}

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465

// earliestSerialDate is the oldest date of birth read from an Excel serial number.
var earliestSerialDate = time.Date(1920, 1, 1, 0, 0, 0, 0, time.UTC)

// FieldIssue is a problem with one field of a row, before row numbers are attached.
type FieldIssue struct {
	Field   string
	Message string
}

// MappedRow is the mapper's verdict on one raw row. Row is nil when Errors is not empty.
type MappedRow struct {
	Row      *ExamResultRow
	Errors   []FieldIssue
	Warnings []FieldIssue
}

// Accepted reports whether the row passed validation.
func (m MappedRow) Accepted() bool {
	return len(m.Errors) == 0
}

// Mapper turns raw cells into ExamResultRows using the fixed column layout.
type Mapper struct {
	defaultBeltLabel string
}

// NewMapper creates a mapper. defaultBeltLabel, when not empty, replaces a missing target
// belt label and adds a warning to the row.
func NewMapper(defaultBeltLabel string) *Mapper {
	return &Mapper{defaultBeltLabel: strings.TrimSpace(defaultBeltLabel)}
}

// IsTemplateRow reports whether the row is an instruction or example line of the template.
func IsTemplateRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	first := strings.TrimSpace(cells[0])
	return strings.HasPrefix(first, "#") || strings.EqualFold(first, "template")
}

// Map validates every field of the row and collects all violations.
func (m *Mapper) Map(cells []string, defaultTestID int64) MappedRow {
	var out MappedRow
	cell := func(col int) string {
		if col < len(cells) {
			return strings.TrimSpace(cells[col])
		}
		return ""
	}
	fail := func(col int, msg string) {
		out.Errors = append(out.Errors, FieldIssue{Field: ColumnNames[col], Message: msg})
	}

	row := ExamResultRow{
		ClubCode:        cell(ColClubCode),
		MemberCode:      cell(ColMemberCode),
		FullName:        cell(ColFullName),
		Gender:          cell(ColGender),
		TargetBeltLabel: cell(ColTargetBeltLabel),
		Notes:           cell(ColNotes),
	}

	switch raw := cell(ColTestID); {
	case raw != "":
		id, ok := parseWhole(raw)
		if !ok || id <= 0 {
			fail(ColTestID, "testId must be a positive integer")
		}
		row.TestID = id
	case defaultTestID > 0:
		row.TestID = defaultTestID
	default:
		fail(ColTestID, "testId is required")
	}

	if row.ClubCode == "" {
		fail(ColClubCode, "clubCode is required")
	}
	if row.MemberCode == "" {
		fail(ColMemberCode, "memberCode is required")
	}

	if row.TargetBeltLabel == "" {
		if m.defaultBeltLabel != "" {
			row.TargetBeltLabel = m.defaultBeltLabel
			out.Warnings = append(out.Warnings, FieldIssue{
				Field:   ColumnNames[ColTargetBeltLabel],
				Message: "targetBeltLabel missing, defaulted to " + m.defaultBeltLabel,
			})
		} else {
			fail(ColTargetBeltLabel, "targetBeltLabel is required")
		}
	}

	if row.Gender != "" && row.Gender != "Male" && row.Gender != "Female" {
		fail(ColGender, "gender must be one of Male, Female")
	}

	if raw := cell(ColDateOfBirth); raw != "" {
		dob, ok := parseDate(raw)
		if ok {
			row.DateOfBirth = &dob
		} else {
			fail(ColDateOfBirth, "dateOfBirth must be a valid date")
		}
	}

	for i := 0; i < CategoryCount; i++ {
		col := ColBasicTechnique + i
		raw := cell(col)
		if raw == "" {
			continue
		}
		score, ok := parseWhole(raw)
		if !ok || score < 0 || score > 100 {
			fail(col, ColumnNames[col]+" must be between 0 and 100")
			continue
		}
		v := int(score)
		row.Scores[i] = &v
	}

	if len(out.Errors) == 0 {
		out.Row = &row
	}
	return out
}

// parseWhole accepts decimal integers and integral decimals such as "85.0".
func parseWhole(s string) (int64, bool) {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if !isDigits(s[i+1:]) || strings.Trim(s[i+1:], "0") != "" {
			return 0, false
		}
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseDate accepts the fixed layouts, and Excel serial day numbers that fall between
// earliestSerialDate and today. Small numbers such as a bare year are not dates.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	whole, frac, _ := strings.Cut(s, ".")
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return time.Time{}, false
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial < 1 || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	y, mo, d := t.Date()
	t = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	if t.Before(earliestSerialDate) || t.After(time.Now().UTC()) {
		return time.Time{}, false
	}
	return t, true
}
