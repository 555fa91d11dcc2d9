package examservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sheetRow builds a full row from a valid base and per-column overrides.
func sheetRow(overrides map[int]string) []string {
	row := []string{
		"12", "DOJO01", "M-0001", "Kim Min-jun", "Male", "2012-04-18", "Yellow Belt",
		"80", "75", "70", "85", "90", "65", "88", "95", "90", "first attempt",
	}
	for col, v := range overrides {
		row[col] = v
	}
	return row
}

func TestMapper_Map(t *testing.T) {
	tests := []struct {
		name          string
		defaultBelt   string
		defaultTestID int64
		cells         []string
		wantErrors    []FieldIssue
		wantWarnings  []FieldIssue
		check         func(t *testing.T, row *ExamResultRow)
	}{
		{
			name:  "valid row",
			cells: sheetRow(nil),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, int64(12), row.TestID)
				assert.Equal(t, "DOJO01", row.ClubCode)
				assert.Equal(t, "M-0001", row.MemberCode)
				assert.Equal(t, "Yellow Belt", row.TargetBeltLabel)
				assert.Equal(t, "first attempt", row.Notes)
				require.NotNil(t, row.DateOfBirth)
				assert.Equal(t, time.Date(2012, 4, 18, 0, 0, 0, 0, time.UTC), *row.DateOfBirth)
				require.NotNil(t, row.Scores[0])
				assert.Equal(t, 80, *row.Scores[0])
				assert.Equal(t, 90, *row.Scores[8])
			},
		},
		{
			name:  "scores at both bounds are valid",
			cells: sheetRow(map[int]string{ColBasicTechnique: "0", ColSpirit: "100"}),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, 0, *row.Scores[0])
				assert.Equal(t, 100, *row.Scores[8])
			},
		},
		{
			name:  "scores out of range are rejected",
			cells: sheetRow(map[int]string{ColBasicTechnique: "-1", ColSpirit: "101"}),
			wantErrors: []FieldIssue{
				{Field: "basicTechnique", Message: "basicTechnique must be between 0 and 100"},
				{Field: "spirit", Message: "spirit must be between 0 and 100"},
			},
		},
		{
			name:  "integral floats are accepted",
			cells: sheetRow(map[int]string{ColPoomsae: "85.0", ColTestID: "12.0"}),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, 85, *row.Scores[1])
				assert.Equal(t, int64(12), row.TestID)
			},
		},
		{
			name:  "fractional and text scores are rejected",
			cells: sheetRow(map[int]string{ColPoomsae: "85.5", ColTheory: "good"}),
			wantErrors: []FieldIssue{
				{Field: "poomsae", Message: "poomsae must be between 0 and 100"},
				{Field: "theory", Message: "theory must be between 0 and 100"},
			},
		},
		{
			name:  "empty scores stay absent",
			cells: sheetRow(map[int]string{ColSparring: "", ColFitness: " "}),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Nil(t, row.Scores[2])
				assert.Nil(t, row.Scores[5])
			},
		},
		{
			name:  "all violations are collected",
			cells: sheetRow(map[int]string{ColTestID: "abc", ColClubCode: " ", ColMemberCode: "", ColGender: "male", ColDateOfBirth: "not a date"}),
			wantErrors: []FieldIssue{
				{Field: "testId", Message: "testId must be a positive integer"},
				{Field: "clubCode", Message: "clubCode is required"},
				{Field: "memberCode", Message: "memberCode is required"},
				{Field: "gender", Message: "gender must be one of Male, Female"},
				{Field: "dateOfBirth", Message: "dateOfBirth must be a valid date"},
			},
		},
		{
			name:       "non positive test id",
			cells:      sheetRow(map[int]string{ColTestID: "0"}),
			wantErrors: []FieldIssue{{Field: "testId", Message: "testId must be a positive integer"}},
		},
		{
			name:       "missing test id without default",
			cells:      sheetRow(map[int]string{ColTestID: ""}),
			wantErrors: []FieldIssue{{Field: "testId", Message: "testId is required"}},
		},
		{
			name:          "missing test id uses request default",
			defaultTestID: 44,
			cells:         sheetRow(map[int]string{ColTestID: ""}),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, int64(44), row.TestID)
			},
		},
		{
			name:          "cell test id wins over request default",
			defaultTestID: 44,
			cells:         sheetRow(nil),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, int64(12), row.TestID)
			},
		},
		{
			name:       "missing belt without default",
			cells:      sheetRow(map[int]string{ColTargetBeltLabel: ""}),
			wantErrors: []FieldIssue{{Field: "targetBeltLabel", Message: "targetBeltLabel is required"}},
		},
		{
			name:         "missing belt with configured default",
			defaultBelt:  "White Belt",
			cells:        sheetRow(map[int]string{ColTargetBeltLabel: ""}),
			wantWarnings: []FieldIssue{{Field: "targetBeltLabel", Message: "targetBeltLabel missing, defaulted to White Belt"}},
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, "White Belt", row.TargetBeltLabel)
			},
		},
		{
			name:  "optional demographics may be empty",
			cells: sheetRow(map[int]string{ColGender: "", ColDateOfBirth: "", ColFullName: ""}),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Empty(t, row.Gender)
				assert.Nil(t, row.DateOfBirth)
			},
		},
		{
			name:  "day first date",
			cells: sheetRow(map[int]string{ColDateOfBirth: "18/04/2012"}),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, time.Date(2012, 4, 18, 0, 0, 0, 0, time.UTC), *row.DateOfBirth)
			},
		},
		{
			name:  "excel serial date",
			cells: sheetRow(map[int]string{ColDateOfBirth: "41017"}),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, time.Date(2012, 4, 18, 0, 0, 0, 0, time.UTC), *row.DateOfBirth)
			},
		},
		{
			name:  "exponent and hex notation are not integers",
			cells: sheetRow(map[int]string{ColTestID: "1e3", ColBasicTechnique: "1e2", ColPoomsae: "0x1p6", ColSparring: "85.", ColBreaking: "7_0"}),
			wantErrors: []FieldIssue{
				{Field: "testId", Message: "testId must be a positive integer"},
				{Field: "basicTechnique", Message: "basicTechnique must be between 0 and 100"},
				{Field: "poomsae", Message: "poomsae must be between 0 and 100"},
				{Field: "sparring", Message: "sparring must be between 0 and 100"},
				{Field: "breaking", Message: "breaking must be between 0 and 100"},
			},
		},
		{
			name:       "small number is not a serial date",
			cells:      sheetRow(map[int]string{ColDateOfBirth: "42"}),
			wantErrors: []FieldIssue{{Field: "dateOfBirth", Message: "dateOfBirth must be a valid date"}},
		},
		{
			name:       "bare year is not a serial date",
			cells:      sheetRow(map[int]string{ColDateOfBirth: "2012"}),
			wantErrors: []FieldIssue{{Field: "dateOfBirth", Message: "dateOfBirth must be a valid date"}},
		},
		{
			name:       "future serial date",
			cells:      sheetRow(map[int]string{ColDateOfBirth: "2958000"}),
			wantErrors: []FieldIssue{{Field: "dateOfBirth", Message: "dateOfBirth must be a valid date"}},
		},
		{
			name:       "exponent serial date",
			cells:      sheetRow(map[int]string{ColDateOfBirth: "4.1017e4"}),
			wantErrors: []FieldIssue{{Field: "dateOfBirth", Message: "dateOfBirth must be a valid date"}},
		},
		{
			name:  "serial date with time of day",
			cells: sheetRow(map[int]string{ColDateOfBirth: "41017.5"}),
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, time.Date(2012, 4, 18, 0, 0, 0, 0, time.UTC), *row.DateOfBirth)
			},
		},
		{
			name:  "short row leaves trailing fields empty",
			cells: []string{"12", "DOJO01", "M-0001", "", "", "", "Yellow Belt"},
			check: func(t *testing.T, row *ExamResultRow) {
				assert.Equal(t, Scores{}, row.Scores)
				assert.Empty(t, row.Notes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMapper(tt.defaultBelt).Map(tt.cells, tt.defaultTestID)

			assert.Equal(t, tt.wantErrors, got.Errors)
			assert.Equal(t, tt.wantWarnings, got.Warnings)
			if len(tt.wantErrors) > 0 {
				assert.False(t, got.Accepted())
				assert.Nil(t, got.Row)
				return
			}
			require.True(t, got.Accepted())
			require.NotNil(t, got.Row)
			if tt.check != nil {
				tt.check(t, got.Row)
			}
		})
	}
}

func TestIsTemplateRow(t *testing.T) {
	tests := []struct {
		cells []string
		want  bool
	}{
		{cells: []string{"#12", "DOJO01"}, want: true},
		{cells: []string{"  # instructions"}, want: true},
		{cells: []string{"TEMPLATE", "x"}, want: true},
		{cells: []string{"Template"}, want: true},
		{cells: []string{"12", "#DOJO01"}, want: false},
		{cells: []string{"templates"}, want: false},
		{cells: nil, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTemplateRow(tt.cells), "%q", tt.cells)
	}
}
