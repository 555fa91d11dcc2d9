package testutils

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/xuri/excelize/v2"
)

// Header is the import sheet header in column order.
var Header = []string{
	"testId", "clubCode", "memberCode", "fullName", "gender", "dateOfBirth", "targetBeltLabel",
	"basicTechnique", "poomsae", "sparring", "selfDefense", "breaking", "fitness", "theory",
	"discipline", "spirit", "notes",
}

// BeltLabels are the belt levels generated candidates are examined for.
var BeltLabels = []string{"White Belt", "Yellow Belt", "Green Belt", "Blue Belt", "Red Belt", "Black Belt"}

// Candidate is one generated sheet row.
type Candidate struct {
	TestID      int64
	ClubCode    string
	MemberCode  string
	FullName    string
	Gender      string
	DateOfBirth time.Time
	BeltLabel   string
	Scores      [9]int
	Notes       string
}

// Cells renders the candidate in sheet column order.
func (c Candidate) Cells() []string {
	cells := []string{
		strconv.FormatInt(c.TestID, 10),
		c.ClubCode,
		c.MemberCode,
		c.FullName,
		c.Gender,
		c.DateOfBirth.Format("2006-01-02"),
		c.BeltLabel,
	}
	for _, s := range c.Scores {
		cells = append(cells, strconv.Itoa(s))
	}
	return append(cells, c.Notes)
}

// TestDataGenerator provides methods to create test data for import tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed the generator was created with.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// ClubCodes returns n distinct club codes.
func (g *TestDataGenerator) ClubCodes(n int) []string {
	codes := make([]string, n)
	for i := range codes {
		codes[i] = fmt.Sprintf("DOJO%02d", i+1)
	}
	return codes
}

// GenerateCandidates creates count candidates for one examination. Member codes are
// M-0001, M-0002, ... in row order; clubs rotate over clubCodes.
func (g *TestDataGenerator) GenerateCandidates(testID int64, count int, clubCodes []string) []Candidate {
	candidates := make([]Candidate, count)
	start := time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2018, 12, 31, 0, 0, 0, 0, time.UTC)

	for i := range candidates {
		c := Candidate{
			TestID:      testID,
			ClubCode:    clubCodes[i%len(clubCodes)],
			MemberCode:  fmt.Sprintf("M-%04d", i+1),
			FullName:    g.faker.Name(),
			Gender:      g.faker.RandomString([]string{"Male", "Female"}),
			DateOfBirth: g.faker.DateRange(start, end),
			BeltLabel:   g.faker.RandomString(BeltLabels),
		}
		for j := range c.Scores {
			c.Scores[j] = g.faker.Number(40, 100)
		}
		if g.faker.Number(0, 4) == 0 {
			c.Notes = g.faker.RandomString([]string{"retake", "first attempt", "transfer student", "injured wrist"})
		}
		candidates[i] = c
	}
	return candidates
}

// Rows renders candidates as sheet rows.
func Rows(candidates []Candidate) [][]string {
	rows := make([][]string, len(candidates))
	for i, c := range candidates {
		rows[i] = c.Cells()
	}
	return rows
}

// EncodeCSV writes the header and rows as a comma separated file.
func EncodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeXLSX writes the header and rows to the first sheet of a workbook.
func EncodeXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	all := append([][]string{Header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
