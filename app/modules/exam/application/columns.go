package examservice

// Column positions of the import sheet. Position is authoritative; header text is ignored.
const (
	ColTestID = iota
	ColClubCode
	ColMemberCode
	ColFullName
	ColGender
	ColDateOfBirth
	ColTargetBeltLabel
	ColBasicTechnique
	ColPoomsae
	ColSparring
	ColSelfDefense
	ColBreaking
	ColFitness
	ColTheory
	ColDiscipline
	ColSpirit
	ColNotes

	columnCount
)

// CategoryCount is the number of scored categories.
const CategoryCount = ColSpirit - ColBasicTechnique + 1

// ColumnNames are the field names used in the template header and in row errors.
var ColumnNames = [columnCount]string{
	ColTestID:          "testId",
	ColClubCode:        "clubCode",
	ColMemberCode:      "memberCode",
	ColFullName:        "fullName",
	ColGender:          "gender",
	ColDateOfBirth:     "dateOfBirth",
	ColTargetBeltLabel: "targetBeltLabel",
	ColBasicTechnique:  "basicTechnique",
	ColPoomsae:         "poomsae",
	ColSparring:        "sparring",
	ColSelfDefense:     "selfDefense",
	ColBreaking:        "breaking",
	ColFitness:         "fitness",
	ColTheory:          "theory",
	ColDiscipline:      "discipline",
	ColSpirit:          "spirit",
	ColNotes:           "notes",
}

// CategoryField returns the field name of score category i (0-based).
func CategoryField(i int) string {
	return ColumnNames[ColBasicTechnique+i]
}

// Header returns the template header row.
func Header() []string {
	h := make([]string, columnCount)
	copy(h, ColumnNames[:])
	return h
}

// templateExample is the sample row written below the template header.
var templateExample = []string{
	"12", "DOJO01", "M-0001", "Kim Min-jun", "Male", "2012-04-18", "Yellow Belt",
	"80", "75", "70", "85", "90", "65", "88", "95", "90", "",
}
