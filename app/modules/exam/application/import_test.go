package examservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application/parsers"
	exammetrics "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/metrics"
	examdb "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/repositories"
	"github.com/Black-And-White-Club/dojo-portal/integration_tests/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// memoryStore keeps upserted rows keyed by (test_id, user_id).
type memoryStore struct {
	mu            sync.Mutex
	results       map[string]examdb.ExamResult
	registrations map[string]examdb.TestRegistration
	writes        int
	failFor       map[uuid.UUID]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		results:       map[string]examdb.ExamResult{},
		registrations: map[string]examdb.TestRegistration{},
		failFor:       map[uuid.UUID]error{},
	}
}

func storeKey(testID int64, userID uuid.UUID) string {
	return fmt.Sprintf("%d/%s", testID, userID)
}

func (m *memoryStore) repository() *examdb.FakeRepository {
	return &examdb.FakeRepository{
		UpsertExamResultFn: func(ctx context.Context, db bun.IDB, r *examdb.ExamResult) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			if err := m.failFor[r.UserID]; err != nil {
				return err
			}
			m.writes++
			m.results[storeKey(r.TestID, r.UserID)] = *r
			return nil
		},
		UpsertTestRegistrationFn: func(ctx context.Context, db bun.IDB, r *examdb.TestRegistration) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.writes++
			m.registrations[storeKey(r.TestID, r.UserID)] = *r
			return nil
		},
	}
}

func newTestService(repo examdb.Repository, dirs Directories, cfg Config) *ExamService {
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	return NewExamService(
		repo,
		dirs,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		exammetrics.NewNoop(),
		nil,
		nil,
		cfg,
	)
}

func csvUpload(t *testing.T, rows [][]string) io.Reader {
	t.Helper()
	data, err := testutils.EncodeCSV(rows)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestImport_HundredRowsWithOneUnresolvableMember(t *testing.T) {
	gen := testutils.NewTestDataGenerator(37)
	candidates := gen.GenerateCandidates(12, 100, gen.ClubCodes(3))
	rows := testutils.Rows(candidates)

	xlsx, err := testutils.EncodeXLSX(rows)
	require.NoError(t, err)
	csvData, err := testutils.EncodeCSV(rows)
	require.NoError(t, err)

	uploads := map[string][]byte{
		"results.csv":  csvData,
		"results.xlsx": xlsx,
	}

	for name, data := range uploads {
		t.Run(name, func(t *testing.T) {
			store := newMemoryStore()
			dir := knownDirectory("M-0037")
			svc := newTestService(store.repository(), dir.Directories(), Config{})

			report, err := svc.ImportExamResults(context.Background(), ImportRequest{
				FileName: name,
				Data:     bytes.NewReader(data),
			})
			require.NoError(t, err)

			assert.Equal(t, 100, report.Total)
			assert.Equal(t, 99, report.Imported)
			assert.Equal(t, 1, report.Failed)
			assert.False(t, report.Success)
			require.Len(t, report.Errors, 1)
			assert.Equal(t, RowError{
				Row:     37,
				Line:    38,
				Field:   "memberCode",
				Message: "member not found: M-0037",
			}, report.Errors[0])
			assert.Len(t, store.results, 99)
		})
	}
}

func TestImport_DuplicateKeyLastRowWins(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store.repository(), knownDirectory().Directories(), Config{})

	first := sheetRow(map[int]string{ColBasicTechnique: "50", ColNotes: "first"})
	second := sheetRow(map[int]string{ColBasicTechnique: "99", ColNotes: "second"})

	report, err := svc.ImportExamResults(context.Background(), ImportRequest{
		FileName: "dupes.csv",
		Data:     csvUpload(t, [][]string{first, second}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)

	require.Len(t, store.results, 1)
	got := store.results[storeKey(12, stableID("member", "M-0001"))]
	require.NotNil(t, got.BasicTechnique)
	assert.Equal(t, 99, *got.BasicTechnique)
	assert.Equal(t, "second", got.Notes)
}

func TestImport_ReimportIsIdempotent(t *testing.T) {
	gen := testutils.NewTestDataGenerator(7)
	rows := testutils.Rows(gen.GenerateCandidates(3, 25, gen.ClubCodes(2)))

	store := newMemoryStore()
	svc := newTestService(store.repository(), knownDirectory().Directories(), Config{})

	var reports []*ImportReport
	for i := 0; i < 2; i++ {
		report, err := svc.ImportExamResults(context.Background(), ImportRequest{
			FileName: "results.csv",
			Data:     csvUpload(t, rows),
		})
		require.NoError(t, err)
		reports = append(reports, report)
	}

	assert.Equal(t, reports[0].Imported, reports[1].Imported)
	assert.Equal(t, 25, reports[1].Imported)
	assert.Len(t, store.results, 25)
	assert.Equal(t, 50, store.writes)
}

func TestImport_ReportAttributesEveryRow(t *testing.T) {
	store := newMemoryStore()
	store.failFor[stableID("member", "M-0005")] = errors.New("disk full")
	svc := newTestService(store.repository(), knownDirectory("M-0404").Directories(), Config{})

	// Lines 2 (template) and 4 (blank) are not counted, so rows 1-5 sit on lines 3, 5, 6, 7, 8.
	rows := [][]string{
		sheetRow(map[int]string{ColTestID: "#12"}),
		sheetRow(nil),
		make([]string, columnCount),
		sheetRow(map[int]string{ColMemberCode: "M-0002", ColGender: "F", ColPoomsae: "101"}),
		sheetRow(map[int]string{ColMemberCode: "M-0003", ColSparring: ""}),
		sheetRow(map[int]string{ColMemberCode: "M-0404"}),
		sheetRow(map[int]string{ColMemberCode: "M-0005"}),
	}

	report, err := svc.ImportExamResults(context.Background(), ImportRequest{
		FileName: "mixed.csv",
		Data:     csvUpload(t, rows),
	})
	require.NoError(t, err)

	want := &ImportReport{
		Success:  false,
		Imported: 2,
		Failed:   3,
		Total:    5,
		Errors: []RowError{
			{Row: 2, Line: 5, Field: "gender", Message: "gender must be one of Male, Female"},
			{Row: 2, Line: 5, Field: "poomsae", Message: "poomsae must be between 0 and 100"},
			{Row: 4, Line: 7, Field: "memberCode", Message: "member not found: M-0404"},
			{Row: 5, Line: 8, Field: "", Message: "persistence failed: disk full"},
		},
		Warnings: []Warning{
			{Row: 3, Line: 6, Field: "sparring", Message: "sparring missing, scored as 0"},
		},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, store.results, 2)
}

func TestImport_FatalErrors(t *testing.T) {
	tests := []struct {
		name       string
		req        ImportRequest
		wantFormat bool
		wantErrIs  error
	}{
		{
			name:       "unsupported extension",
			req:        ImportRequest{Kind: KindExamResults, FileName: "results.pdf", Data: strings.NewReader("x")},
			wantFormat: true,
			wantErrIs:  parsers.ErrUnsupportedFile,
		},
		{
			name:      "empty upload",
			req:       ImportRequest{Kind: KindExamResults, FileName: "results.csv", Data: strings.NewReader("")},
			wantErrIs: ErrEmptyUpload,
		},
		{
			name:      "missing upload",
			req:       ImportRequest{Kind: KindExamResults, FileName: "results.csv"},
			wantErrIs: ErrEmptyUpload,
		},
		{
			name:       "corrupt workbook",
			req:        ImportRequest{Kind: KindExamResults, FileName: "results.xlsx", Data: strings.NewReader("PK\x03\x04 broken")},
			wantFormat: true,
		},
		{
			name: "malformed quoting after valid rows",
			req: ImportRequest{
				Kind:     KindExamResults,
				FileName: "results.csv",
				Data:     strings.NewReader(strings.Join(testutils.Header, ",") + "\n" + strings.Join(sheetRow(nil), ",") + "\n12,\"DOJO01\n"),
			},
			wantFormat: true,
		},
		{
			name:      "unknown kind",
			req:       ImportRequest{Kind: "grading", FileName: "results.csv", Data: strings.NewReader("a")},
			wantErrIs: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryStore().repository()
			svc := newTestService(repo, knownDirectory().Directories(), Config{})

			report, err := svc.Import(context.Background(), tt.req)

			require.Error(t, err)
			assert.Nil(t, report)
			if tt.wantFormat {
				var fe *parsers.FormatError
				assert.ErrorAs(t, err, &fe)
			}
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
			assert.Empty(t, repo.Trace(), "nothing may be persisted")
		})
	}
}

func TestImport_CancelledBeforeExtraction(t *testing.T) {
	repo := newMemoryStore().repository()
	svc := newTestService(repo, knownDirectory().Directories(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ImportExamResults(ctx, ImportRequest{
		FileName: "results.csv",
		Data:     csvUpload(t, [][]string{sheetRow(nil)}),
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.Trace())
}

func TestImport_TestRegistrations(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store.repository(), knownDirectory().Directories(), Config{DefaultBeltLabel: "White Belt"})

	noScores := map[int]string{ColTestID: "", ColTargetBeltLabel: ""}
	for col := ColBasicTechnique; col <= ColSpirit; col++ {
		noScores[col] = ""
	}

	report, err := svc.ImportTestRegistrations(context.Background(), ImportRequest{
		FileName:      "registrations.csv",
		Data:          csvUpload(t, [][]string{sheetRow(noScores)}),
		DefaultTestID: 21,
		RequestedBy:   "admin@example.com",
	})
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, []Warning{{Row: 1, Line: 2, Field: "targetBeltLabel", Message: "targetBeltLabel missing, defaulted to White Belt"}}, report.Warnings)

	require.Len(t, store.registrations, 1)
	assert.Empty(t, store.results)
	reg := store.registrations[storeKey(21, stableID("member", "M-0001"))]
	assert.Equal(t, string(OutcomePending), reg.Status)
	assert.Equal(t, stableID("belt", "White Belt"), reg.BeltUUID)
	assert.Equal(t, "admin@example.com", reg.RequestedBy)
}

func TestImport_CountsAlwaysBalance(t *testing.T) {
	gen := testutils.NewTestDataGenerator(99)
	candidates := gen.GenerateCandidates(5, 60, gen.ClubCodes(4))
	rows := testutils.Rows(candidates)
	// Damage every seventh row in a different way.
	for i := 0; i < len(rows); i += 7 {
		switch (i / 7) % 3 {
		case 0:
			rows[i][ColSpirit] = "150"
		case 1:
			rows[i][ColClubCode] = ""
		case 2:
			rows[i][ColMemberCode] = "M-9999"
		}
	}

	svc := newTestService(newMemoryStore().repository(), knownDirectory("M-9999").Directories(), Config{Workers: 3})
	report, err := svc.ImportExamResults(context.Background(), ImportRequest{
		FileName: "results.csv",
		Data:     csvUpload(t, rows),
	})
	require.NoError(t, err)

	assert.Equal(t, len(rows), report.Total)
	assert.Equal(t, report.Total, report.Imported+report.Failed)
	assert.Equal(t, 9, report.Failed)

	failedRows := map[int]bool{}
	last := 0
	for _, e := range report.Errors {
		assert.LessOrEqual(t, e.Row, report.Total)
		assert.GreaterOrEqual(t, e.Row, last, "errors are in row order")
		last = e.Row
		failedRows[e.Row] = true
	}
	assert.Len(t, failedRows, report.Failed)
}
