package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/internal/domain/student"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeLedgerRepo struct {
	mu      sync.Mutex
	ledgers map[string]*ledger.Ledger
	upserts int
	findErr error
	saveErr error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{ledgers: make(map[string]*ledger.Ledger)}
}

func (r *fakeLedgerRepo) FindByMSSV(_ context.Context, mssv string) (*ledger.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	l, ok := r.ledgers[mssv]
	if !ok {
		return nil, shared.ErrLedgerNotFound
	}
	return l, nil
}

func (r *fakeLedgerRepo) Upsert(_ context.Context, l *ledger.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.upserts++
	r.ledgers[l.MSSV] = l
	return nil
}

func (r *fakeLedgerRepo) Delete(_ context.Context, mssv string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ledgers, mssv)
	return nil
}

func (r *fakeLedgerRepo) List(context.Context, ledger.ListOptions) ([]ledger.Info, error) {
	return nil, nil
}

type fakeProfileRepo struct {
	profiles map[string]*student.Profile
}

func (r *fakeProfileRepo) FindByMSSV(_ context.Context, mssv string) (*student.Profile, error) {
	p, ok := r.profiles[mssv]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *student.Profile) error {
	r.profiles[p.MSSV] = p
	return nil
}

type fakePortal struct {
	transcript    *TranscriptData
	transcriptErr error
	registration  *RegistrationData
	regErr        error
	major         string
	majorErr      error
}

func (p *fakePortal) FetchTranscript(context.Context, string, string) (*TranscriptData, error) {
	return p.transcript, p.transcriptErr
}

func (p *fakePortal) FetchRegistration(context.Context, string) (*RegistrationData, error) {
	return p.registration, p.regErr
}

func (p *fakePortal) FetchMajor(context.Context, string) (string, error) {
	return p.major, p.majorErr
}

type fakeCache struct {
	invalidated []string
}

func (c *fakeCache) Get(context.Context, string) (*ledger.Ledger, error) { return nil, nil }
func (c *fakeCache) Set(context.Context, *ledger.Ledger) error           { return nil }
func (c *fakeCache) Invalidate(_ context.Context, mssv string) error {
	c.invalidated = append(c.invalidated, mssv)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

const testMSSV = "21520001"

func courseRow(code, name, credits, total string) []string {
	return []string{"1", code, name, credits, "8", "7", "", "9", total, ""}
}

func transcriptRows() [][]string {
	return [][]string{
		{"STT", "Mã HP", "Tên HP", "TC", "QT", "GK", "TH", "CK", "TB", "Ghi chú"},
		{"Học kỳ 1 - Năm học 2021-2022"},
		courseRow("IT001", "Nhập môn lập trình", "4", "8"),
		courseRow("MA006", "Giải tích", "4", "3"),
		{"Học kỳ 2 - Năm học 2021-2022"},
		courseRow("IT002", "Lập trình hướng đối tượng", "4", "7.5"),
		courseRow("PE231", "Giáo dục thể chất 1", "1", "Miễn"),
	}
}

func registrationPage() *RegistrationData {
	return &RegistrationData{
		Title: "KẾT QUẢ ĐĂNG KÝ HỌC PHẦN HỌC KỲ 1 NĂM 2022 - 2023",
		Rows: [][]string{
			{"STT", "Mã lớp", "Mã MH", "Tên môn", "TC"},
			{"1", "IT003", "IT003.N11", "Cấu trúc dữ liệu", "3"},
			{"2", "IT003.1", "IT003.N11.1", "Cấu trúc dữ liệu (TH)", "1"},
			{"3", "NT106", "NT106.N11", "Lập trình mạng", "3"},
		},
	}
}

type fixture struct {
	ledgers  *fakeLedgerRepo
	profiles *fakeProfileRepo
	portal   *fakePortal
	cache    *fakeCache
	handler  *SyncLedgerHandler
}

var fixedNow = time.Date(2022, 10, 1, 8, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		ledgers:  newFakeLedgerRepo(),
		profiles: &fakeProfileRepo{profiles: make(map[string]*student.Profile)},
		portal: &fakePortal{
			transcript: &TranscriptData{
				Rows:          transcriptRows(),
				StudentNumber: testMSSV,
				FullName:      "Nguyễn Văn A",
				Class:         "MMTT2021",
			},
			registration: registrationPage(),
			major:        "Mạng máy tính và Truyền thông dữ liệu",
		},
		cache: &fakeCache{},
	}
	f.handler = NewSyncLedgerHandler(f.ledgers, f.profiles, f.portal, NewLocalSyncLocker(), f.cache, nil,
		SyncLedgerHandlerConfig{CreditsRequired: 150, Now: func() time.Time { return fixedNow }})
	return f
}

func validCommand() SyncLedgerCommand {
	return SyncLedgerCommand{MSSV: testMSSV, Cookie: "cookie"}
}

// ──────────────────────────────────────────────────────────────────────────────
// Sync ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncLedgerCommand_Validate(t *testing.T) {
	assert.NoError(t, validCommand().Validate())

	cmd := validCommand()
	cmd.MSSV = "abc"
	assert.ErrorIs(t, cmd.Validate(), shared.ErrInvalidMSSV)

	cmd = validCommand()
	cmd.Cookie = "  "
	assert.ErrorIs(t, cmd.Validate(), shared.ErrMissingSession)
}

func TestSyncLedger_BuildsAndPersists(t *testing.T) {
	f := newFixture()

	res, err := f.handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)

	l := res.Ledger
	require.Len(t, l.Records, 3)
	assert.Equal(t, "Học kỳ 1 - Năm học 2021-2022", l.Records[0].Label)
	assert.Equal(t, "Học kỳ 2 - Năm học 2021-2022", l.Records[1].Label)
	assert.Equal(t, "Học kỳ 1 - Năm học 2022-2023", l.Records[2].Label)
	assert.True(t, l.Records[2].IsInProgress())

	current := l.Records[2]
	require.Len(t, current.Courses, 2)
	assert.Equal(t, 4, current.Courses[0].Credits, "lab credits folded into theory course")
	assert.Equal(t, 7, current.CreditsTaken)

	assert.Equal(t, res.SyncID, l.SyncID)
	assert.NotEmpty(t, res.SyncID)
	assert.Equal(t, fixedNow, res.SyncedAt)
	assert.Equal(t, 150, l.Progress.TotalCreditsRequired)
	assert.Equal(t, 13, res.Totals.CreditsAccumulated)

	assert.Equal(t, 1, f.ledgers.upserts)
	assert.Same(t, l, f.ledgers.ledgers[testMSSV])
	assert.Equal(t, []string{testMSSV}, f.cache.invalidated)

	require.NotNil(t, res.Profile)
	assert.Equal(t, "Mạng máy tính và Truyền thông dữ liệu", res.Profile.Major)
	assert.Equal(t, "21520001@gm.uit.edu.vn", res.Profile.Email)
	assert.Equal(t, res.Profile, f.profiles.profiles[testMSSV])
}

func TestSyncLedger_ResyncIsIdempotent(t *testing.T) {
	f := newFixture()

	first, err := f.handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)
	second, err := f.handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, len(first.Ledger.Records), len(second.Ledger.Records))
	inProgress := 0
	for _, s := range second.Ledger.Records {
		if s.IsInProgress() {
			inProgress++
		}
	}
	assert.Equal(t, 1, inProgress)
	assert.NotEqual(t, first.SyncID, second.SyncID)
}

func TestSyncLedger_TranscriptFailureWritesNothing(t *testing.T) {
	f := newFixture()
	f.portal.transcriptErr = shared.ErrPortalNotLoggedIn

	_, err := f.handler.Handle(context.Background(), validCommand())

	assert.ErrorIs(t, err, shared.ErrPortalNotLoggedIn)
	assert.Zero(t, f.ledgers.upserts)
	assert.Empty(t, f.cache.invalidated)
}

func TestSyncLedger_RegistrationFailureKeepsStoredLedger(t *testing.T) {
	f := newFixture()
	_, err := f.handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)
	stored := f.ledgers.ledgers[testMSSV]
	require.Len(t, stored.Records, 3)

	f.portal.registration = nil
	f.portal.regErr = shared.ErrPortalUnavailable

	_, err = f.handler.Handle(context.Background(), validCommand())

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrFetch)
	assert.ErrorIs(t, err, shared.ErrPortalUnavailable)
	assert.Equal(t, 1, f.ledgers.upserts)
	assert.Same(t, stored, f.ledgers.ledgers[testMSSV])
	current, ok := f.ledgers.ledgers[testMSSV].Current()
	require.True(t, ok)
	assert.Equal(t, "Học kỳ 1 - Năm học 2022-2023", current.Label)
	assert.Len(t, current.Courses, 2)
}

func TestSyncLedger_RegistrationCanceled(t *testing.T) {
	f := newFixture()
	f.portal.regErr = context.Canceled

	_, err := f.handler.Handle(context.Background(), validCommand())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.ledgers.upserts)
}

func TestSyncLedger_EmptyTranscriptAndRegistration(t *testing.T) {
	f := newFixture()
	f.portal.transcript.Rows = nil
	f.portal.registration.Rows = f.portal.registration.Rows[:1]

	_, err := f.handler.Handle(context.Background(), validCommand())

	assert.ErrorIs(t, err, shared.ErrTranscriptEmpty)
	assert.Zero(t, f.ledgers.upserts)
}

func TestSyncLedger_StoreFailure(t *testing.T) {
	f := newFixture()
	f.ledgers.saveErr = errors.New("connection reset")

	_, err := f.handler.Handle(context.Background(), validCommand())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save ledger")
	assert.Empty(t, f.profiles.profiles)
}

func TestSyncLedger_CarriesPriorScores(t *testing.T) {
	f := newFixture()
	label := "Học kỳ 1 - Năm học 2022-2023"
	f.ledgers.ledgers[testMSSV] = &ledger.Ledger{
		MSSV: testMSSV,
		Records: []ledger.Semester{{
			Label:  label,
			Status: ledger.SemesterInProgress,
			Courses: []ledger.Course{{
				Code: "IT003", Credits: 4, TotalScore: ledger.NumericScore(8.5), Status: ledger.StatusPassed,
			}},
		}},
	}

	res, err := f.handler.Handle(context.Background(), validCommand())
	require.NoError(t, err)

	current, ok := res.Ledger.FindSemester(label)
	require.True(t, ok)
	it003, ok := current.CourseByCode("IT003")
	require.True(t, ok)
	assert.Equal(t, ledger.NumericScore(8.5), it003.TotalScore)
	assert.Equal(t, ledger.StatusPassed, it003.Status)

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "NT106", res.Conflicts[0].Code)
}

func TestSyncLedger_MajorOverrideAndProfileMerge(t *testing.T) {
	f := newFixture()
	f.portal.majorErr = shared.ErrPortalUnavailable
	f.profiles.profiles[testMSSV] = &student.Profile{
		MSSV:      testMSSV,
		Gender:    "Nam",
		UpdatedAt: fixedNow.Add(-time.Hour),
	}

	cmd := validCommand()
	cmd.Major = "An toàn thông tin"
	res, err := f.handler.Handle(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, "An toàn thông tin", res.Profile.Major)
	assert.Equal(t, "Nam", res.Profile.Gender)
	assert.Equal(t, "Nguyễn Văn A", res.Profile.FullName)
	assert.Equal(t, fixedNow, res.Profile.UpdatedAt)
}

func TestSyncLedger_LockHeld(t *testing.T) {
	f := newFixture()
	locker := NewLocalSyncLocker()
	f.handler.locker = locker

	release, err := locker.Acquire(context.Background(), testMSSV)
	require.NoError(t, err)
	defer release()

	_, err = f.handler.Handle(context.Background(), validCommand())

	assert.ErrorIs(t, err, shared.ErrSyncInProgress)
	assert.Zero(t, f.ledgers.upserts)
}

func TestLocalSyncLocker(t *testing.T) {
	l := NewLocalSyncLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, testMSSV)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, testMSSV)
	assert.ErrorIs(t, err, shared.ErrSyncInProgress)

	other, err := l.Acquire(ctx, "21520002")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := l.Acquire(ctx, testMSSV)
	require.NoError(t, err)
	again()

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.Acquire(canceled, testMSSV)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalSyncLocker_Concurrent(t *testing.T) {
	l := NewLocalSyncLocker()
	var (
		attempts sync.WaitGroup
		done     sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)
	hold := make(chan struct{})
	for i := 0; i < 8; i++ {
		attempts.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			release, err := l.Acquire(context.Background(), testMSSV)
			attempts.Done()
			if err != nil {
				return
			}
			mu.Lock()
			acquired++
			mu.Unlock()
			<-hold
			release()
		}()
	}
	attempts.Wait()
	close(hold)
	done.Wait()

	assert.Equal(t, 1, acquired)
}

// ──────────────────────────────────────────────────────────────────────────────
// Import curriculum
// ──────────────────────────────────────────────────────────────────────────────

type fakeCurriculumRepo struct {
	programs map[string]*curriculum.Program
}

func (r *fakeCurriculumRepo) FindByMajor(_ context.Context, major string) (*curriculum.Program, error) {
	p, ok := r.programs[major]
	if !ok {
		return nil, shared.ErrCurriculumNotFound
	}
	return p, nil
}

func (r *fakeCurriculumRepo) Upsert(_ context.Context, p *curriculum.Program) error {
	r.programs[p.Major] = p
	return nil
}

func (r *fakeCurriculumRepo) ListMajors(context.Context) ([]string, error) {
	var out []string
	for m := range r.programs {
		out = append(out, m)
	}
	return out, nil
}

const seedYAML = `major: Mạng máy tính và Truyền thông dữ liệu
curriculum:
  - course_code: IT001
    course_name: Nhập môn lập trình
    category: Cơ sở ngành
    credits: 4
  - course_code: " IT002 "
    course_name: Lập trình hướng đối tượng
    category: Cơ sở ngành
    credits: 4
    prerequisites: [IT001]
---
major: An toàn thông tin
curriculum:
  - course_code: NT101
    category: Chuyên ngành
    credits: 3
`

func TestImportCurriculum(t *testing.T) {
	repo := &fakeCurriculumRepo{programs: make(map[string]*curriculum.Program)}
	h := NewImportCurriculumHandler(repo, nil)

	res, err := h.Handle(context.Background(), ImportCurriculumCommand{Source: strings.NewReader(seedYAML)})

	require.NoError(t, err)
	require.Len(t, res.Programs, 2)
	assert.Equal(t, ImportedProgram{Major: "Mạng máy tính và Truyền thông dữ liệu", Subjects: 2, TotalCredits: 8}, res.Programs[0])

	p := repo.programs["Mạng máy tính và Truyền thông dữ liệu"]
	require.NotNil(t, p)
	assert.Equal(t, "IT002", p.Subjects[1].Code)
	assert.Equal(t, []string{"IT001"}, p.Subjects[1].Prerequisites)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestImportCurriculum_SingleMajor(t *testing.T) {
	repo := &fakeCurriculumRepo{programs: make(map[string]*curriculum.Program)}
	h := NewImportCurriculumHandler(repo, nil)

	res, err := h.Handle(context.Background(), ImportCurriculumCommand{
		Source: strings.NewReader(seedYAML),
		Major:  "An toàn thông tin",
	})
	require.NoError(t, err)
	require.Len(t, res.Programs, 1)
	assert.Len(t, repo.programs, 1)

	_, err = h.Handle(context.Background(), ImportCurriculumCommand{
		Source: strings.NewReader(seedYAML),
		Major:  "Khoa học máy tính",
	})
	assert.Error(t, err)
}

func TestImportCurriculum_InvalidWritesNothing(t *testing.T) {
	repo := &fakeCurriculumRepo{programs: make(map[string]*curriculum.Program)}
	h := NewImportCurriculumHandler(repo, nil)

	src := seedYAML + "---\nmajor: Broken\ncurriculum:\n  - course_code: X1\n  - course_code: X1\n"
	_, err := h.Handle(context.Background(), ImportCurriculumCommand{Source: strings.NewReader(src)})

	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Empty(t, repo.programs)
}

func TestDecodePrograms_Errors(t *testing.T) {
	_, err := DecodePrograms(strings.NewReader(""))
	assert.Error(t, err)

	_, err = DecodePrograms(strings.NewReader("major: X\ncurriculum:\n  - course_code: A\n    credit: 3\n"))
	assert.Error(t, err, "unknown field rejected")

	assert.Error(t, ImportCurriculumCommand{}.Validate())
}

// ──────────────────────────────────────────────────────────────────────────────
// Recompute summary
// ──────────────────────────────────────────────────────────────────────────────

func TestRecomputeSummary(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.ledgers[testMSSV] = &ledger.Ledger{
		MSSV: testMSSV,
		Records: []ledger.Semester{{
			Label:  "Học kỳ 1 - Năm học 2021-2022",
			Status: ledger.SemesterCompleted,
			Courses: []ledger.Course{
				{Code: "IT001", Credits: 4, TotalScore: ledger.NumericScore(8), Status: ledger.StatusPassed},
				{Code: "MA006", Credits: 4, TotalScore: ledger.NumericScore(3), Status: ledger.StatusFailed},
				{Code: "PE231", Credits: 1, TotalScore: ledger.ExemptScore(), Status: ledger.StatusCompletedExempt},
			},
		}},
	}
	cache := &fakeCache{}
	h := NewRecomputeSummaryHandler(repo, nil, cache, nil)

	l, err := h.Handle(context.Background(), RecomputeSummaryCommand{MSSV: testMSSV})

	require.NoError(t, err)
	assert.Equal(t, 9, l.Records[0].CreditsTaken)
	require.NotNil(t, l.Records[0].Average)
	assert.Equal(t, 8.0, *l.Records[0].Average)
	assert.Equal(t, 1, repo.upserts)
	assert.Equal(t, []string{testMSSV}, cache.invalidated)

	_, err = h.Handle(context.Background(), RecomputeSummaryCommand{MSSV: "21529999"})
	assert.ErrorIs(t, err, shared.ErrLedgerNotFound)
}
