package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOverallAverage_ExcludesExemptAndPending(t *testing.T) {
	base := &Ledger{Records: []Semester{{Label: hk1, Courses: []Course{
		scored("A", 3, NumericScore(8)),
		scored("B", 2, NumericScore(3)),
	}}}}
	baseAvg := ComputeOverallAverage(base)
	require.NotNil(t, baseAvg)
	assert.InDelta(t, 6.0, *baseAvg, 1e-9)

	for _, credits := range []int{0, 1, 5, 100} {
		l := &Ledger{Records: []Semester{{Label: hk1, Courses: []Course{
			scored("A", 3, NumericScore(8)),
			scored("B", 2, NumericScore(3)),
			scored("X", credits, ExemptScore()),
			pending("Y", credits),
		}}}}
		avg := ComputeOverallAverage(l)
		require.NotNil(t, avg)
		assert.InDelta(t, *baseAvg, *avg, 1e-9, "credits=%d", credits)
	}
}

func TestComputeOverallAverage_NoEligibleCredits(t *testing.T) {
	l := &Ledger{Records: []Semester{{Courses: []Course{scored("X", 2, ExemptScore()), pending("Y", 3)}}}}
	assert.Nil(t, ComputeOverallAverage(l))
	assert.Nil(t, ComputeOverallAverage(&Ledger{}))
}

func TestComputeSummary(t *testing.T) {
	l := &Ledger{Records: []Semester{
		{Label: hk1, Courses: []Course{
			scored("A", 3, NumericScore(8)),
			scored("B", 2, NumericScore(3)),
			scored("PE", 1, ExemptScore()),
		}},
		{Label: hk2, Status: SemesterInProgress, Courses: []Course{pending("C", 4)}},
	}}

	s := ComputeSummary(l)

	assert.Equal(t, 6, s.TotalCreditsTaken)
	assert.Equal(t, 10, s.TotalCreditsAccumulated)
	require.NotNil(t, s.OverallAverage)
	assert.Equal(t, 6.0, *s.OverallAverage)
}

func TestRecomputeSemesters(t *testing.T) {
	l := &Ledger{Records: []Semester{
		{Label: hk1, Courses: []Course{
			scored("A", 3, NumericScore(8)),
			scored("B", 2, NumericScore(3)),
			scored("PE", 1, ExemptScore()),
		}},
		{Label: hk2, Courses: []Course{pending("C", 4)}},
	}}

	RecomputeSemesters(l)

	assert.Equal(t, 6, l.Records[0].CreditsTaken)
	assert.Equal(t, 6.0, *l.Records[0].Average, "failed courses weigh in, exempt ones do not")
	assert.Equal(t, *ComputeSummary(l).OverallAverage, *l.Records[0].Average)
	assert.Equal(t, 4, l.Records[1].CreditsTaken)
	assert.Equal(t, 0.0, *l.Records[1].Average)
}

func TestAssemble_IdempotentResync(t *testing.T) {
	transcript := ParseTranscript([][]string{
		boundary(hk1),
		courseRow("IT001", "NMLT", "4", "8"),
		boundary(hk2),
		courseRow("IT003", "CTDL", "4", "7"),
	})
	reg := ParseRegistration("HỌC KỲ 2 NĂM 2023 - 2024", [][]string{
		{"header"},
		regRow("IT003", "CTDL", "4"),
		regRow("IT004", "CSDL", "4"),
	})
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first := Assemble(AssembleParams{MSSV: "21520001", Transcript: transcript, Registration: &reg, CreditsRequired: 150, Now: now})
	second := Assemble(AssembleParams{MSSV: "21520001", Transcript: transcript, Registration: &reg, Previous: first.Ledger, CreditsRequired: 150, Now: now})

	for _, res := range []AssembleResult{first, second} {
		l := res.Ledger
		require.NoError(t, l.Validate())
		require.Len(t, l.Records, 2)
		assert.Equal(t, hk1, l.Records[0].Label)
		assert.Equal(t, hk2, l.Records[1].Label)
		assert.True(t, l.Records[1].IsInProgress())

		it003, ok := l.Records[1].CourseByCode("IT003")
		require.True(t, ok)
		assert.Equal(t, 7.0, *it003.TotalScore.Value)

		assert.Equal(t, 150, l.Progress.TotalCreditsRequired)
		assert.Equal(t, 8, l.Summary.TotalCreditsTaken)
		assert.Equal(t, 12, l.Summary.TotalCreditsAccumulated)
	}
	assert.Equal(t, first.Ledger.Records, second.Ledger.Records)
	assert.Len(t, first.Conflicts, 1)
}

func TestAssemble_RefreshUsesPersistedScores(t *testing.T) {
	prev := &Ledger{MSSV: "21520001", Records: []Semester{
		{Label: hk2, Status: SemesterInProgress, Courses: []Course{scored("IT003", 4, NumericScore(9))}},
	}}
	reg := Registration{Label: hk2, Courses: []Course{pending("IT003", 4)}}

	res := Assemble(AssembleParams{MSSV: "21520001", Registration: &reg, Previous: prev})

	require.Len(t, res.Ledger.Records, 1)
	c, _ := res.Ledger.Records[0].CourseByCode("IT003")
	assert.Equal(t, 9.0, *c.TotalScore.Value)
	assert.Equal(t, StatusPassed, c.Status)
}

func TestLedger_Validate(t *testing.T) {
	l := &Ledger{Records: []Semester{sem(hk1, SemesterInProgress, "a"), sem(hk2, SemesterInProgress, "b")}}
	assert.Error(t, l.Validate())

	l = &Ledger{Records: []Semester{sem(hk1, SemesterCompleted, "a"), sem(hk1, SemesterCompleted, "b")}}
	assert.Error(t, l.Validate())

	l = &Ledger{Records: []Semester{{Label: hk1, Courses: []Course{{Code: "A"}, {Code: "A"}}}}}
	assert.Error(t, l.Validate())
}
