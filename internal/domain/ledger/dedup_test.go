package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sem(label string, status SemesterStatus, note string) Semester {
	return Semester{Label: label, Status: status, Courses: []Course{{Code: note}}}
}

func TestDedup_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		records []Semester
		want    string
		status  SemesterStatus
	}{
		{
			name:    "in-progress overwrites completed",
			records: []Semester{sem(hk1, SemesterCompleted, "a"), sem(hk1, SemesterInProgress, "b")},
			want:    "b",
			status:  SemesterInProgress,
		},
		{
			name:    "completed never overwrites in-progress",
			records: []Semester{sem(hk1, SemesterInProgress, "a"), sem(hk1, SemesterCompleted, "b")},
			want:    "a",
			status:  SemesterInProgress,
		},
		{
			name:    "later completed overwrites completed",
			records: []Semester{sem(hk1, SemesterCompleted, "a"), sem(hk1, SemesterCompleted, "b")},
			want:    "b",
			status:  SemesterCompleted,
		},
		{
			name:    "later in-progress overwrites in-progress",
			records: []Semester{sem(hk1, SemesterInProgress, "a"), sem(hk1, SemesterInProgress, "b")},
			want:    "b",
			status:  SemesterInProgress,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Dedup(tt.records)
			require.Len(t, out, 1)
			assert.Equal(t, tt.want, out[0].Courses[0].Code)
			assert.Equal(t, tt.status, out[0].Status)
		})
	}
}

func TestDedup_KeepsFirstSeenOrder(t *testing.T) {
	out := Dedup([]Semester{
		sem(hk2, SemesterCompleted, "x"),
		sem(hk1, SemesterCompleted, "y"),
		sem(hk2, SemesterInProgress, "z"),
	})
	require.Len(t, out, 2)
	assert.Equal(t, hk2, out[0].Label)
	assert.Equal(t, "z", out[0].Courses[0].Code)
	assert.Equal(t, hk1, out[1].Label)
}

func TestSortKey(t *testing.T) {
	assert.Equal(t, 20231, SortKey("Học kỳ 1 - Năm học 2023-2024"))
	assert.Equal(t, 20232, SortKey("Học kỳ 2 (2023-2024)"))
	assert.Equal(t, 20243, SortKey("HỌC KỲ 3 NĂM 2024 - 2025"))
	assert.Equal(t, 0, SortKey(CurrentSemesterFallback))
	assert.Equal(t, 0, SortKey(""))
}

func TestSortChronological(t *testing.T) {
	labels := []string{"Học kỳ 1 (2024-2025)", "Học kỳ 2 (2023-2024)", CurrentSemesterFallback, "Học kỳ 1 (2023-2024)"}
	var records []Semester
	for _, l := range labels {
		records = append(records, Semester{Label: l})
	}

	out := SortChronological(records)

	got := make([]string, len(out))
	for i, s := range out {
		got[i] = s.Label
	}
	assert.Equal(t, []string{CurrentSemesterFallback, "Học kỳ 1 (2023-2024)", "Học kỳ 2 (2023-2024)", "Học kỳ 1 (2024-2025)"}, got)
	assert.Equal(t, "Học kỳ 1 (2024-2025)", records[0].Label, "input must not be reordered")
}

func TestParseLabel(t *testing.T) {
	l, ok := ParseLabel("Học kỳ 2 - Năm học 2023-2024")
	require.True(t, ok)
	assert.Equal(t, Label{Number: 2, YearStart: 2023, YearEnd: 2024}, l)
	assert.Equal(t, "Học kỳ 2 - Năm học 2023-2024", l.String())

	_, ok = ParseLabel("Năm học 2023-2024")
	assert.False(t, ok)
}
