package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the completion status of a single course. Values keep the
// portal's wording so stored documents stay readable by existing consumers.
type Status string

const (
	// StatusCompletedExempt - курс зачтён без оценки ("Miễn").
	StatusCompletedExempt Status = "Đã hoàn thành"
	// StatusPassed - итоговый балл >= 4.0.
	StatusPassed Status = "Qua môn"
	// StatusFailed - итоговый балл < 4.0.
	StatusFailed Status = "Không hoàn thành"
	// StatusNotYetCompleted - оценки ещё нет.
	StatusNotYetCompleted Status = "Chưa hoàn thành"
)

// IsValid checks that s is one of the four known states.
func (s Status) IsValid() bool {
	switch s {
	case StatusCompletedExempt, StatusPassed, StatusFailed, StatusNotYetCompleted:
		return true
	}
	return false
}

// SemesterStatus is the lifecycle state of a semester record.
type SemesterStatus string

const (
	SemesterInProgress SemesterStatus = "Đang học"
	SemesterCompleted  SemesterStatus = "Đã hoàn thành"
)

// ExemptMarker is the total-score text the portal prints for exempted courses.
const ExemptMarker = "Miễn"

// ══════════════════════════════════════════════════════════════════════════════
// TOTAL SCORE
// ══════════════════════════════════════════════════════════════════════════════

// TotalScore is either a numeric score, the exemption marker, or absent.
// It serializes as a JSON number, the string "Miễn", or null.
type TotalScore struct {
	Value  *float64
	Exempt bool
}

// NumericScore returns a determinate numeric total score.
func NumericScore(v float64) TotalScore {
	return TotalScore{Value: &v}
}

// ExemptScore returns the exemption total score.
func ExemptScore() TotalScore {
	return TotalScore{Exempt: true}
}

// IsNumeric reports whether the score carries a determinate number.
func (t TotalScore) IsNumeric() bool {
	return !t.Exempt && t.Value != nil
}

// IsEmpty reports whether the score is absent.
func (t TotalScore) IsEmpty() bool {
	return !t.Exempt && t.Value == nil
}

// String renders the score the way the portal prints it.
func (t TotalScore) String() string {
	switch {
	case t.Exempt:
		return ExemptMarker
	case t.Value != nil:
		return formatScore(*t.Value)
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (t TotalScore) MarshalJSON() ([]byte, error) {
	switch {
	case t.Exempt:
		return json.Marshal(ExemptMarker)
	case t.Value != nil:
		return json.Marshal(*t.Value)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Numeric strings are accepted
// because older documents stored scores as text.
func (t *TotalScore) UnmarshalJSON(data []byte) error {
	*t = TotalScore{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTotalScore(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("total score: %w", err)
	}
	t.Value = &v
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Scores holds the component scores of a course. Any of them may be missing.
type Scores struct {
	Process  *float64 `json:"process"`
	Midterm  *float64 `json:"midterm"`
	Practice *float64 `json:"practice"`
	Final    *float64 `json:"final"`
}

// Course is a single course line inside a semester.
type Course struct {
	Code       string     `json:"course_code"`
	Name       string     `json:"course_name"`
	Credits    int        `json:"credits"`
	Scores     Scores     `json:"scores"`
	TotalScore TotalScore `json:"total_score"`
	Status     Status     `json:"complete"`
	Note       string     `json:"note"`
}

// IsExempt reports whether the course was credited without a score.
func (c Course) IsExempt() bool {
	return c.TotalScore.Exempt || c.Status == StatusCompletedExempt
}

// IsGPAEligible reports whether the course weighs into averages:
// a determinate numeric total that is neither exempt nor pending.
func (c Course) IsGPAEligible() bool {
	return c.TotalScore.IsNumeric() && c.Status != StatusNotYetCompleted && c.Status != StatusCompletedExempt
}

// CountsAsCompleted reports whether the course satisfies a curriculum
// subject or prerequisite: not failed, not pending and not exempt.
func (c Course) CountsAsCompleted() bool {
	return c.Status != StatusFailed && c.Status != StatusNotYetCompleted && !c.IsExempt()
}

// ══════════════════════════════════════════════════════════════════════════════
// SEMESTER RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Semester is one semester of the ledger, keyed by its label.
type Semester struct {
	Label        string         `json:"semester"`
	Courses      []Course       `json:"courses"`
	CreditsTaken int            `json:"credits_taken"`
	Average      *float64       `json:"semester_average"`
	Status       SemesterStatus `json:"status"`
	StartDate    *time.Time     `json:"start_date,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
}

// IsInProgress reports whether this is the current, still-running semester.
func (s Semester) IsInProgress() bool {
	return s.Status == SemesterInProgress
}

// CourseByCode returns the course with the given code, if present.
func (s Semester) CourseByCode(code string) (Course, bool) {
	for _, c := range s.Courses {
		if c.Code == code {
			return c, true
		}
	}
	return Course{}, false
}

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// Summary holds ledger-wide aggregates.
type Summary struct {
	TotalCreditsTaken       int      `json:"total_credits_taken"`
	TotalCreditsAccumulated int      `json:"total_credits_accumulated"`
	OverallAverage          *float64 `json:"overall_average"`
}

// Progress holds the degree-level block stored with the ledger.
type Progress struct {
	TotalCreditsRequired int      `json:"total_credits_required"`
	GraduationStatus     string   `json:"graduation_status"`
	Warnings             []string `json:"warnings"`
}

// GraduationStatusStudying is the graduation status of an enrolled student.
const GraduationStatusStudying = "Đang học"

// Ledger is the per-student academic record.
type Ledger struct {
	MSSV     string     `json:"mssv"`
	Records  []Semester `json:"academic_records"`
	Summary  Summary    `json:"summary"`
	Progress Progress   `json:"progress"`
	SyncID   string     `json:"sync_id,omitempty"`
	SyncedAt time.Time  `json:"synced_at"`
}

// FindSemester returns the record with the given label.
func (l *Ledger) FindSemester(label string) (Semester, bool) {
	for _, s := range l.Records {
		if s.Label == label {
			return s, true
		}
	}
	return Semester{}, false
}

// Current returns the in-progress semester, if any.
func (l *Ledger) Current() (Semester, bool) {
	for _, s := range l.Records {
		if s.IsInProgress() {
			return s, true
		}
	}
	return Semester{}, false
}

// AllCourses returns every course in record order.
func (l *Ledger) AllCourses() []Course {
	var out []Course
	for _, s := range l.Records {
		out = append(out, s.Courses...)
	}
	return out
}

// Validate checks the ledger invariants: one record per label, at most one
// in-progress record, and unique course codes per semester.
func (l *Ledger) Validate() error {
	labels := make(map[string]struct{}, len(l.Records))
	inProgress := 0
	for _, s := range l.Records {
		if _, dup := labels[s.Label]; dup {
			return fmt.Errorf("duplicate semester %q", s.Label)
		}
		labels[s.Label] = struct{}{}
		if s.IsInProgress() {
			inProgress++
		}
		codes := make(map[string]struct{}, len(s.Courses))
		for _, c := range s.Courses {
			if _, dup := codes[c.Code]; dup {
				return fmt.Errorf("duplicate course %q in %q", c.Code, s.Label)
			}
			codes[c.Code] = struct{}{}
		}
	}
	if inProgress > 1 {
		return fmt.Errorf("%d in-progress semesters", inProgress)
	}
	return nil
}

func formatScore(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
