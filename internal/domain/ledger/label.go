package ledger

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/uit-hub/academic-ledger/pkg/timeutil"
)

// CurrentSemesterFallback labels the registration when its title cannot be read.
const CurrentSemesterFallback = "Current Semester"

// SemesterMarker is the keyword that identifies a semester boundary row.
const SemesterMarker = "Học kỳ"

// labelRegex matches both "Học kỳ 1 - Năm học 2023-2024" and
// "Học kỳ 1 (2023-2024)".
var labelRegex = regexp.MustCompile(`(?i)học kỳ\s*(\d+).*?(\d{4})\s*-\s*(\d{4})`)

// Label is a parsed semester label.
type Label struct {
	Number    int
	YearStart int
	YearEnd   int
}

// String renders the canonical label.
func (l Label) String() string {
	return FormatLabel(l.Number, l.YearStart, l.YearEnd)
}

// SortKey orders semesters chronologically.
func (l Label) SortKey() int {
	return l.YearStart*10 + l.Number
}

// FormatLabel renders the canonical semester label shared by transcript
// boundary rows and the registration title.
func FormatLabel(number, yearStart, yearEnd int) string {
	return fmt.Sprintf("%s %d - Năm học %d-%d", SemesterMarker, number, yearStart, yearEnd)
}

// ParseLabel extracts the semester number and academic years from a label.
func ParseLabel(label string) (Label, bool) {
	m := labelRegex.FindStringSubmatch(label)
	if m == nil {
		return Label{}, false
	}
	n, err1 := strconv.Atoi(m[1])
	ys, err2 := strconv.Atoi(m[2])
	ye, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return Label{}, false
	}
	return Label{Number: n, YearStart: ys, YearEnd: ye}, true
}

// SortKey returns year_start*10 + semester_number, or 0 when the label
// cannot be parsed.
func SortKey(label string) int {
	l, ok := ParseLabel(label)
	if !ok {
		return 0
	}
	return l.SortKey()
}

// stampWindow fills informational start/end dates from the label.
func stampWindow(s *Semester) {
	l, ok := ParseLabel(s.Label)
	if !ok {
		return
	}
	start, end, ok := timeutil.SemesterWindow(l.Number, l.YearStart)
	if !ok {
		return
	}
	s.StartDate = &start
	s.EndDate = &end
}
