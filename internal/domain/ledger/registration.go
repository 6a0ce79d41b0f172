package ledger

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

// registrationTitleRegex reads "HỌC KỲ 1 NĂM 2024 - 2025" from the
// registration page title.
var registrationTitleRegex = regexp.MustCompile(`(?i)HỌC KỲ (\d+) NĂM (\d{4}) - (\d{4})`)

// labMarker flags the practical half of a split theory/lab course.
const labMarker = "(TH"

// Registration is the current semester as read from the course
// registration page. Courses carry no scores yet.
type Registration struct {
	Label   string
	Courses []Course
	// DroppedLabRows counts lab rows with no matching theory entry.
	DroppedLabRows int
}

// ParseRegistrationTitle turns the page title into the canonical label,
// or CurrentSemesterFallback when it does not match.
func ParseRegistrationTitle(title string) string {
	m := registrationTitleRegex.FindStringSubmatch(title)
	if m == nil {
		return CurrentSemesterFallback
	}
	n, _ := strconv.Atoi(m[1])
	ys, _ := strconv.Atoi(m[2])
	ye, _ := strconv.Atoi(m[3])
	return FormatLabel(n, ys, ye)
}

// ParseRegistration builds the current semester course list. The first row
// is the table header. Rows need at least 5 cells: code in cell 1, name in
// cell 3, credits in cell 4. A lab row adds its credits to the first
// existing course whose code prefixes the lab row's code.
func ParseRegistration(title string, rows [][]string) Registration {
	reg := Registration{Label: ParseRegistrationTitle(title)}
	if len(rows) == 0 {
		return reg
	}

	for _, cells := range rows[1:] {
		if len(cells) < 5 {
			continue
		}
		code := cell(cells, 1)
		name := cell(cells, 3)
		credits := ParseCredits(cell(cells, 4))

		if strings.Contains(name, labMarker) {
			if !mergeLab(reg.Courses, code, credits) {
				reg.DroppedLabRows++
			}
			continue
		}

		reg.Courses = append(reg.Courses, Course{
			Code:    code,
			Name:    name,
			Credits: credits,
			Status:  StatusNotYetCompleted,
		})
	}
	return reg
}

func mergeLab(courses []Course, code string, credits int) bool {
	for i := range courses {
		if shared.CourseCode(code).HasPrefix(shared.CourseCode(courses[i].Code)) {
			courses[i].Credits += credits
			return true
		}
	}
	return false
}
