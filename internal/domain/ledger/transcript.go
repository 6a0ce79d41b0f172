package ledger

import (
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSCRIPT TABLE PARSER
// Строки таблицы подаются по одной; граница семестра закрывает текущий
// семестр, строка курса добавляется в него.
// ══════════════════════════════════════════════════════════════════════════════

// Transcript course row columns.
const (
	colCode = 1 + iota
	colName
	colCredits
	colProcess
	colMidterm
	colPractice
	colFinal
	colTotal
	colNote

	courseRowMinCells = 10
)

// ParserState is the state of the transcript parser.
type ParserState int

const (
	// NoActiveSemester - граница семестра ещё не встречалась.
	NoActiveSemester ParserState = iota
	// AccumulatingSemester - курсы добавляются к открытому семестру.
	AccumulatingSemester
)

// String returns the state name.
func (s ParserState) String() string {
	if s == AccumulatingSemester {
		return "AccumulatingSemester"
	}
	return "NoActiveSemester"
}

// Totals are the running accumulators across all finalized semesters.
type Totals struct {
	// CreditsTaken sums the GPA-eligible credits of finalized semesters.
	CreditsTaken int
	// CreditsAccumulated sums every parsed course regardless of status.
	CreditsAccumulated int
	// WeightedSum is Σ total_score × credits over GPA-eligible courses.
	WeightedSum float64
	// GPACredits is Σ credits over GPA-eligible courses.
	GPACredits int
}

// OverallAverage returns WeightedSum / GPACredits rounded to 2 decimals,
// or nil when no course is GPA-eligible.
func (t Totals) OverallAverage() *float64 {
	if t.GPACredits == 0 {
		return nil
	}
	return ptr(Round2(t.WeightedSum / float64(t.GPACredits)))
}

// TranscriptResult is the output of a full parse.
type TranscriptResult struct {
	Semesters []Semester
	Totals    Totals
	// Skipped counts rows that matched neither a boundary nor a course row,
	// plus course rows seen before any boundary.
	Skipped int
}

// TranscriptParser is the explicit row-scanning state machine.
type TranscriptParser struct {
	state   ParserState
	label   string
	courses []Course

	semWeighted float64
	semCredits  int

	result TranscriptResult
}

// NewTranscriptParser returns a parser in NoActiveSemester.
func NewTranscriptParser() *TranscriptParser {
	return &TranscriptParser{state: NoActiveSemester}
}

// State returns the current state.
func (p *TranscriptParser) State() ParserState {
	return p.state
}

// Feed consumes one table row given as its cell texts.
func (p *TranscriptParser) Feed(cells []string) {
	switch {
	case isBoundaryRow(cells):
		p.flush()
		p.label = strings.TrimSpace(firstNonEmpty(cells))
		p.state = AccumulatingSemester
	case len(cells) >= courseRowMinCells:
		if p.state == NoActiveSemester {
			p.result.Skipped++
			return
		}
		p.addCourse(parseCourseRow(cells))
	default:
		p.result.Skipped++
	}
}

// Finish finalizes any open semester and returns the result. The parser
// returns to NoActiveSemester and may not be reused for the same input.
func (p *TranscriptParser) Finish() TranscriptResult {
	p.flush()
	p.state = NoActiveSemester
	p.label = ""
	return p.result
}

func (p *TranscriptParser) addCourse(c Course) {
	p.courses = append(p.courses, c)
	p.result.Totals.CreditsAccumulated += c.Credits
	if c.IsGPAEligible() {
		w := *c.TotalScore.Value * float64(c.Credits)
		p.semWeighted += w
		p.semCredits += c.Credits
		p.result.Totals.WeightedSum += w
		p.result.Totals.GPACredits += c.Credits
	}
}

// flush closes the open semester. A semester without courses is dropped.
func (p *TranscriptParser) flush() {
	if p.state == AccumulatingSemester && len(p.courses) > 0 {
		sem := Semester{
			Label:        p.label,
			Courses:      p.courses,
			CreditsTaken: p.semCredits,
			Status:       SemesterCompleted,
		}
		if p.semCredits > 0 {
			sem.Average = ptr(Round2(p.semWeighted / float64(p.semCredits)))
		}
		stampWindow(&sem)
		p.result.Semesters = append(p.result.Semesters, sem)
		p.result.Totals.CreditsTaken += p.semCredits
	}
	p.courses = nil
	p.semWeighted = 0
	p.semCredits = 0
}

// ParseTranscript runs the parser over every row.
func ParseTranscript(rows [][]string) TranscriptResult {
	p := NewTranscriptParser()
	for _, row := range rows {
		p.Feed(row)
	}
	return p.Finish()
}

// isBoundaryRow: exactly one non-empty cell, containing the semester marker.
func isBoundaryRow(cells []string) bool {
	nonEmpty := 0
	var text string
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			nonEmpty++
			text = c
		}
	}
	return nonEmpty == 1 && len(cells) < courseRowMinCells && strings.Contains(text, SemesterMarker)
}

func firstNonEmpty(cells []string) string {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return strings.TrimSpace(cells[i])
	}
	return ""
}

func parseCourseRow(cells []string) Course {
	total := cell(cells, colTotal)
	return Course{
		Code:    cell(cells, colCode),
		Name:    cell(cells, colName),
		Credits: ParseCredits(cell(cells, colCredits)),
		Scores: Scores{
			Process:  ParseNumber(cell(cells, colProcess)),
			Midterm:  ParseNumber(cell(cells, colMidterm)),
			Practice: ParseNumber(cell(cells, colPractice)),
			Final:    ParseNumber(cell(cells, colFinal)),
		},
		TotalScore: ParseTotalScore(total),
		Status:     ClassifyStatus(total),
		Note:       cell(cells, colNote),
	}
}
