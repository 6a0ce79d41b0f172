package ledger

// ══════════════════════════════════════════════════════════════════════════════
// RECONCILIATION
// Текущий семестр из регистрации накладывается на последние известные оценки.
// ══════════════════════════════════════════════════════════════════════════════

// Conflict is a registered course that has no counterpart in the prior
// record of the same semester. It is resolved as NotYetCompleted.
type Conflict struct {
	Label string
	Code  string
}

// ReconcileResult is the reconciled semester list plus the conflicts that
// were resolved along the way.
type ReconcileResult struct {
	Records   []Semester
	Current   Semester
	Conflicts []Conflict
}

// Reconcile layers the registration onto history. Scores, total score and
// note are carried over from the prior record with the same label and the
// status is recomputed from the carried total. The prior record is then
// replaced by the reconciled one, placed at the front with status
// in-progress.
func Reconcile(reg Registration, history []Semester) ReconcileResult {
	var prior map[string]Course
	for _, s := range history {
		if s.Label == reg.Label {
			prior = make(map[string]Course, len(s.Courses))
			for _, c := range s.Courses {
				prior[c.Code] = c
			}
			break
		}
	}

	var res ReconcileResult
	courses := make([]Course, 0, len(reg.Courses))
	for _, c := range reg.Courses {
		if old, ok := prior[c.Code]; ok {
			c.Scores = old.Scores
			c.TotalScore = old.TotalScore
			c.Note = old.Note
			c.Status = ClassifyScore(c.TotalScore)
		} else {
			if prior != nil {
				res.Conflicts = append(res.Conflicts, Conflict{Label: reg.Label, Code: c.Code})
			}
			c.Status = StatusNotYetCompleted
		}
		courses = append(courses, c)
	}

	current := Semester{
		Label:        reg.Label,
		Courses:      courses,
		CreditsTaken: nonExemptCredits(courses),
		Average:      ptr(0),
		Status:       SemesterInProgress,
	}
	stampWindow(&current)

	records := make([]Semester, 0, len(history)+1)
	records = append(records, current)
	for _, s := range history {
		if s.Label != reg.Label {
			records = append(records, s)
		}
	}

	res.Records = records
	res.Current = current
	return res
}

func nonExemptCredits(courses []Course) int {
	n := 0
	for _, c := range courses {
		if !c.TotalScore.Exempt {
			n += c.Credits
		}
	}
	return n
}
