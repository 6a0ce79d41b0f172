package ledger

import (
	"time"
)

// ComputeOverallAverage is the credit-weighted mean of total scores over
// GPA-eligible courses, or nil when there are none.
func ComputeOverallAverage(l *Ledger) *float64 {
	var sum float64
	credits := 0
	for _, s := range l.Records {
		for _, c := range s.Courses {
			if !c.IsGPAEligible() {
				continue
			}
			sum += *c.TotalScore.Value * float64(c.Credits)
			credits += c.Credits
		}
	}
	if credits == 0 {
		return nil
	}
	return ptr(sum / float64(credits))
}

// ComputeSummary recomputes the ledger summary. Credits taken count every
// course that is not NotYetCompleted; credits accumulated count every
// course; the average is rounded to 2 decimals.
func ComputeSummary(l *Ledger) Summary {
	var sum Summary
	for _, s := range l.Records {
		for _, c := range s.Courses {
			sum.TotalCreditsAccumulated += c.Credits
			if c.Status != StatusNotYetCompleted {
				sum.TotalCreditsTaken += c.Credits
			}
		}
	}
	if avg := ComputeOverallAverage(l); avg != nil {
		sum.OverallAverage = ptr(Round2(*avg))
	}
	return sum
}

// SemesterAverage is the credit-weighted mean over the semester's
// GPA-eligible courses, rounded to 2 decimals, or nil.
func SemesterAverage(courses []Course) *float64 {
	var sum float64
	credits := 0
	for _, c := range courses {
		if c.IsGPAEligible() {
			sum += *c.TotalScore.Value * float64(c.Credits)
			credits += c.Credits
		}
	}
	if credits == 0 {
		return nil
	}
	return ptr(Round2(sum / float64(credits)))
}

// RecomputeSemesters refreshes per-semester credits and averages from the
// stored courses. Credits taken become the sum of all course credits; the
// average follows SemesterAverage and is 0 when no course qualifies.
func RecomputeSemesters(l *Ledger) {
	for i := range l.Records {
		s := &l.Records[i]
		total := 0
		for _, c := range s.Courses {
			total += c.Credits
		}
		s.CreditsTaken = total
		if avg := SemesterAverage(s.Courses); avg != nil {
			s.Average = avg
		} else {
			s.Average = ptr(0)
		}
	}
}

// AssembleParams are the inputs of a full ledger build.
type AssembleParams struct {
	MSSV       string
	Transcript TranscriptResult
	// Registration is nil when the registration page was not available.
	Registration *Registration
	// Previous is the persisted ledger, if any.
	Previous *Ledger
	// CreditsRequired goes into the progress block.
	CreditsRequired int
	SyncID          string
	Now             time.Time
}

// AssembleResult is a built ledger plus the reconciliation conflicts.
type AssembleResult struct {
	Ledger    *Ledger
	Conflicts []Conflict
}

// Assemble runs reconciliation, deduplication and ordering over a parsed
// transcript, then recomputes the summary. History for reconciliation is
// the transcript; when the transcript has no record for the current label
// the persisted one is used so earlier scores survive a refresh.
func Assemble(p AssembleParams) AssembleResult {
	history := append([]Semester(nil), p.Transcript.Semesters...)

	var conflicts []Conflict
	if p.Registration != nil {
		if _, ok := findLabel(history, p.Registration.Label); !ok && p.Previous != nil {
			if prev, ok := p.Previous.FindSemester(p.Registration.Label); ok {
				history = append(history, prev)
			}
		}
		rec := Reconcile(*p.Registration, history)
		history = rec.Records
		conflicts = rec.Conflicts
	}

	l := &Ledger{
		MSSV:    p.MSSV,
		Records: Normalize(history),
		Progress: Progress{
			TotalCreditsRequired: p.CreditsRequired,
			GraduationStatus:     GraduationStatusStudying,
			Warnings:             []string{},
		},
		SyncID:   p.SyncID,
		SyncedAt: p.Now,
	}
	if p.Previous != nil && len(p.Previous.Progress.Warnings) > 0 {
		l.Progress.Warnings = append(l.Progress.Warnings, p.Previous.Progress.Warnings...)
	}
	l.Summary = ComputeSummary(l)

	return AssembleResult{Ledger: l, Conflicts: conflicts}
}

func findLabel(records []Semester, label string) (Semester, bool) {
	for _, s := range records {
		if s.Label == label {
			return s, true
		}
	}
	return Semester{}, false
}
