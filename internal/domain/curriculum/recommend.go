package curriculum

import (
	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
)

// CompletedCodes returns the codes of every ledger course that counts as
// completed: not failed, not pending, not exempt.
func CompletedCodes(l *ledger.Ledger) map[string]bool {
	done := make(map[string]bool)
	if l == nil {
		return done
	}
	for _, s := range l.Records {
		for _, c := range s.Courses {
			if c.CountsAsCompleted() {
				done[c.Code] = true
			}
		}
	}
	return done
}

// Recommendation is the set of subjects suggested for the next semester.
// When nothing qualifies, only Graduation is filled.
type Recommendation struct {
	General     []Subject `json:"general_subjects"`
	Foundation  []Subject `json:"basic_subjects"`
	Specialized []Subject `json:"specialized_subjects"`
	Graduation  []Subject `json:"graduate_subjects,omitempty"`
}

// Count is the number of non-graduation suggestions.
func (r Recommendation) Count() int {
	return len(r.General) + len(r.Foundation) + len(r.Specialized)
}

// IsGraduationFallback reports whether the graduation list was used.
func (r Recommendation) IsGraduationFallback() bool {
	return r.Count() == 0
}

// Recommend suggests every not-yet-completed subject whose prerequisites
// are all completed, bucketed by category. If none qualify, it suggests
// the graduation courses from the policy.
func Recommend(p *Program, l *ledger.Ledger, policy Policy) Recommendation {
	done := CompletedCodes(l)
	var rec Recommendation

	for _, s := range p.Subjects {
		if s.Code == "" || done[s.Code] || !prerequisitesMet(s, done) {
			continue
		}
		switch policy.BucketOf(s.Category) {
		case BucketGeneral:
			rec.General = append(rec.General, s)
		case BucketFoundation:
			rec.Foundation = append(rec.Foundation, s)
		case BucketSpecialized:
			rec.Specialized = append(rec.Specialized, s)
		}
	}

	if rec.Count() == 0 {
		rec.Graduation = graduationSubjects(p, policy.GraduationFallback)
	}
	return rec
}

func prerequisitesMet(s Subject, done map[string]bool) bool {
	for _, code := range s.Prerequisites {
		if !done[code] {
			return false
		}
	}
	return true
}

// graduationSubjects resolves fallback codes against the program; codes
// missing from the program are returned as bare subjects.
func graduationSubjects(p *Program, codes []string) []Subject {
	out := make([]Subject, 0, len(codes))
	for _, code := range codes {
		if s, ok := p.Subject(code); ok {
			out = append(out, s)
			continue
		}
		out = append(out, Subject{Code: code})
	}
	return out
}
