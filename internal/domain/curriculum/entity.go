package curriculum

import (
	"fmt"
	"strings"
	"time"

	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

// Subject is one course of a training program.
type Subject struct {
	Code          string   `json:"course_code" yaml:"course_code"`
	Name          string   `json:"course_name" yaml:"course_name"`
	Category      string   `json:"category" yaml:"category"`
	Credits       int      `json:"credits" yaml:"credits"`
	Prerequisites []string `json:"prerequisites" yaml:"prerequisites"`
}

// Validate checks that the subject can be used by the engine.
func (s Subject) Validate() error {
	if strings.TrimSpace(s.Code) == "" {
		return shared.WrapError("curriculum", "Validate", shared.ErrInvalidInput, "subject code is empty", shared.ErrInvalidSubject)
	}
	if s.Credits < 0 {
		return shared.WrapError("curriculum", "Validate", shared.ErrNegativeValue,
			fmt.Sprintf("subject %s has negative credits", s.Code), shared.ErrInvalidSubject)
	}
	return nil
}

// Program is the curriculum of a major. It is read-only to the engine.
type Program struct {
	Major     string    `json:"major" yaml:"major"`
	Subjects  []Subject `json:"curriculum" yaml:"curriculum"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Validate checks the major and every subject, and rejects duplicate codes.
func (p *Program) Validate() error {
	if strings.TrimSpace(p.Major) == "" {
		return shared.ErrInvalidMajor
	}
	seen := make(map[string]struct{}, len(p.Subjects))
	for _, s := range p.Subjects {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.Code]; dup {
			return shared.WrapError("curriculum", "Validate", shared.ErrAlreadyExists,
				fmt.Sprintf("subject %s listed twice", s.Code), shared.ErrInvalidSubject)
		}
		seen[s.Code] = struct{}{}
	}
	return nil
}

// TotalCredits sums the credits of every subject.
func (p *Program) TotalCredits() int {
	n := 0
	for _, s := range p.Subjects {
		n += s.Credits
	}
	return n
}

// Subject returns the subject with the given code.
func (p *Program) Subject(code string) (Subject, bool) {
	for _, s := range p.Subjects {
		if s.Code == code {
			return s, true
		}
	}
	return Subject{}, false
}

// CategoryGroup is the subjects of one category, in program order.
type CategoryGroup struct {
	Category string    `json:"category"`
	Subjects []Subject `json:"subjects"`
}

// GroupByCategory groups subjects by category, keeping the order in which
// categories first appear.
func GroupByCategory(p *Program) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, s := range p.Subjects {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, CategoryGroup{Category: s.Category})
		}
		groups[i].Subjects = append(groups[i].Subjects, s)
	}
	return groups
}
