package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT CURRICULUM COMMAND
// Loads training programs from a YAML seed file into the curriculum store.
// ══════════════════════════════════════════════════════════════════════════════

// ImportCurriculumCommand contains the seed document to import.
type ImportCurriculumCommand struct {
	// Source is a YAML stream with one program per document.
	Source io.Reader

	// Major, when set, imports only the program with this major.
	Major string
}

// Validate validates the command.
func (c ImportCurriculumCommand) Validate() error {
	if c.Source == nil {
		return errors.New("import_curriculum: source is required")
	}
	return nil
}

// ImportedProgram describes one stored program.
type ImportedProgram struct {
	Major        string
	Subjects     int
	TotalCredits int
}

// ImportCurriculumResult contains the result of the import.
type ImportCurriculumResult struct {
	Programs []ImportedProgram
}

// ImportCurriculumHandler handles the ImportCurriculumCommand.
type ImportCurriculumHandler struct {
	repo curriculum.Repository
	log  *logger.Logger
	now  func() time.Time
}

// NewImportCurriculumHandler creates a new ImportCurriculumHandler.
func NewImportCurriculumHandler(repo curriculum.Repository, log *logger.Logger) *ImportCurriculumHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportCurriculumHandler{
		repo: repo,
		log:  log.With(logger.Component("import_curriculum")),
		now:  time.Now,
	}
}

// Handle decodes every document, validates all of them, then stores them.
// A single invalid program aborts the import before anything is written.
func (h *ImportCurriculumHandler) Handle(ctx context.Context, cmd ImportCurriculumCommand) (*ImportCurriculumResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	programs, err := DecodePrograms(cmd.Source)
	if err != nil {
		return nil, fmt.Errorf("import_curriculum: %w", err)
	}

	if major := strings.TrimSpace(cmd.Major); major != "" {
		var only []*curriculum.Program
		for _, p := range programs {
			if p.Major == major {
				only = append(only, p)
			}
		}
		if len(only) == 0 {
			return nil, fmt.Errorf("import_curriculum: major %q not found in source", major)
		}
		programs = only
	}

	for _, p := range programs {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("import_curriculum: program %q: %w", p.Major, err)
		}
	}

	now := h.now().UTC()
	result := &ImportCurriculumResult{}
	for _, p := range programs {
		p.UpdatedAt = now
		if err := h.repo.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("import_curriculum: failed to save %q: %w", p.Major, err)
		}
		result.Programs = append(result.Programs, ImportedProgram{
			Major:        p.Major,
			Subjects:     len(p.Subjects),
			TotalCredits: p.TotalCredits(),
		})
		h.log.Info("curriculum imported",
			logger.Major(p.Major),
			logger.Count("subjects", len(p.Subjects)),
			logger.Credits("total_credits", p.TotalCredits()),
		)
	}
	return result, nil
}

// DecodePrograms reads a multi-document YAML stream. Unknown keys are
// rejected so typos in seed files do not silently drop fields.
func DecodePrograms(r io.Reader) ([]*curriculum.Program, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var programs []*curriculum.Program
	for {
		var p curriculum.Program
		err := dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode program %d: %w", len(programs)+1, err)
		}
		p.Major = strings.TrimSpace(p.Major)
		for i := range p.Subjects {
			p.Subjects[i].Code = shared.CourseCode(p.Subjects[i].Code).Normalize().String()
		}
		programs = append(programs, &p)
	}
	if len(programs) == 0 {
		return nil, errors.New("source contains no programs")
	}
	return programs, nil
}
