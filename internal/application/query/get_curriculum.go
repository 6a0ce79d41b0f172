package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CURRICULUM QUERY
// Программа специальности, сгруппированная по категориям.
// ══════════════════════════════════════════════════════════════════════════════

// GetCurriculumQuery содержит параметры запроса программы.
type GetCurriculumQuery struct {
	Major string
}

// CurriculumDTO - программа по категориям.
type CurriculumDTO struct {
	Major        string                     `json:"major"`
	TotalCredits int                        `json:"total_credits"`
	Categories   []curriculum.CategoryGroup `json:"categories"`
}

// GetCurriculumHandler обрабатывает запросы к программам обучения.
type GetCurriculumHandler struct {
	programs curriculum.Repository
}

// NewGetCurriculumHandler создаёт новый обработчик.
func NewGetCurriculumHandler(programs curriculum.Repository) *GetCurriculumHandler {
	return &GetCurriculumHandler{programs: programs}
}

// Handle выполняет запрос.
func (h *GetCurriculumHandler) Handle(ctx context.Context, q GetCurriculumQuery) (*CurriculumDTO, error) {
	major := strings.TrimSpace(q.Major)
	if major == "" {
		return nil, fmt.Errorf("get_curriculum: %w", shared.ErrInvalidMajor)
	}

	p, err := h.programs.FindByMajor(ctx, major)
	if err != nil {
		return nil, fmt.Errorf("get_curriculum: %w", err)
	}

	return &CurriculumDTO{
		Major:        p.Major,
		TotalCredits: p.TotalCredits(),
		Categories:   curriculum.GroupByCategory(p),
	}, nil
}

// ListMajors возвращает специальности, для которых загружена программа.
func (h *GetCurriculumHandler) ListMajors(ctx context.Context) ([]string, error) {
	majors, err := h.programs.ListMajors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list_majors: %w", err)
	}
	return majors, nil
}
