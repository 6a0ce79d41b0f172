package query

import (
	"context"
	"fmt"

	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/internal/domain/student"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PERFORMANCE REVIEW QUERY
// Отчёт об успеваемости: итоги по семестрам, прогресс по программе,
// прогноз выпуска и стоимость пересдач. Отчёт не сохраняется.
// ══════════════════════════════════════════════════════════════════════════════

// GetPerformanceReviewQuery содержит параметры запроса отчёта.
type GetPerformanceReviewQuery struct {
	// MSSV - номер студента.
	MSSV string

	// Major - специальность. Пустая = из сохранённого профиля.
	Major string
}

// PerformanceReviewDTO - отчёт вместе с исходным ledger.
type PerformanceReviewDTO struct {
	MSSV   string            `json:"mssv"`
	Major  string            `json:"major"`
	Report curriculum.Report `json:"report"`

	// Ledger нужен для экспорта в Excel.
	Ledger *ledger.Ledger `json:"-"`
}

// GetPerformanceReviewHandler обрабатывает запрос отчёта.
type GetPerformanceReviewHandler struct {
	source   ledgerSource
	programs curriculum.Repository
	profiles student.Repository
	policy   curriculum.Policy
}

// NewGetPerformanceReviewHandler создаёт новый обработчик.
func NewGetPerformanceReviewHandler(
	ledgers ledger.Repository,
	cache LedgerCache,
	programs curriculum.Repository,
	profiles student.Repository,
	policy curriculum.Policy,
	log *logger.Logger,
) *GetPerformanceReviewHandler {
	return &GetPerformanceReviewHandler{
		source:   newLedgerSource(ledgers, cache, log),
		programs: programs,
		profiles: profiles,
		policy:   policy,
	}
}

// Handle выполняет запрос.
func (h *GetPerformanceReviewHandler) Handle(ctx context.Context, q GetPerformanceReviewQuery) (*PerformanceReviewDTO, error) {
	mssv, err := normalizeMSSV(q.MSSV)
	if err != nil {
		return nil, fmt.Errorf("get_performance_review: %w", err)
	}

	major, err := resolveMajor(ctx, h.profiles, mssv, q.Major)
	if err != nil {
		return nil, fmt.Errorf("get_performance_review: %w", err)
	}

	l, _, err := h.source.load(ctx, mssv)
	if err != nil {
		return nil, fmt.Errorf("get_performance_review: %w", err)
	}

	program, err := h.programs.FindByMajor(ctx, major)
	if err != nil {
		return nil, fmt.Errorf("get_performance_review: %w", err)
	}

	return &PerformanceReviewDTO{
		MSSV:   mssv,
		Major:  major,
		Report: curriculum.Evaluate(program, l, h.policy),
		Ledger: l,
	}, nil
}
