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
// GET RECOMMENDATIONS QUERY
// Подбирает предметы на следующий семестр: все непройденные предметы
// программы, у которых выполнены все пререквизиты.
// ══════════════════════════════════════════════════════════════════════════════

// GetRecommendationsQuery содержит параметры запроса рекомендаций.
type GetRecommendationsQuery struct {
	// MSSV - номер студента.
	MSSV string

	// Major - специальность. Пустая = из сохранённого профиля.
	Major string
}

// RecommendationsDTO - рекомендации для студента.
type RecommendationsDTO struct {
	MSSV  string `json:"mssv"`
	Major string `json:"major"`

	curriculum.Recommendation

	// GraduationFallback - предложены только выпускные курсы.
	GraduationFallback bool `json:"graduation_fallback"`
}

// GetRecommendationsHandler обрабатывает запрос рекомендаций.
type GetRecommendationsHandler struct {
	source   ledgerSource
	programs curriculum.Repository
	profiles student.Repository
	policy   curriculum.Policy
}

// NewGetRecommendationsHandler создаёт новый обработчик.
func NewGetRecommendationsHandler(
	ledgers ledger.Repository,
	cache LedgerCache,
	programs curriculum.Repository,
	profiles student.Repository,
	policy curriculum.Policy,
	log *logger.Logger,
) *GetRecommendationsHandler {
	return &GetRecommendationsHandler{
		source:   newLedgerSource(ledgers, cache, log),
		programs: programs,
		profiles: profiles,
		policy:   policy,
	}
}

// Handle выполняет запрос.
func (h *GetRecommendationsHandler) Handle(ctx context.Context, q GetRecommendationsQuery) (*RecommendationsDTO, error) {
	mssv, err := normalizeMSSV(q.MSSV)
	if err != nil {
		return nil, fmt.Errorf("get_recommendations: %w", err)
	}

	major, err := resolveMajor(ctx, h.profiles, mssv, q.Major)
	if err != nil {
		return nil, fmt.Errorf("get_recommendations: %w", err)
	}

	l, _, err := h.source.load(ctx, mssv)
	if err != nil {
		return nil, fmt.Errorf("get_recommendations: %w", err)
	}

	program, err := h.programs.FindByMajor(ctx, major)
	if err != nil {
		return nil, fmt.Errorf("get_recommendations: %w", err)
	}

	rec := curriculum.Recommend(program, l, h.policy)
	return &RecommendationsDTO{
		MSSV:               mssv,
		Major:              major,
		Recommendation:     rec,
		GraduationFallback: rec.IsGraduationFallback(),
	}, nil
}
