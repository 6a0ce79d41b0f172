package query

import (
	"context"
	"fmt"

	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEDGER QUERY
// Возвращает сохранённый ledger студента.
// ══════════════════════════════════════════════════════════════════════════════

// GetLedgerQuery содержит параметры запроса ledger.
type GetLedgerQuery struct {
	// MSSV - номер студента.
	MSSV string
}

// Validate проверяет корректность параметров запроса.
func (q GetLedgerQuery) Validate() error {
	_, err := normalizeMSSV(q.MSSV)
	return err
}

// LedgerDTO - ledger и признак попадания в кэш.
type LedgerDTO struct {
	*ledger.Ledger

	// Current - текущий семестр, если он есть.
	Current *ledger.Semester `json:"current_semester,omitempty"`

	FromCache bool `json:"-"`
}

// GetLedgerHandler обрабатывает запрос ledger.
type GetLedgerHandler struct {
	source ledgerSource
}

// NewGetLedgerHandler создаёт новый обработчик.
func NewGetLedgerHandler(repo ledger.Repository, cache LedgerCache, log *logger.Logger) *GetLedgerHandler {
	return &GetLedgerHandler{source: newLedgerSource(repo, cache, log)}
}

// Handle выполняет запрос.
func (h *GetLedgerHandler) Handle(ctx context.Context, q GetLedgerQuery) (*LedgerDTO, error) {
	mssv, err := normalizeMSSV(q.MSSV)
	if err != nil {
		return nil, fmt.Errorf("get_ledger: %w", err)
	}

	l, hit, err := h.source.load(ctx, mssv)
	if err != nil {
		return nil, fmt.Errorf("get_ledger: %w", err)
	}

	dto := &LedgerDTO{Ledger: l, FromCache: hit}
	if cur, ok := l.Current(); ok {
		dto.Current = &cur
	}
	return dto, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST LEDGERS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListLedgersQuery - параметры постраничного списка.
type ListLedgersQuery struct {
	Limit  int
	Offset int
}

// ListLedgersHandler обрабатывает запрос списка ledger.
type ListLedgersHandler struct {
	repo ledger.Repository
}

// NewListLedgersHandler создаёт новый обработчик.
func NewListLedgersHandler(repo ledger.Repository) *ListLedgersHandler {
	return &ListLedgersHandler{repo: repo}
}

// Handle выполняет запрос. Некорректные параметры заменяются значениями
// по умолчанию.
func (h *ListLedgersHandler) Handle(ctx context.Context, q ListLedgersQuery) ([]ledger.Info, error) {
	opts := ledger.DefaultListOptions()
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	if q.Offset > 0 {
		opts.Offset = q.Offset
	}
	infos, err := h.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list_ledgers: %w", err)
	}
	return infos, nil
}
