package ledger

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository хранит ledger целиком, по одному документу на студента.
type Repository interface {
	// FindByMSSV возвращает ledger студента.
	// Возвращает shared.ErrLedgerNotFound, если документа нет.
	FindByMSSV(ctx context.Context, mssv string) (*Ledger, error)

	// Upsert сохраняет ledger целиком, заменяя предыдущую версию.
	Upsert(ctx context.Context, l *Ledger) error

	// Delete удаляет ledger студента.
	Delete(ctx context.Context, mssv string) error

	// List возвращает краткие сведения о сохранённых ledger.
	List(ctx context.Context, opts ListOptions) ([]Info, error)
}

// Info is a ledger listing row.
type Info struct {
	MSSV           string
	Semesters      int
	CreditsTaken   int
	OverallAverage *float64
	SyncedAt       time.Time
}

// ListOptions содержит параметры пагинации.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 50, Offset: 0}
}
