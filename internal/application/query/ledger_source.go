// Package query contains read operations (CQRS - Queries).
// Запросы не изменяют сохранённый ledger: отчёты и рекомендации
// вычисляются заново при каждом вызове.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/internal/domain/student"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// LedgerCache - кэш ledger перед хранилищем.
// Промах кэша возвращает (nil, nil).
type LedgerCache interface {
	Get(ctx context.Context, mssv string) (*ledger.Ledger, error)
	Set(ctx context.Context, l *ledger.Ledger) error
}

// ledgerSource читает ledger по схеме cache-aside.
// Ошибки кэша не прерывают запрос, а только логируются.
type ledgerSource struct {
	repo  ledger.Repository
	cache LedgerCache
	log   *logger.Logger
}

func newLedgerSource(repo ledger.Repository, cache LedgerCache, log *logger.Logger) ledgerSource {
	if log == nil {
		log = logger.Nop()
	}
	return ledgerSource{repo: repo, cache: cache, log: log}
}

// load возвращает ledger студента и признак попадания в кэш.
func (s ledgerSource) load(ctx context.Context, mssv string) (*ledger.Ledger, bool, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, mssv)
		if err != nil {
			s.log.Warn("ledger cache read failed", logger.MSSV(mssv), logger.Err(err))
		}
		if cached != nil {
			return cached, true, nil
		}
	}

	l, err := s.repo.FindByMSSV(ctx, mssv)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, l); err != nil {
			s.log.Warn("ledger cache write failed", logger.MSSV(mssv), logger.Err(err))
		}
	}
	return l, false, nil
}

// resolveMajor выбирает специальность: явно указанную или из профиля.
func resolveMajor(ctx context.Context, profiles student.Repository, mssv, explicit string) (string, error) {
	if major := strings.TrimSpace(explicit); major != "" {
		return major, nil
	}
	if profiles == nil {
		return "", shared.ErrInvalidMajor
	}
	p, err := profiles.FindByMSSV(ctx, mssv)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", shared.ErrInvalidMajor
		}
		return "", fmt.Errorf("failed to load profile: %w", err)
	}
	if !p.HasMajor() {
		return "", shared.ErrInvalidMajor
	}
	return p.Major, nil
}

// normalizeMSSV проверяет номер студента.
func normalizeMSSV(raw string) (string, error) {
	m, err := shared.NewMSSV(raw)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}
