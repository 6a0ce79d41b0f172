package command

import (
	"context"
	"fmt"
	"time"

	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMPUTE SUMMARY COMMAND
// Refreshes per-semester credits, averages and the ledger summary from the
// stored courses, without contacting the portal.
// ══════════════════════════════════════════════════════════════════════════════

// RecomputeSummaryCommand identifies the ledger to refresh.
type RecomputeSummaryCommand struct {
	MSSV string
}

// Validate validates the command.
func (c RecomputeSummaryCommand) Validate() error {
	_, err := shared.NewMSSV(c.MSSV)
	return err
}

// RecomputeSummaryHandler handles the RecomputeSummaryCommand.
type RecomputeSummaryHandler struct {
	repo   ledger.Repository
	locker SyncLocker
	cache  LedgerCache
	log    *logger.Logger
	now    func() time.Time
}

// NewRecomputeSummaryHandler creates a new RecomputeSummaryHandler.
func NewRecomputeSummaryHandler(repo ledger.Repository, locker SyncLocker, cache LedgerCache, log *logger.Logger) *RecomputeSummaryHandler {
	if locker == nil {
		locker = NewLocalSyncLocker()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RecomputeSummaryHandler{
		repo:   repo,
		locker: locker,
		cache:  cache,
		log:    log.With(logger.Component("recompute_summary")),
		now:    time.Now,
	}
}

// Handle loads, refreshes and stores the ledger. It shares the sync lock so
// it never interleaves with a running sync.
func (h *RecomputeSummaryHandler) Handle(ctx context.Context, cmd RecomputeSummaryCommand) (*ledger.Ledger, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("recompute_summary: validation failed: %w", err)
	}
	mssv, _ := shared.NewMSSV(cmd.MSSV)

	release, err := h.locker.Acquire(ctx, mssv.String())
	if err != nil {
		return nil, fmt.Errorf("recompute_summary: failed to acquire lock: %w", err)
	}
	defer release()

	l, err := h.repo.FindByMSSV(ctx, mssv.String())
	if err != nil {
		return nil, fmt.Errorf("recompute_summary: %w", err)
	}

	before := l.Summary
	ledger.RecomputeSemesters(l)
	l.Summary = ledger.ComputeSummary(l)
	l.SyncedAt = h.now().UTC()

	if err := h.repo.Upsert(ctx, l); err != nil {
		return nil, fmt.Errorf("recompute_summary: failed to save ledger: %w", err)
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, mssv.String()); err != nil {
			h.log.Warn("failed to invalidate ledger cache", logger.MSSV(mssv.String()), logger.Err(err))
		}
	}

	h.log.Info("ledger summary recomputed",
		logger.MSSV(mssv.String()),
		logger.Credits("credits_taken_before", before.TotalCreditsTaken),
		logger.Credits("credits_taken", l.Summary.TotalCreditsTaken),
	)
	return l, nil
}
