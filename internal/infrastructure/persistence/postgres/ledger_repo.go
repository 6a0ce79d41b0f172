package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

const ledgersTable = "academic_ledgers"

// LedgerRepository implements ledger.Repository for PostgreSQL.
// The ledger is stored as one JSONB document; summary columns are copied
// out of it for listing.
type LedgerRepository struct {
	conn *Connection
	sb   squirrel.StatementBuilderType
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(conn *Connection) *LedgerRepository {
	return &LedgerRepository{conn: conn, sb: statementBuilder}
}

// Compile-time check.
var _ ledger.Repository = (*LedgerRepository)(nil)

// FindByMSSV returns the stored ledger.
func (r *LedgerRepository) FindByMSSV(ctx context.Context, mssv string) (*ledger.Ledger, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Select("document").
		From(ledgersTable).
		Where(squirrel.Eq{"mssv": mssv}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find ledger query: %w", err)
	}

	var doc []byte
	if err := q.QueryRow(ctx, sql, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrLedgerNotFound
		}
		return nil, fmt.Errorf("find ledger %s: %w", mssv, err)
	}

	var l ledger.Ledger
	if err := json.Unmarshal(doc, &l); err != nil {
		return nil, shared.WrapError("ledger", "FindByMSSV", shared.ErrParse, "decode stored ledger", err)
	}
	return &l, nil
}

// Upsert replaces the stored ledger.
func (r *LedgerRepository) Upsert(ctx context.Context, l *ledger.Ledger) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	var syncID *string
	if l.SyncID != "" {
		syncID = &l.SyncID
	}
	syncedAt := l.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now().UTC()
	}

	sql, args, err := r.sb.Insert(ledgersTable).
		Columns("mssv", "document", "semester_count", "total_credits_taken",
			"total_credits_accumulated", "overall_average", "sync_id", "synced_at").
		Values(l.MSSV, doc, len(l.Records), l.Summary.TotalCreditsTaken,
			l.Summary.TotalCreditsAccumulated, l.Summary.OverallAverage, syncID, syncedAt).
		Suffix(`ON CONFLICT (mssv) DO UPDATE SET
			document = EXCLUDED.document,
			semester_count = EXCLUDED.semester_count,
			total_credits_taken = EXCLUDED.total_credits_taken,
			total_credits_accumulated = EXCLUDED.total_credits_accumulated,
			overall_average = EXCLUDED.overall_average,
			sync_id = EXCLUDED.sync_id,
			synced_at = EXCLUDED.synced_at,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert ledger query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert ledger %s: %w", l.MSSV, err)
	}
	return nil
}

// Delete removes the stored ledger.
func (r *LedgerRepository) Delete(ctx context.Context, mssv string) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Delete(ledgersTable).Where(squirrel.Eq{"mssv": mssv}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete ledger query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete ledger %s: %w", mssv, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrLedgerNotFound
	}
	return nil
}

// List returns ledger summaries, most recently synced first.
func (r *LedgerRepository) List(ctx context.Context, opts ledger.ListOptions) ([]ledger.Info, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}
	if opts.Limit <= 0 {
		opts = ledger.DefaultListOptions()
	}

	sql, args, err := r.sb.Select("mssv", "semester_count", "total_credits_taken", "overall_average", "synced_at").
		From(ledgersTable).
		OrderBy("synced_at DESC", "mssv ASC").
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ledgers query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	infos := []ledger.Info{}
	for rows.Next() {
		var info ledger.Info
		if err := rows.Scan(&info.MSSV, &info.Semesters, &info.CreditsTaken, &info.OverallAverage, &info.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan ledger info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
