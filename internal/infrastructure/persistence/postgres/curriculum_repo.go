package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/uit-hub/academic-ledger/internal/domain/curriculum"
	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

const curriculumTable = "curriculum_programs"

// CurriculumRepository implements curriculum.Repository for PostgreSQL.
type CurriculumRepository struct {
	conn *Connection
	sb   squirrel.StatementBuilderType
}

// NewCurriculumRepository creates a new CurriculumRepository.
func NewCurriculumRepository(conn *Connection) *CurriculumRepository {
	return &CurriculumRepository{conn: conn, sb: statementBuilder}
}

var _ curriculum.Repository = (*CurriculumRepository)(nil)

// FindByMajor returns the program of a major.
func (r *CurriculumRepository) FindByMajor(ctx context.Context, major string) (*curriculum.Program, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Select("major", "subjects", "updated_at").
		From(curriculumTable).
		Where(squirrel.Eq{"major": major}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find curriculum query: %w", err)
	}

	var (
		p        curriculum.Program
		subjects []byte
	)
	if err := q.QueryRow(ctx, sql, args...).Scan(&p.Major, &subjects, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrCurriculumNotFound
		}
		return nil, fmt.Errorf("find curriculum %q: %w", major, err)
	}
	if err := json.Unmarshal(subjects, &p.Subjects); err != nil {
		return nil, shared.WrapError("curriculum", "FindByMajor", shared.ErrParse, "decode subjects", err)
	}
	return &p, nil
}

// Upsert stores the whole program.
func (r *CurriculumRepository) Upsert(ctx context.Context, p *curriculum.Program) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}

	subjects, err := json.Marshal(p.Subjects)
	if err != nil {
		return fmt.Errorf("encode subjects: %w", err)
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	sql, args, err := r.sb.Insert(curriculumTable).
		Columns("major", "subjects", "subject_count", "total_credits", "updated_at").
		Values(p.Major, subjects, len(p.Subjects), p.TotalCredits(), updatedAt).
		Suffix(`ON CONFLICT (major) DO UPDATE SET
			subjects = EXCLUDED.subjects,
			subject_count = EXCLUDED.subject_count,
			total_credits = EXCLUDED.total_credits,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert curriculum query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert curriculum %q: %w", p.Major, err)
	}
	return nil
}

// ListMajors returns every major with a stored program.
func (r *CurriculumRepository) ListMajors(ctx context.Context) ([]string, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Select("major").From(curriculumTable).OrderBy("major ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list majors query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list majors: %w", err)
	}
	defer rows.Close()

	majors := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan major: %w", err)
		}
		majors = append(majors, m)
	}
	return majors, rows.Err()
}
