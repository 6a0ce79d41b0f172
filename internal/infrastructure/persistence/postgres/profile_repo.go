package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/internal/domain/student"
)

const profilesTable = "student_profiles"

var profileColumns = []string{
	"mssv", "full_name", "gender", "birth_date", "class",
	"faculty", "major", "email", "training_system", "updated_at",
}

// ProfileRepository implements student.Repository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
	sb   squirrel.StatementBuilderType
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn, sb: statementBuilder}
}

var _ student.Repository = (*ProfileRepository)(nil)

// FindByMSSV returns the stored profile.
func (r *ProfileRepository) FindByMSSV(ctx context.Context, mssv string) (*student.Profile, error) {
	q, err := r.conn.querier()
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Select(profileColumns...).
		From(profilesTable).
		Where(squirrel.Eq{"mssv": mssv}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find profile query: %w", err)
	}

	var p student.Profile
	err = q.QueryRow(ctx, sql, args...).Scan(
		&p.MSSV, &p.FullName, &p.Gender, &p.BirthDate, &p.Class,
		&p.Faculty, &p.Major, &p.Email, &p.TrainingSystem, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile %s: %w", mssv, err)
	}
	return &p, nil
}

// Upsert creates or replaces the profile.
func (r *ProfileRepository) Upsert(ctx context.Context, p *student.Profile) error {
	q, err := r.conn.querier()
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Insert(profilesTable).
		Columns(profileColumns...).
		Values(p.MSSV, p.FullName, p.Gender, p.BirthDate, p.Class,
			p.Faculty, p.Major, p.Email, p.TrainingSystem, p.UpdatedAt).
		Suffix(`ON CONFLICT (mssv) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			gender = EXCLUDED.gender,
			birth_date = EXCLUDED.birth_date,
			class = EXCLUDED.class,
			faculty = EXCLUDED.faculty,
			major = EXCLUDED.major,
			email = EXCLUDED.email,
			training_system = EXCLUDED.training_system,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert profile query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		if isDuplicateKeyError(err) {
			return shared.WrapError("profile", "Upsert", shared.ErrConcurrentModification, "profile written concurrently", err)
		}
		return fmt.Errorf("upsert profile %s: %w", p.MSSV, err)
	}
	return nil
}
