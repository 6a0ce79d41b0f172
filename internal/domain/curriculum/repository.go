package curriculum

import (
	"context"
)

// Repository хранит программы обучения по специальностям.
type Repository interface {
	// FindByMajor возвращает программу специальности.
	// Возвращает shared.ErrCurriculumNotFound, если программы нет.
	FindByMajor(ctx context.Context, major string) (*Program, error)

	// Upsert сохраняет программу целиком.
	Upsert(ctx context.Context, p *Program) error

	// ListMajors возвращает все специальности, для которых есть программа.
	ListMajors(ctx context.Context) ([]string, error)
}
