package student

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с профилями студентов.
type Repository interface {
	// FindByMSSV возвращает профиль по МССВ.
	// Возвращает shared.ErrProfileNotFound, если профиль не найден.
	FindByMSSV(ctx context.Context, mssv string) (*Profile, error)

	// Upsert создаёт или полностью заменяет профиль.
	Upsert(ctx context.Context, profile *Profile) error
}
