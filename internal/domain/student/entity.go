// Package student содержит профиль студента, полученный с портала.
package student

import (
	"fmt"
	"strings"
	"time"

	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

// SchoolEmailDomain - домен почтового ящика студента.
const SchoolEmailDomain = "gm.uit.edu.vn"

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile - личные данные студента со страницы портала.
// Профиль перезаписывается при каждой синхронизации.
type Profile struct {
	MSSV           string    `json:"mssv"`
	FullName       string    `json:"full_name"`
	Gender         string    `json:"gender"`
	BirthDate      string    `json:"birth_date"`
	Class          string    `json:"class"`
	Faculty        string    `json:"faculty"`
	Major          string    `json:"major"`
	Email          string    `json:"email"`
	TrainingSystem string    `json:"training_system"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProfileParams - параметры для создания профиля.
type NewProfileParams struct {
	MSSV           string
	FullName       string
	Gender         string
	BirthDate      string
	Class          string
	Faculty        string
	Major          string
	TrainingSystem string
	Now            time.Time
}

// NewProfile создаёт профиль и выводит школьную почту из МССВ.
func NewProfile(p NewProfileParams) (*Profile, error) {
	mssv, err := shared.NewMSSV(p.MSSV)
	if err != nil {
		return nil, err
	}

	return &Profile{
		MSSV:           mssv.String(),
		FullName:       strings.TrimSpace(p.FullName),
		Gender:         strings.TrimSpace(p.Gender),
		BirthDate:      strings.TrimSpace(p.BirthDate),
		Class:          strings.TrimSpace(p.Class),
		Faculty:        strings.TrimSpace(p.Faculty),
		Major:          strings.TrimSpace(p.Major),
		Email:          SchoolEmail(mssv.String()),
		TrainingSystem: strings.TrimSpace(p.TrainingSystem),
		UpdatedAt:      p.Now.UTC(),
	}, nil
}

// SchoolEmail возвращает адрес вида mssv@gm.uit.edu.vn.
func SchoolEmail(mssv string) string {
	return fmt.Sprintf("%s@%s", mssv, SchoolEmailDomain)
}

// HasMajor сообщает, определена ли специальность.
func (p *Profile) HasMajor() bool {
	return p != nil && p.Major != ""
}

// Merge переносит непустые поля из свежего профиля.
// Пустые значения не затирают сохранённые данные.
func (p *Profile) Merge(fresh *Profile) {
	if fresh == nil {
		return
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.FullName, fresh.FullName)
	set(&p.Gender, fresh.Gender)
	set(&p.BirthDate, fresh.BirthDate)
	set(&p.Class, fresh.Class)
	set(&p.Faculty, fresh.Faculty)
	set(&p.Major, fresh.Major)
	set(&p.Email, fresh.Email)
	set(&p.TrainingSystem, fresh.TrainingSystem)
	if fresh.UpdatedAt.After(p.UpdatedAt) {
		p.UpdatedAt = fresh.UpdatedAt
	}
}
