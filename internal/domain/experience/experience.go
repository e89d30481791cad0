package experience

import (
	"context"
	"strings"
	"time"

	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/patch"
	"github.com/whopranjalshah/me-api-playground/pkg/validation"
)

type WorkExperience struct {
	ID          int64      `json:"id"`
	ProfileID   int64      `json:"profile_id"`
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Description *string    `json:"description"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsCurrent reports an ongoing position (no end date).
func (w WorkExperience) IsCurrent() bool {
	return w.EndDate == nil
}

type NewWorkExperience struct {
	Company     string     `json:"company" validate:"required,notblank,max=200"`
	Position    string     `json:"position" validate:"required,notblank,max=200"`
	Description *string    `json:"description"`
	StartDate   time.Time  `json:"start_date" validate:"required"`
	EndDate     *time.Time `json:"end_date"`
}

func (w NewWorkExperience) Validate() error {
	if err := validation.Struct(w); err != nil {
		return err
	}
	return checkDates(w.StartDate, w.EndDate)
}

type Patch struct {
	Company     patch.Field[string]     `json:"company"`
	Position    patch.Field[string]     `json:"position"`
	Description patch.Field[*string]    `json:"description"`
	StartDate   patch.Field[time.Time]  `json:"start_date"`
	EndDate     patch.Field[*time.Time] `json:"end_date"`
}

func (p Patch) Validate() error {
	if v, ok := p.Company.Get(); ok && strings.TrimSpace(v) == "" {
		return apperror.NewInvalidInput("company cannot be empty", nil)
	}
	if v, ok := p.Position.Get(); ok && strings.TrimSpace(v) == "" {
		return apperror.NewInvalidInput("position cannot be empty", nil)
	}
	if v, ok := p.StartDate.Get(); ok && v.IsZero() {
		return apperror.NewInvalidInput("start_date cannot be empty", nil)
	}
	return nil
}

// ValidateAgainst checks the patch merged onto the stored row.
func (p Patch) ValidateAgainst(current WorkExperience) error {
	return checkDates(p.StartDate.Or(current.StartDate), p.EndDate.Or(current.EndDate))
}

func checkDates(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return apperror.NewInvalidInput("end_date must not be before start_date", nil)
	}
	return nil
}

type Repository interface {
	Create(ctx context.Context, profileID int64, in NewWorkExperience) (*WorkExperience, error)
	FindByID(ctx context.Context, id int64) (*WorkExperience, error)
	Update(ctx context.Context, id int64, p Patch) (*WorkExperience, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
