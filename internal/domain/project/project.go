package project

import (
	"context"
	"strings"
	"time"

	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/patch"
	"github.com/whopranjalshah/me-api-playground/pkg/validation"
)

type Project struct {
	ID          int64  `json:"id"`
	ProfileID   int64  `json:"profile_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Links is stored verbatim; its structure belongs to the client.
	Links     *string   `json:"links"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewProject struct {
	Title       string  `json:"title" validate:"required,notblank,max=200"`
	Description string  `json:"description" validate:"required,notblank"`
	Links       *string `json:"links"`
}

func (p NewProject) Validate() error {
	return validation.Struct(p)
}

type Patch struct {
	Title       patch.Field[string]  `json:"title"`
	Description patch.Field[string]  `json:"description"`
	Links       patch.Field[*string] `json:"links"`
}

func (p Patch) Validate() error {
	if v, ok := p.Title.Get(); ok {
		if strings.TrimSpace(v) == "" {
			return apperror.NewInvalidInput("title cannot be empty", nil)
		}
		if err := validation.Var("title", v, "max=200"); err != nil {
			return err
		}
	}
	if v, ok := p.Description.Get(); ok && strings.TrimSpace(v) == "" {
		return apperror.NewInvalidInput("description cannot be empty", nil)
	}
	return nil
}

type Repository interface {
	Create(ctx context.Context, profileID int64, in NewProject) (*Project, error)
	FindByID(ctx context.Context, id int64) (*Project, error)
	Update(ctx context.Context, id int64, p Patch) (*Project, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
