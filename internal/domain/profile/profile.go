package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/whopranjalshah/me-api-playground/internal/domain/experience"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/internal/domain/skill"
	"github.com/whopranjalshah/me-api-playground/pkg/patch"
	"github.com/whopranjalshah/me-api-playground/pkg/validation"
)

// Profile is the aggregate root. Projects and work experiences are owned by
// it; skills are shared and only linked.
type Profile struct {
	ID              int64                       `json:"id"`
	Name            string                      `json:"name"`
	Email           string                      `json:"email"`
	Description     *string                     `json:"description"`
	GithubURL       *string                     `json:"github_url"`
	LinkedinURL     *string                     `json:"linkedin_url"`
	PortfolioURL    *string                     `json:"portfolio_url"`
	Skills          []skill.Skill               `json:"skills"`
	Projects        []project.Project           `json:"projects"`
	WorkExperiences []experience.WorkExperience `json:"work_experiences"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

type NewProfile struct {
	Name            string                         `validate:"required,notblank,max=100"`
	Email           string                         `validate:"required,email,max=255"`
	Description     *string                        `validate:"omitempty"`
	GithubURL       *string                        `validate:"omitempty,max=255"`
	LinkedinURL     *string                        `validate:"omitempty,max=255"`
	PortfolioURL    *string                        `validate:"omitempty,max=255"`
	Skills          []string                       `validate:"dive,notblank,max=100"`
	Projects        []project.NewProject           `validate:"dive"`
	WorkExperiences []experience.NewWorkExperience `validate:"dive"`
}

// Normalize trims identifying fields and de-duplicates skill names.
func (n *NewProfile) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.TrimSpace(n.Email)
	n.Skills = skill.NormalizeNames(n.Skills)
}

func (n NewProfile) Validate() error {
	if err := validation.Struct(n); err != nil {
		return err
	}
	for i, w := range n.WorkExperiences {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("work_experiences[%d]: %w", i, err)
		}
	}
	return nil
}

// Patch is a partial update. Scalar fields only change when Set; Skills,
// when Set, replaces the whole association list (an empty list clears it).
// A null skills value is treated as omitted, see Normalize.
type Patch struct {
	Name         patch.Field[string]   `json:"name"`
	Email        patch.Field[string]   `json:"email"`
	Description  patch.Field[*string]  `json:"description"`
	GithubURL    patch.Field[*string]  `json:"github_url"`
	LinkedinURL  patch.Field[*string]  `json:"linkedin_url"`
	PortfolioURL patch.Field[*string]  `json:"portfolio_url"`
	Skills       patch.Field[[]string] `json:"skills"`
}

func (p *Patch) Normalize() {
	if p.Name.Set {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
	}
	if p.Email.Set {
		p.Email.Value = strings.TrimSpace(p.Email.Value)
	}
	if p.Skills.Set && p.Skills.Value == nil {
		p.Skills = patch.Field[[]string]{}
	}
	if p.Skills.Set {
		p.Skills.Value = skill.NormalizeNames(p.Skills.Value)
	}
}

func (p Patch) Validate() error {
	if v, ok := p.Name.Get(); ok {
		if err := validation.Var("name", v, "required,notblank,max=100"); err != nil {
			return err
		}
	}
	if v, ok := p.Email.Get(); ok {
		if err := validation.Var("email", v, "required,email,max=255"); err != nil {
			return err
		}
	}
	for field, v := range map[string]patch.Field[*string]{
		"github_url":    p.GithubURL,
		"linkedin_url":  p.LinkedinURL,
		"portfolio_url": p.PortfolioURL,
	} {
		if v.Set && v.Value != nil {
			if err := validation.Var(field, *v.Value, "max=255"); err != nil {
				return err
			}
		}
	}
	if names, ok := p.Skills.Get(); ok {
		for _, n := range names {
			if err := validation.Var("skills", n, "notblank,max=100"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p Patch) IsEmpty() bool {
	return !p.Name.Set && !p.Email.Set && !p.Description.Set && !p.GithubURL.Set &&
		!p.LinkedinURL.Set && !p.PortfolioURL.Set && !p.Skills.Set
}

type Repository interface {
	// Create persists the whole aggregate atomically.
	Create(ctx context.Context, in NewProfile) (*Profile, error)
	FindByID(ctx context.Context, id int64) (*Profile, error)
	// FindByEmail returns (nil, nil) when no profile uses the email.
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	List(ctx context.Context, offset, limit int) ([]*Profile, error)
	Update(ctx context.Context, id int64, p Patch) (*Profile, error)
	// Delete reports whether a profile was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
