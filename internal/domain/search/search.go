package search

import (
	"context"

	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/internal/domain/skill"
)

type ProfileSummary struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	SkillsCount          int    `json:"skills_count"`
	ProjectsCount        int    `json:"projects_count"`
	WorkExperiencesCount int    `json:"work_experiences_count"`
}

// Repository is the read-only query side over the profile tables. Text
// matching is a case-insensitive substring match.
type Repository interface {
	SearchProfiles(ctx context.Context, query string, offset, limit int) ([]*profile.Profile, error)
	ProjectsBySkill(ctx context.Context, skillSubstring string) ([]project.Project, error)
	// TopSkills orders by profile count descending, then skill name ascending.
	TopSkills(ctx context.Context, limit int) ([]skill.SkillCount, error)
	ProfileSummaries(ctx context.Context, offset, limit int) ([]ProfileSummary, error)
}
