package query

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	profileUC "github.com/whopranjalshah/me-api-playground/internal/application/usecase/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/internal/domain/search"
	"github.com/whopranjalshah/me-api-playground/internal/domain/skill"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

const (
	DefaultTopSkills = 10
	MaxTopSkills     = 100
)

var tracer = otel.Tracer("query_usecase")

// QueryUseCase serves the public read-only queries.
type QueryUseCase struct {
	searchRepo search.Repository
	logger     logger.Logger
}

func NewQueryUseCase(sr search.Repository, log logger.Logger) *QueryUseCase {
	return &QueryUseCase{
		searchRepo: sr,
		logger:     log,
	}
}

type SearchInput struct {
	Query  string
	Offset int
	Limit  int
}

func (uc *QueryUseCase) ExecuteSearch(ctx context.Context, input SearchInput) ([]*profile.Profile, error) {
	ctx, span := tracer.Start(ctx, "SearchProfiles")
	defer span.End()

	q := strings.TrimSpace(input.Query)
	if q == "" {
		return nil, apperror.NewInvalidInput("query parameter 'q' is required", nil)
	}
	span.SetAttributes(attribute.String("query", q))

	offset, limit := profileUC.NormalizePage(input.Offset, input.Limit)
	results, err := uc.searchRepo.SearchProfiles(ctx, q, offset, limit)
	if err != nil {
		uc.logger.Error("Search profiles failed", err, zap.String("query", q))
		span.RecordError(err)
		return nil, err
	}
	return results, nil
}

func (uc *QueryUseCase) ExecuteProjectsBySkill(ctx context.Context, skillSubstring string) ([]project.Project, error) {
	ctx, span := tracer.Start(ctx, "ProjectsBySkill")
	defer span.End()

	s := strings.TrimSpace(skillSubstring)
	if s == "" {
		return nil, apperror.NewInvalidInput("query parameter 'skill' is required", nil)
	}

	projects, err := uc.searchRepo.ProjectsBySkill(ctx, s)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return projects, nil
}

// ExecuteTopSkills defaults a non-positive limit and caps large ones.
func (uc *QueryUseCase) ExecuteTopSkills(ctx context.Context, limit int) ([]skill.SkillCount, error) {
	ctx, span := tracer.Start(ctx, "TopSkills")
	defer span.End()

	if limit <= 0 {
		limit = DefaultTopSkills
	}
	if limit > MaxTopSkills {
		limit = MaxTopSkills
	}

	counts, err := uc.searchRepo.TopSkills(ctx, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return counts, nil
}

func (uc *QueryUseCase) ExecuteSummaries(ctx context.Context, offset, limit int) ([]search.ProfileSummary, error) {
	ctx, span := tracer.Start(ctx, "ProfileSummaries")
	defer span.End()

	offset, limit = profileUC.NormalizePage(offset, limit)
	summaries, err := uc.searchRepo.ProfileSummaries(ctx, offset, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return summaries, nil
}
