package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/internal/domain/search"
	"github.com/whopranjalshah/me-api-playground/internal/domain/skill"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type postgresSearchRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSearchRepo(db *pgxpool.Pool, logger logger.Logger) search.Repository {
	return &postgresSearchRepo{db: db, logger: logger}
}

var psqlSearch = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *postgresSearchRepo) SearchProfiles(ctx context.Context, query string, offset, limit int) ([]*profile.Profile, error) {
	pattern := containsPattern(query)

	builder := psqlSearch.Select(profileColumns).
		From("profiles p").
		Where(sq.Or{
			sq.Expr("p.name ILIKE ?", pattern),
			sq.Expr("p.description ILIKE ?", pattern),
			sq.Expr(`EXISTS (
				SELECT 1 FROM profile_skills ps
				JOIN skills s ON s.id = ps.skill_id
				WHERE ps.profile_id = p.id AND s.name ILIKE ?
			)`, pattern),
		}).
		OrderBy("p.id").
		Offset(uint64(offset)).
		Limit(uint64(limit))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build search query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to execute search query", err)
	}
	profiles, err := scanProfiles(rows)
	if err != nil {
		return nil, err
	}
	if err := hydrateProfiles(ctx, r.db, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *postgresSearchRepo) ProjectsBySkill(ctx context.Context, skillSubstring string) ([]project.Project, error) {
	sql, args, err := psqlSearch.Select(projectColumns).
		From("projects").
		Where(sq.Expr(`profile_id IN (
			SELECT ps.profile_id FROM profile_skills ps
			JOIN skills s ON s.id = ps.skill_id
			WHERE s.name ILIKE ?
		)`, containsPattern(skillSubstring))).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build projects by skill query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query projects by skill", err)
	}
	return scanProjects(rows)
}

func (r *postgresSearchRepo) TopSkills(ctx context.Context, limit int) ([]skill.SkillCount, error) {
	sql, args, err := psqlSearch.Select("s.name", "COUNT(DISTINCT ps.profile_id) AS profile_count").
		From("skills s").
		Join("profile_skills ps ON ps.skill_id = s.id").
		GroupBy("s.id", "s.name").
		OrderBy("profile_count DESC", "s.name ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build top skills query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query top skills", err)
	}
	defer rows.Close()

	counts := make([]skill.SkillCount, 0, limit)
	for rows.Next() {
		var c skill.SkillCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, apperror.NewInternal("failed to scan skill count", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating skill counts", err)
	}
	return counts, nil
}

func (r *postgresSearchRepo) ProfileSummaries(ctx context.Context, offset, limit int) ([]search.ProfileSummary, error) {
	sql, args, err := psqlSearch.Select(
		"p.id", "p.name", "p.email",
		"(SELECT COUNT(*) FROM profile_skills ps WHERE ps.profile_id = p.id)",
		"(SELECT COUNT(*) FROM projects pr WHERE pr.profile_id = p.id)",
		"(SELECT COUNT(*) FROM work_experiences w WHERE w.profile_id = p.id)",
	).
		From("profiles p").
		OrderBy("p.id").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile summaries query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query profile summaries", err)
	}
	defer rows.Close()

	summaries := make([]search.ProfileSummary, 0)
	for rows.Next() {
		var s search.ProfileSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.SkillsCount, &s.ProjectsCount, &s.WorkExperiencesCount); err != nil {
			return nil, apperror.NewInternal("failed to scan profile summary", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating profile summaries", err)
	}
	return summaries, nil
}
