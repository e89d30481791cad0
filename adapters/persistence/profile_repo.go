package persistence

import (
	"context"
	"errors"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/whopranjalshah/me-api-playground/internal/domain/experience"
	"github.com/whopranjalshah/me-api-playground/internal/domain/profile"
	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/internal/domain/skill"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

var psqlProfile = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const profileColumns = "id, name, email, description, github_url, linkedin_url, portfolio_url, created_at, updated_at"

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Description,
		&p.GithubURL,
		&p.LinkedinURL,
		&p.PortfolioURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("profile", "")
		}
		return nil, apperror.NewInternal("failed to scan profile row", err)
	}
	return p, nil
}

func scanProfiles(rows pgx.Rows) ([]*profile.Profile, error) {
	defer rows.Close()
	profiles := make([]*profile.Profile, 0)

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating profile rows", err)
	}
	return profiles, nil
}

// hydrateProfiles attaches skills, projects and work experiences to every
// profile with one query per child table.
func hydrateProfiles(ctx context.Context, q querier, profiles []*profile.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]int64, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}

	skills, err := skillsByProfile(ctx, q, ids)
	if err != nil {
		return err
	}
	projects, err := projectsByProfile(ctx, q, ids)
	if err != nil {
		return err
	}
	experiences, err := experiencesByProfile(ctx, q, ids)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		p.Skills = skills[p.ID]
		if p.Skills == nil {
			p.Skills = []skill.Skill{}
		}
		p.Projects = projects[p.ID]
		if p.Projects == nil {
			p.Projects = []project.Project{}
		}
		p.WorkExperiences = experiences[p.ID]
		if p.WorkExperiences == nil {
			p.WorkExperiences = []experience.WorkExperience{}
		}
	}
	return nil
}

func loadProfile(ctx context.Context, q querier, id int64) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(q.QueryRow(ctx, query, id))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("profile", strconv.FormatInt(id, 10))
		}
		return nil, err
	}
	if err := hydrateProfiles(ctx, q, []*profile.Profile{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresProfileRepo) Create(ctx context.Context, in profile.NewProfile) (*profile.Profile, error) {
	var created *profile.Profile

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO profiles (name, email, description, github_url, linkedin_url, portfolio_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		var id int64
		err := tx.QueryRow(ctx, query,
			in.Name, in.Email, in.Description, in.GithubURL, in.LinkedinURL, in.PortfolioURL,
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.NewConflict("profile", "email", in.Email)
			}
			return apperror.NewInternal("failed to insert profile", err)
		}

		if err := setProfileSkills(ctx, tx, id, in.Skills); err != nil {
			return err
		}
		for _, p := range in.Projects {
			if _, err := insertProject(ctx, tx, id, p); err != nil {
				return err
			}
		}
		for _, w := range in.WorkExperiences {
			if _, err := insertExperience(ctx, tx, id, w); err != nil {
				return err
			}
		}

		created, err = loadProfile(ctx, tx, id)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to create profile", err, zap.String("email", in.Email))
		return nil, err
	}
	return created, nil
}

func (r *postgresProfileRepo) FindByID(ctx context.Context, id int64) (*profile.Profile, error) {
	return loadProfile(ctx, r.db, id)
}

func (r *postgresProfileRepo) FindByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	p, err := scanProfile(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := hydrateProfiles(ctx, r.db, []*profile.Profile{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresProfileRepo) List(ctx context.Context, offset, limit int) ([]*profile.Profile, error) {
	sql, args, err := psqlProfile.Select(profileColumns).
		From("profiles").
		OrderBy("id").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list profiles query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list profiles", err)
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

func (r *postgresProfileRepo) Update(ctx context.Context, id int64, p profile.Patch) (*profile.Profile, error) {
	set := map[string]any{"updated_at": sq.Expr("GREATEST(NOW(), updated_at)")}
	if v, ok := p.Name.Get(); ok {
		set["name"] = v
	}
	if v, ok := p.Email.Get(); ok {
		set["email"] = v
	}
	if v, ok := p.Description.Get(); ok {
		set["description"] = v
	}
	if v, ok := p.GithubURL.Get(); ok {
		set["github_url"] = v
	}
	if v, ok := p.LinkedinURL.Get(); ok {
		set["linkedin_url"] = v
	}
	if v, ok := p.PortfolioURL.Get(); ok {
		set["portfolio_url"] = v
	}

	sql, args, err := psqlProfile.Update("profiles").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build profile update", err)
	}

	var updated *profile.Profile
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var got int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&got); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperror.NewNotFound("profile", strconv.FormatInt(id, 10))
			}
			if isUniqueViolation(err) {
				return apperror.NewConflict("profile", "email", p.Email.Value)
			}
			return apperror.NewInternal("failed to update profile", err)
		}

		if names, ok := p.Skills.Get(); ok {
			if err := setProfileSkills(ctx, tx, id, names); err != nil {
				return err
			}
		}

		updated, err = loadProfile(ctx, tx, id)
		return err
	})
	if err != nil {
		if !apperror.IsNotFound(err) {
			r.logger.Error("Failed to update profile", err, zap.Int64("profile_id", id))
		}
		return nil, err
	}
	return updated, nil
}

func (r *postgresProfileRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM projects WHERE profile_id = $1`,
			`DELETE FROM work_experiences WHERE profile_id = $1`,
			`DELETE FROM profile_skills WHERE profile_id = $1`,
		} {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return apperror.NewInternal("failed to delete profile children", err)
			}
		}

		cmdTag, err := tx.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
		if err != nil {
			return apperror.NewInternal("failed to delete profile", err)
		}
		found = cmdTag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete profile", err, zap.Int64("profile_id", id))
		return false, err
	}
	return found, nil
}
