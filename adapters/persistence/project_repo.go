package persistence

import (
	"context"
	"errors"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whopranjalshah/me-api-playground/internal/domain/project"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type postgresProjectRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProjectRepo(db *pgxpool.Pool, logger logger.Logger) project.Repository {
	return &postgresProjectRepo{db: db, logger: logger}
}

var psqlProject = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const projectColumns = "id, profile_id, title, description, links, created_at, updated_at"

func scanProject(row pgx.Row) (*project.Project, error) {
	p := &project.Project{}

	err := row.Scan(
		&p.ID,
		&p.ProfileID,
		&p.Title,
		&p.Description,
		&p.Links,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("project", "")
		}
		return nil, apperror.NewInternal("failed to scan project row", err)
	}
	return p, nil
}

func scanProjects(rows pgx.Rows) ([]project.Project, error) {
	defer rows.Close()
	projects := make([]project.Project, 0)

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating project rows", err)
	}
	return projects, nil
}

func insertProject(ctx context.Context, q querier, profileID int64, in project.NewProject) (*project.Project, error) {
	query := `
		INSERT INTO projects (profile_id, title, description, links)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + projectColumns
	p, err := scanProject(q.QueryRow(ctx, query, profileID, in.Title, in.Description, in.Links))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && isForeignKeyViolation(appErr.Err) {
			return nil, apperror.NewNotFound("profile", strconv.FormatInt(profileID, 10))
		}
		return nil, err
	}
	return p, nil
}

func projectsByProfile(ctx context.Context, q querier, profileIDs []int64) (map[int64][]project.Project, error) {
	sql, args, err := psqlProject.Select(projectColumns).
		From("projects").
		Where(sq.Eq{"profile_id": profileIDs}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build projects query", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query projects", err)
	}
	projects, err := scanProjects(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[int64][]project.Project, len(profileIDs))
	for _, p := range projects {
		out[p.ProfileID] = append(out[p.ProfileID], p)
	}
	return out, nil
}

func (r *postgresProjectRepo) Create(ctx context.Context, profileID int64, in project.NewProject) (*project.Project, error) {
	return insertProject(ctx, r.db, profileID, in)
}

func (r *postgresProjectRepo) FindByID(ctx context.Context, id int64) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("project", strconv.FormatInt(id, 10))
	}
	return p, err
}

func (r *postgresProjectRepo) Update(ctx context.Context, id int64, patch project.Patch) (*project.Project, error) {
	set := map[string]any{"updated_at": sq.Expr("GREATEST(NOW(), updated_at)")}
	if v, ok := patch.Title.Get(); ok {
		set["title"] = v
	}
	if v, ok := patch.Description.Get(); ok {
		set["description"] = v
	}
	if v, ok := patch.Links.Get(); ok {
		set["links"] = v
	}

	sql, args, err := psqlProject.Update("projects").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + projectColumns).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build project update", err)
	}

	p, err := scanProject(r.db.QueryRow(ctx, sql, args...))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("project", strconv.FormatInt(id, 10))
	}
	return p, err
}

func (r *postgresProjectRepo) Delete(ctx context.Context, id int64) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, apperror.NewInternal("failed to delete project", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
