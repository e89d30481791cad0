package persistence

import (
	"context"
	"errors"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whopranjalshah/me-api-playground/internal/domain/experience"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
	"github.com/whopranjalshah/me-api-playground/pkg/logger"
)

type postgresExperienceRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresExperienceRepo(db *pgxpool.Pool, logger logger.Logger) experience.Repository {
	return &postgresExperienceRepo{db: db, logger: logger}
}

var psqlExperience = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const experienceColumns = "id, profile_id, company, position, description, start_date, end_date, created_at, updated_at"

func scanExperience(row pgx.Row) (*experience.WorkExperience, error) {
	w := &experience.WorkExperience{}
	err := row.Scan(
		&w.ID, &w.ProfileID, &w.Company, &w.Position, &w.Description,
		&w.StartDate, &w.EndDate, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("work experience", "")
		}
		return nil, apperror.NewInternal("failed to scan work experience row", err)
	}
	return w, nil
}

func insertExperience(ctx context.Context, q querier, profileID int64, in experience.NewWorkExperience) (*experience.WorkExperience, error) {
	query := `
		INSERT INTO work_experiences (profile_id, company, position, description, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + experienceColumns
	w, err := scanExperience(q.QueryRow(ctx, query,
		profileID, in.Company, in.Position, in.Description, in.StartDate, in.EndDate,
	))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && isForeignKeyViolation(appErr.Err) {
			return nil, apperror.NewNotFound("profile", strconv.FormatInt(profileID, 10))
		}
		return nil, mapDateCheck(err)
	}
	return w, nil
}

// mapDateCheck turns a chk_work_experiences_dates violation into a 400. The
// use case validates dates first, but a concurrent update of the other
// column can still trip the constraint.
func mapDateCheck(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && isCheckViolation(appErr.Err) {
		return apperror.NewInvalidInput("end_date must not be before start_date", appErr.Err)
	}
	return err
}

func experiencesByProfile(ctx context.Context, q querier, profileIDs []int64) (map[int64][]experience.WorkExperience, error) {
	sql, args, err := psqlExperience.Select(experienceColumns).
		From("work_experiences").
		Where(sq.Eq{"profile_id": profileIDs}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build work experiences query", err)
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query work experiences", err)
	}
	defer rows.Close()

	out := make(map[int64][]experience.WorkExperience, len(profileIDs))
	for rows.Next() {
		w, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		out[w.ProfileID] = append(out[w.ProfileID], *w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating work experience rows", err)
	}
	return out, nil
}

func (r *postgresExperienceRepo) Create(ctx context.Context, profileID int64, in experience.NewWorkExperience) (*experience.WorkExperience, error) {
	return insertExperience(ctx, r.db, profileID, in)
}

func (r *postgresExperienceRepo) FindByID(ctx context.Context, id int64) (*experience.WorkExperience, error) {
	query := `SELECT ` + experienceColumns + ` FROM work_experiences WHERE id = $1`
	w, err := scanExperience(r.db.QueryRow(ctx, query, id))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("work experience", strconv.FormatInt(id, 10))
	}
	return w, err
}

func (r *postgresExperienceRepo) Update(ctx context.Context, id int64, patch experience.Patch) (*experience.WorkExperience, error) {
	set := map[string]any{"updated_at": sq.Expr("GREATEST(NOW(), updated_at)")}
	if v, ok := patch.Company.Get(); ok {
		set["company"] = v
	}
	if v, ok := patch.Position.Get(); ok {
		set["position"] = v
	}
	if v, ok := patch.Description.Get(); ok {
		set["description"] = v
	}
	if v, ok := patch.StartDate.Get(); ok {
		set["start_date"] = v
	}
	if v, ok := patch.EndDate.Get(); ok {
		set["end_date"] = v
	}

	sql, args, err := psqlExperience.Update("work_experiences").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + experienceColumns).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build work experience update", err)
	}

	w, err := scanExperience(r.db.QueryRow(ctx, sql, args...))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("work experience", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, mapDateCheck(err)
	}
	return w, nil
}

func (r *postgresExperienceRepo) Delete(ctx context.Context, id int64) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM work_experiences WHERE id = $1`, id)
	if err != nil {
		return false, apperror.NewInternal("failed to delete work experience", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
