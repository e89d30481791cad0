package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whopranjalshah/me-api-playground/internal/domain/audit"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
)

type postgresAuditRepo struct {
	db *pgxpool.Pool
}

func NewPostgresAuditRepo(db *pgxpool.Pool) audit.Repository {
	return &postgresAuditRepo{db: db}
}

func (r *postgresAuditRepo) Append(ctx context.Context, e audit.Entry) error {
	query := `
		INSERT INTO profile_audit_log (event_id, event_type, profile_id, entity_id, actor, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, e.EventID, e.EventType, e.ProfileID, e.EntityID, e.Actor, e.OccurredAt)
	if err != nil {
		return apperror.NewInternal("failed to append audit entry", err)
	}
	return nil
}
