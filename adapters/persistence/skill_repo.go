package persistence

import (
	"context"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/whopranjalshah/me-api-playground/internal/domain/skill"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
)

var psqlSkill = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// maxSkillLookupAttempts bounds the insert-then-read loop in findOrCreateSkills.
const maxSkillLookupAttempts = 3

// findOrCreateSkills resolves names to skill rows, inserting missing ones.
// The insert runs under a savepoint with ON CONFLICT DO NOTHING, so a
// concurrent writer creating the same name is never surfaced as a failure:
// a unique violation just means the row exists and the lookup is retried.
// Rows are inserted in sorted order so two writers with overlapping sets
// take the index locks in the same sequence; a deadlock that still slips
// through is retried like a unique violation.
// Names must already be normalized; the result follows their order.
func findOrCreateSkills(ctx context.Context, tx pgx.Tx, names []string) ([]skill.Skill, error) {
	if len(names) == 0 {
		return []skill.Skill{}, nil
	}

	sorted := slices.Clone(names)
	slices.Sort(sorted)

	insert := psqlSkill.Insert("skills").Columns("name").Suffix("ON CONFLICT (name) DO NOTHING")
	for _, n := range sorted {
		insert = insert.Values(n)
	}
	insertSQL, insertArgs, err := insert.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build skill insert", err)
	}

	for attempt := 1; attempt <= maxSkillLookupAttempts; attempt++ {
		err := pgx.BeginFunc(ctx, tx, func(sp pgx.Tx) error {
			_, err := sp.Exec(ctx, insertSQL, insertArgs...)
			return err
		})
		if err != nil && !isUniqueViolation(err) {
			if isRetryable(err) && attempt < maxSkillLookupAttempts {
				continue
			}
			return nil, apperror.NewInternal("failed to insert skills", err)
		}

		found, err := findSkillsByName(ctx, tx, names)
		if err != nil {
			return nil, err
		}
		if len(found) == len(names) {
			ordered := make([]skill.Skill, 0, len(names))
			for _, n := range names {
				ordered = append(ordered, found[n])
			}
			return ordered, nil
		}
	}

	return nil, apperror.NewInternal(fmt.Sprintf("skills still missing after %d attempts", maxSkillLookupAttempts), nil)
}

func findSkillsByName(ctx context.Context, q querier, names []string) (map[string]skill.Skill, error) {
	rows, err := q.Query(ctx, `SELECT id, name, created_at FROM skills WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, apperror.NewInternal("failed to retrieve skills", err)
	}
	defer rows.Close()

	found := make(map[string]skill.Skill, len(names))
	for rows.Next() {
		var s skill.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, apperror.NewInternal("failed to scan skill", err)
		}
		found[s.Name] = s
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating skills", err)
	}
	return found, nil
}

// setProfileSkills replaces the profile's skill links with names.
func setProfileSkills(ctx context.Context, tx pgx.Tx, profileID int64, names []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM profile_skills WHERE profile_id = $1`, profileID); err != nil {
		return apperror.NewInternal("failed to delete old skill links", err)
	}

	skills, err := findOrCreateSkills(ctx, tx, names)
	if err != nil {
		return err
	}
	if len(skills) == 0 {
		return nil
	}

	rowsToInsert := make([][]any, len(skills))
	for i, s := range skills {
		rowsToInsert[i] = []any{profileID, s.ID}
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"profile_skills"},
		[]string{"profile_id", "skill_id"},
		pgx.CopyFromRows(rowsToInsert),
	)
	if err != nil {
		return apperror.NewInternal("failed to link skills", err)
	}
	return nil
}

// skillsByProfile loads the linked skills of every given profile, by name.
func skillsByProfile(ctx context.Context, q querier, profileIDs []int64) (map[int64][]skill.Skill, error) {
	query := `
		SELECT ps.profile_id, s.id, s.name, s.created_at
		FROM profile_skills ps
		JOIN skills s ON s.id = ps.skill_id
		WHERE ps.profile_id = ANY($1)
		ORDER BY s.name
	`
	rows, err := q.Query(ctx, query, profileIDs)
	if err != nil {
		return nil, apperror.NewInternal("failed to query profile skills", err)
	}
	defer rows.Close()

	out := make(map[int64][]skill.Skill, len(profileIDs))
	for rows.Next() {
		var profileID int64
		var s skill.Skill
		if err := rows.Scan(&profileID, &s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, apperror.NewInternal("failed to scan profile skill", err)
		}
		out[profileID] = append(out[profileID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating profile skills", err)
	}
	return out, nil
}
