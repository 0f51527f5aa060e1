package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tennisclub/league-system/models"
)

var (
	ErrApplicationNotFound = errors.New("league application not found")
	ErrApplicationConflict = errors.New("member already applied to this league")
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *models.LeagueApplication) error
	// ListByLeague возвращает заявки лиги вместе с данными игроков.
	// oldestFirst=true даёт порядок подачи, который определяет детерминированное
	// распределение по группам перед рандомизацией пар.
	ListByLeague(ctx context.Context, leagueID string, oldestFirst bool) ([]*models.LeagueApplication, error)
	CountByLeague(ctx context.Context, leagueID string) (int, error)
	UpdateStatusByLeague(ctx context.Context, exec SQLExecutor, leagueID string, status models.ApplicationStatus) error
	Delete(ctx context.Context, leagueID, memberID string) error
}

type postgresApplicationRepository struct {
	db *sql.DB
}

func NewPostgresApplicationRepository(db *sql.DB) ApplicationRepository {
	return &postgresApplicationRepository{db: db}
}

func (r *postgresApplicationRepository) Create(ctx context.Context, application *models.LeagueApplication) error {
	query := `
		INSERT INTO league_applications (id, league_id, member_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING applied_at`

	err := r.db.QueryRowContext(ctx, query,
		application.ID,
		application.LeagueID,
		application.MemberID,
		application.Status,
	).Scan(&application.AppliedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "uq_league_member" {
			return ErrApplicationConflict
		}
		return fmt.Errorf("failed to create league application: %w", err)
	}
	return nil
}

func (r *postgresApplicationRepository) ListByLeague(ctx context.Context, leagueID string, oldestFirst bool) ([]*models.LeagueApplication, error) {
	direction := "DESC"
	if oldestFirst {
		direction = "ASC"
	}

	query := `
		SELECT a.id, a.league_id, a.member_id, a.status, a.applied_at,
		       m.id, m.full_name, m.email, m.level, m.role, m.joined_at
		FROM league_applications a
		JOIN members m ON m.id = a.member_id
		WHERE a.league_id = $1
		ORDER BY a.applied_at ` + direction

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications for league %s: %w", leagueID, err)
	}
	defer rows.Close()

	applications := make([]*models.LeagueApplication, 0)
	for rows.Next() {
		var application models.LeagueApplication
		var member models.Member
		if err := rows.Scan(
			&application.ID,
			&application.LeagueID,
			&application.MemberID,
			&application.Status,
			&application.AppliedAt,
			&member.ID,
			&member.FullName,
			&member.Email,
			&member.Level,
			&member.Role,
			&member.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		application.Member = &member
		applications = append(applications, &application)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during application rows iteration: %w", err)
	}
	return applications, nil
}

func (r *postgresApplicationRepository) CountByLeague(ctx context.Context, leagueID string) (int, error) {
	query := `SELECT COUNT(id) FROM league_applications WHERE league_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, leagueID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count applications for league %s: %w", leagueID, err)
	}
	return count, nil
}

func (r *postgresApplicationRepository) Delete(ctx context.Context, leagueID, memberID string) error {
	query := `DELETE FROM league_applications WHERE league_id = $1 AND member_id = $2`

	result, err := r.db.ExecContext(ctx, query, leagueID, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete application of member %s in league %s: %w", memberID, leagueID, err)
	}
	return checkAffectedRows(result, ErrApplicationNotFound)
}

func (r *postgresApplicationRepository) UpdateStatusByLeague(ctx context.Context, exec SQLExecutor, leagueID string, status models.ApplicationStatus) error {
	query := `UPDATE league_applications SET status = $1 WHERE league_id = $2`

	if _, err := exec.ExecContext(ctx, query, status, leagueID); err != nil {
		return fmt.Errorf("failed to update application statuses for league %s: %w", leagueID, err)
	}
	return nil
}
