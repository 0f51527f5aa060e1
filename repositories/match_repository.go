package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/tennisclub/league-system/models"
)

var (
	ErrMatchNotFound      = errors.New("league match not found")
	ErrMatchLeagueInvalid = errors.New("league match references an unknown league")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.LeagueMatch) error
	GetByID(ctx context.Context, id string) (*models.LeagueMatch, error)
	// GetByIDForUpdate блокирует строку матча на время транзакции подачи
	// счёта, чтобы продвижение в нижестоящий матч было атомарным.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.LeagueMatch, error)
	ListByLeague(ctx context.Context, leagueID string, round *int, status *models.MatchStatus) ([]*models.LeagueMatch, error)
	DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID string) error
	ExistsNonPreliminary(ctx context.Context, exec SQLExecutor, leagueID string) (bool, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.LeagueMatch) error
	UpdateSlotLabel(ctx context.Context, exec SQLExecutor, id string, slot models.TeamSlot, label string) error
	UpdateSchedule(ctx context.Context, id string, court *string, scheduledAt *time.Time) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, league_id, round, group_number, stage, player_a, player_b, court,
		scheduled_at, status, score_a, score_b, winner, completed_at, next_match_id, next_match_slot, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.LeagueMatch) error {
	query := `
		INSERT INTO league_matches
			(id, league_id, round, group_number, stage, player_a, player_b, court, scheduled_at, status, next_match_id, next_match_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		match.ID,
		match.LeagueID,
		match.Round,
		match.GroupNumber,
		match.Stage,
		match.PlayerA,
		match.PlayerB,
		match.Court,
		match.ScheduledAt,
		match.Status,
		match.NextMatchID,
		match.NextMatchSlot,
	).Scan(&match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.LeagueMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM league_matches WHERE id = $1`
	return scanMatchRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.LeagueMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM league_matches WHERE id = $1 FOR UPDATE`
	return scanMatchRow(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByLeague(ctx context.Context, leagueID string, round *int, status *models.MatchStatus) ([]*models.LeagueMatch, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM league_matches WHERE league_id = $1`)

	args := []interface{}{leagueID}
	placeholderIndex := 2

	if round != nil {
		queryBuilder.WriteString(" AND round = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *round)
		placeholderIndex++
	}
	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *status)
	}

	queryBuilder.WriteString(" ORDER BY round ASC, created_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for league %s: %w", leagueID, err)
	}
	defer rows.Close()

	matches := make([]*models.LeagueMatch, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) DeleteByLeague(ctx context.Context, exec SQLExecutor, leagueID string) error {
	query := `DELETE FROM league_matches WHERE league_id = $1`
	if _, err := exec.ExecContext(ctx, query, leagueID); err != nil {
		return fmt.Errorf("failed to delete matches for league %s: %w", leagueID, err)
	}
	return nil
}

func (r *postgresMatchRepository) ExistsNonPreliminary(ctx context.Context, exec SQLExecutor, leagueID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM league_matches WHERE league_id = $1 AND stage <> $2)`

	var exists bool
	if err := exec.QueryRowContext(ctx, query, leagueID, models.StagePreliminary).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check final stage matches for league %s: %w", leagueID, err)
	}
	return exists, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.LeagueMatch) error {
	query := `
		UPDATE league_matches
		SET score_a = $1, score_b = $2, status = $3, winner = $4, completed_at = $5
		WHERE id = $6`

	result, err := exec.ExecContext(ctx, query,
		match.ScoreA,
		match.ScoreB,
		match.Status,
		match.Winner,
		match.CompletedAt,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update result for match %s: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlotLabel(ctx context.Context, exec SQLExecutor, id string, slot models.TeamSlot, label string) error {
	column := "player_a"
	if slot == models.SlotTeamB {
		column = "player_b"
	}

	query := `UPDATE league_matches SET ` + column + ` = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, label, id)
	if err != nil {
		return fmt.Errorf("failed to update %s label for match %s: %w", column, id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, id string, court *string, scheduledAt *time.Time) error {
	query := `
		UPDATE league_matches
		SET court = COALESCE($1, court), scheduled_at = COALESCE($2, scheduled_at)
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, court, scheduledAt, id)
	if err != nil {
		return fmt.Errorf("failed to update schedule for match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func scanMatchRow(row *sql.Row) (*models.LeagueMatch, error) {
	match := &models.LeagueMatch{}
	err := row.Scan(
		&match.ID,
		&match.LeagueID,
		&match.Round,
		&match.GroupNumber,
		&match.Stage,
		&match.PlayerA,
		&match.PlayerB,
		&match.Court,
		&match.ScheduledAt,
		&match.Status,
		&match.ScoreA,
		&match.ScoreB,
		&match.Winner,
		&match.CompletedAt,
		&match.NextMatchID,
		&match.NextMatchSlot,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return match, nil
}

func scanMatch(rows *sql.Rows) (*models.LeagueMatch, error) {
	match := &models.LeagueMatch{}
	err := rows.Scan(
		&match.ID,
		&match.LeagueID,
		&match.Round,
		&match.GroupNumber,
		&match.Stage,
		&match.PlayerA,
		&match.PlayerB,
		&match.Court,
		&match.ScheduledAt,
		&match.Status,
		&match.ScoreA,
		&match.ScoreB,
		&match.Winner,
		&match.CompletedAt,
		&match.NextMatchID,
		&match.NextMatchSlot,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan match row: %w", err)
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "league_matches_league_id_fkey":
			return ErrMatchLeagueInvalid
		case "league_matches_next_match_id_fkey":
			return fmt.Errorf("next_match_id references an unknown match: %w", err)
		}
	}
	return err
}
