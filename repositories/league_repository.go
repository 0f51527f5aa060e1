package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tennisclub/league-system/models"
)

var ErrLeagueNotFound = errors.New("league not found")

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, id string) (*models.League, error)
	// GetByIDForUpdate читает лигу под блокировкой строки; держит
	// конкурентные генерации сетки по одной лиге строго по очереди.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	UpdateBracketMeta(ctx context.Context, exec SQLExecutor, id string, groupsCount, courtsCount int, generatedAt time.Time) error
	UpdateFinalStageMode(ctx context.Context, exec SQLExecutor, id string, mode *models.FinalStageMode) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

const leagueColumns = `id, name, surface_type, entry_fee, max_participants, auto_generate_bracket,
		groups_count, courts_count, final_stage_mode, bracket_generated_at, created_at`

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues
			(id, name, surface_type, entry_fee, max_participants, auto_generate_bracket, groups_count, courts_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		league.ID,
		league.Name,
		league.SurfaceType,
		league.EntryFee,
		league.MaxParticipants,
		league.AutoGenerateBracket,
		league.GroupsCount,
		league.CourtsCount,
	).Scan(&league.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id string) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1`
	return scanLeague(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1 FOR UPDATE`
	return scanLeague(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		var league models.League
		if err := rows.Scan(
			&league.ID,
			&league.Name,
			&league.SurfaceType,
			&league.EntryFee,
			&league.MaxParticipants,
			&league.AutoGenerateBracket,
			&league.GroupsCount,
			&league.CourtsCount,
			&league.FinalStageMode,
			&league.BracketGeneratedAt,
			&league.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan league row: %w", err)
		}
		leagues = append(leagues, &league)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during league rows iteration: %w", err)
	}
	return leagues, nil
}

func (r *postgresLeagueRepository) UpdateBracketMeta(ctx context.Context, exec SQLExecutor, id string, groupsCount, courtsCount int, generatedAt time.Time) error {
	query := `
		UPDATE leagues
		SET groups_count = $1, courts_count = $2, final_stage_mode = NULL, bracket_generated_at = $3
		WHERE id = $4`

	result, err := exec.ExecContext(ctx, query, groupsCount, courtsCount, generatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update bracket meta for league %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) UpdateFinalStageMode(ctx context.Context, exec SQLExecutor, id string, mode *models.FinalStageMode) error {
	query := `UPDATE leagues SET final_stage_mode = $1 WHERE id = $2`

	result, err := exec.ExecContext(ctx, query, mode, id)
	if err != nil {
		return fmt.Errorf("failed to update final stage mode for league %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func scanLeague(row *sql.Row) (*models.League, error) {
	league := &models.League{}
	err := row.Scan(
		&league.ID,
		&league.Name,
		&league.SurfaceType,
		&league.EntryFee,
		&league.MaxParticipants,
		&league.AutoGenerateBracket,
		&league.GroupsCount,
		&league.CourtsCount,
		&league.FinalStageMode,
		&league.BracketGeneratedAt,
		&league.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league: %w", err)
	}
	return league, nil
}
