package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/tennisclub/league-system/models"
)

var ErrParticipantMemberInvalid = errors.New("match participant references an unknown member")

type ParticipantRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, participants []*models.MatchParticipant) error
	ListByMatch(ctx context.Context, matchID string) ([]*models.MatchParticipant, error)
	ListByMatchIDs(ctx context.Context, matchIDs []string) ([]*models.MatchParticipant, error)
	// DeleteByMatchSlot удаляет участников одного слота матча; второй слот
	// не затрагивается. Используется при продвижении победителей.
	DeleteByMatchSlot(ctx context.Context, exec SQLExecutor, matchID string, slot models.TeamSlot) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) CreateBatch(ctx context.Context, exec SQLExecutor, participants []*models.MatchParticipant) error {
	query := `
		INSERT INTO match_participants (id, match_id, member_id, team)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	for _, participant := range participants {
		err := exec.QueryRowContext(ctx, query,
			participant.ID,
			participant.MatchID,
			participant.MemberID,
			participant.Team,
		).Scan(&participant.CreatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "match_participants_member_id_fkey" {
				return ErrParticipantMemberInvalid
			}
			return fmt.Errorf("failed to create participant for match %s: %w", participant.MatchID, err)
		}
	}
	return nil
}

func (r *postgresParticipantRepository) ListByMatch(ctx context.Context, matchID string) ([]*models.MatchParticipant, error) {
	return r.listParticipants(ctx, `
		SELECT id, match_id, member_id, team, created_at
		FROM match_participants
		WHERE match_id = $1
		ORDER BY team ASC, created_at ASC`, matchID)
}

func (r *postgresParticipantRepository) ListByMatchIDs(ctx context.Context, matchIDs []string) ([]*models.MatchParticipant, error) {
	if len(matchIDs) == 0 {
		return []*models.MatchParticipant{}, nil
	}
	return r.listParticipants(ctx, `
		SELECT id, match_id, member_id, team, created_at
		FROM match_participants
		WHERE match_id = ANY($1)
		ORDER BY match_id ASC, team ASC, created_at ASC`, pq.Array(matchIDs))
}

func (r *postgresParticipantRepository) DeleteByMatchSlot(ctx context.Context, exec SQLExecutor, matchID string, slot models.TeamSlot) error {
	query := `DELETE FROM match_participants WHERE match_id = $1 AND team = $2`
	if _, err := exec.ExecContext(ctx, query, matchID, slot); err != nil {
		return fmt.Errorf("failed to delete %s participants for match %s: %w", slot, matchID, err)
	}
	return nil
}

func (r *postgresParticipantRepository) listParticipants(ctx context.Context, query string, arg interface{}) ([]*models.MatchParticipant, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query match participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.MatchParticipant, 0)
	for rows.Next() {
		var participant models.MatchParticipant
		if err := rows.Scan(
			&participant.ID,
			&participant.MatchID,
			&participant.MemberID,
			&participant.Team,
			&participant.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, &participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}
