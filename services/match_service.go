package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tennisclub/league-system/brackets"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

type MatchCreateInput struct {
	Round       int       `json:"round"`
	GroupNumber int       `json:"group_number"`
	PlayerA     string    `json:"player_a"`
	PlayerB     string    `json:"player_b"`
	Court       string    `json:"court"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type MatchService interface {
	ListByLeague(ctx context.Context, leagueID string) ([]*models.LeagueMatch, error)
	// Create добавляет одиночный матч вручную, вне генерации сеток.
	// Составы задаются только отображаемыми именами, поэтому в рейтинг
	// такой матч не попадает, пока его участники не записаны отдельно.
	Create(ctx context.Context, leagueID string, input MatchCreateInput) (*models.LeagueMatch, error)
	// SubmitScore завершает матч и, для олимпийского этапа, продвигает
	// победителей в слот следующего матча. Матч и его нижестоящий матч
	// изменяются в одной транзакции: либо применяется всё, либо ничего.
	SubmitScore(ctx context.Context, matchID string, scoreA, scoreB int) (*models.LeagueMatch, error)
	// UpdateSchedule меняет корт и/или время незавершённого матча.
	UpdateSchedule(ctx context.Context, matchID string, court *string, scheduledAt *time.Time) (*models.LeagueMatch, error)
}

type matchService struct {
	db              *sql.DB
	leagueRepo      repositories.LeagueRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	hub             *brackets.Hub
}

func NewMatchService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	hub *brackets.Hub,
) MatchService {
	return &matchService{
		db:              db,
		leagueRepo:      leagueRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		hub:             hub,
	}
}

func (s *matchService) ListByLeague(ctx context.Context, leagueID string) ([]*models.LeagueMatch, error) {
	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %s: %w", leagueID, err)
	}
	return s.matchRepo.ListByLeague(ctx, leagueID, nil, nil)
}

func (s *matchService) Create(ctx context.Context, leagueID string, input MatchCreateInput) (*models.LeagueMatch, error) {
	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %s: %w", leagueID, err)
	}

	stage := models.StagePreliminary
	if input.Round > 1 {
		stage = models.StageKnockout
	}

	match := &models.LeagueMatch{
		ID:          uuid.NewString(),
		LeagueID:    leagueID,
		Round:       input.Round,
		GroupNumber: input.GroupNumber,
		Stage:       stage,
		PlayerA:     input.PlayerA,
		PlayerB:     input.PlayerB,
		Court:       input.Court,
		ScheduledAt: input.ScheduledAt,
		Status:      models.MatchStatusScheduled,
	}
	if err := s.matchRepo.Create(ctx, s.db, match); err != nil {
		return nil, err
	}

	log.Info("match created manually", "league_id", leagueID, "match_id", match.ID, "round", match.Round)
	return match, nil
}

func (s *matchService) SubmitScore(ctx context.Context, matchID string, scoreA, scoreB int) (*models.LeagueMatch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	match, err := s.matchRepo.GetByIDForUpdate(ctx, tx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to lock match %s: %w", matchID, err)
	}

	if err := brackets.ApplyScore(match, scoreA, scoreB, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpdateResult(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := s.propagate(ctx, tx, match); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score submission: %w", err)
	}

	log.Info("match score submitted", "match_id", matchID, "score_a", scoreA, "score_b", scoreB)
	if s.hub != nil {
		s.hub.BroadcastToLeague(match.LeagueID, brackets.Event{Type: brackets.EventMatchUpdated, Payload: match})
	}
	return match, nil
}

// propagate переносит победившую пару в назначенный слот следующего
// матча: перезаписывает отображаемое имя слота и заменяет участников
// слота целиком (удаление + вставка). Противоположный слот не трогается.
func (s *matchService) propagate(ctx context.Context, tx repositories.SQLExecutor, match *models.LeagueMatch) error {
	if match.Stage != models.StageElimination || match.Winner == nil || match.NextMatchID == nil {
		return nil
	}

	downstream, err := s.matchRepo.GetByIDForUpdate(ctx, tx, *match.NextMatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			// Связь на удалённый матч: продвигать некуда.
			log.Warn("next match no longer exists, skipping propagation", "match_id", match.ID)
			return nil
		}
		return fmt.Errorf("failed to lock next match %s: %w", *match.NextMatchID, err)
	}

	participants, err := s.participantRepo.ListByMatch(ctx, match.ID)
	if err != nil {
		return fmt.Errorf("failed to list participants for match %s: %w", match.ID, err)
	}

	participantValues := make([]models.MatchParticipant, len(participants))
	for i, p := range participants {
		participantValues[i] = *p
	}

	plan, err := brackets.PlanPropagation(*match, participantValues, *downstream)
	if err != nil {
		return err
	}
	if plan == nil {
		return nil
	}

	if err := s.matchRepo.UpdateSlotLabel(ctx, tx, plan.MatchID, plan.Slot, plan.WinnerLabel); err != nil {
		return err
	}
	if err := s.participantRepo.DeleteByMatchSlot(ctx, tx, plan.MatchID, plan.Slot); err != nil {
		return err
	}

	replacements := make([]*models.MatchParticipant, 0, len(plan.MemberIDs))
	for _, memberID := range plan.MemberIDs {
		replacements = append(replacements, &models.MatchParticipant{
			ID:       uuid.NewString(),
			MatchID:  plan.MatchID,
			MemberID: memberID,
			Team:     plan.Slot,
		})
	}
	if err := s.participantRepo.CreateBatch(ctx, tx, replacements); err != nil {
		return err
	}

	log.Info("winner propagated",
		"match_id", match.ID,
		"next_match_id", plan.MatchID,
		"slot", plan.Slot,
		"winner", plan.WinnerLabel)
	return nil
}

func (s *matchService) UpdateSchedule(ctx context.Context, matchID string, court *string, scheduledAt *time.Time) (*models.LeagueMatch, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, brackets.ErrMatchAlreadyCompleted
	}

	if err := s.matchRepo.UpdateSchedule(ctx, matchID, court, scheduledAt); err != nil {
		return nil, err
	}
	return s.matchRepo.GetByID(ctx, matchID)
}
