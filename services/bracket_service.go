package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tennisclub/league-system/brackets"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

type BracketService interface {
	// GenerateBracket строит предварительную сетку лиги: удаляет прежние
	// матчи, распределяет заявителей по группам и создаёт парные матчи
	// с кортами и расписанием. Вся генерация выполняется в одной
	// транзакции под блокировкой строки лиги: вторая конкурентная
	// генерация той же лиги ждёт и затем перегенерирует сетку заново,
	// а не переплетает записи с первой.
	GenerateBracket(ctx context.Context, leagueID string, groupsCount, courtsCount int) ([]*models.LeagueMatch, error)
}

type bracketService struct {
	db              *sql.DB
	leagueRepo      repositories.LeagueRepository
	applicationRepo repositories.ApplicationRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	hub             *brackets.Hub

	// newRand выдаёт генератор на одну операцию; тесты подставляют
	// детерминированный источник.
	newRand func() *rand.Rand
}

func NewBracketService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	applicationRepo repositories.ApplicationRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	hub *brackets.Hub,
) BracketService {
	return &bracketService{
		db:              db,
		leagueRepo:      leagueRepo,
		applicationRepo: applicationRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		hub:             hub,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, leagueID string, groupsCount, courtsCount int) ([]*models.LeagueMatch, error) {
	if groupsCount < 1 {
		groupsCount = 1
	}
	if courtsCount < 1 {
		courtsCount = 1
	}

	applications, err := s.applicationRepo.ListByLeague(ctx, leagueID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for league %s: %w", leagueID, err)
	}
	if len(applications) == 0 {
		return nil, ErrNoApplicants
	}

	members := make([]models.Member, 0, len(applications))
	for _, application := range applications {
		if application.Member != nil {
			members = append(members, *application.Member)
		}
	}
	if len(members) < 4 {
		return nil, brackets.ErrInsufficientPlayers
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.leagueRepo.GetByIDForUpdate(ctx, tx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to lock league %s: %w", leagueID, err)
	}

	// Перегенерация всегда начинается с чистого листа.
	if err := s.matchRepo.DeleteByLeague(ctx, tx, leagueID); err != nil {
		return nil, err
	}

	groups := brackets.DistributeGroups(members, groupsCount)
	rng := s.newRand()
	baseTime := time.Now().UTC().Add(24 * time.Hour)

	matches := make([]*models.LeagueMatch, 0)
	for groupIdx, groupMembers := range groups {
		groupNumber := groupIdx + 1

		// Группы меньше четырёх игроков пропускаются: сетка будет
		// частичной, это сигнал организатору, а не ошибка.
		if len(groupMembers) < 4 {
			continue
		}

		result, err := brackets.GeneratePreliminaryPairs(groupMembers, brackets.DefaultMatchesPerPlayer, rng)
		if err != nil {
			return nil, err
		}
		if len(result.Matches) < result.Target {
			log.Warn("preliminary pairing shortfall",
				"league_id", leagueID,
				"group", groupNumber,
				"generated", len(result.Matches),
				"target", result.Target)
		}

		for _, pairing := range result.Matches {
			match := &models.LeagueMatch{
				ID:          uuid.NewString(),
				LeagueID:    leagueID,
				Round:       preliminaryRound,
				GroupNumber: groupNumber,
				Stage:       models.StagePreliminary,
				PlayerA:     pairing.TeamA.Label(),
				PlayerB:     pairing.TeamB.Label(),
				Court:       courtName(len(matches), courtsCount),
				ScheduledAt: scheduleSlot(baseTime, len(matches), courtsCount),
				Status:      models.MatchStatusScheduled,
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return nil, err
			}
			if err := s.participantRepo.CreateBatch(ctx, tx, pairingParticipants(match.ID, pairing)); err != nil {
				return nil, err
			}
			matches = append(matches, match)
		}
	}

	if err := s.applicationRepo.UpdateStatusByLeague(ctx, tx, leagueID, models.ApplicationScheduled); err != nil {
		return nil, err
	}
	if err := s.leagueRepo.UpdateBracketMeta(ctx, tx, leagueID, groupsCount, courtsCount, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket generation: %w", err)
	}

	log.Info("preliminary bracket generated", "league_id", leagueID, "matches", len(matches), "groups", groupsCount)
	if s.hub != nil {
		s.hub.BroadcastToLeague(leagueID, brackets.Event{Type: brackets.EventBracketUpdated, Payload: matches})
	}
	return matches, nil
}

// courtName назначает корты по кругу: Court 1..N.
func courtName(matchIndex, courtsCount int) string {
	return fmt.Sprintf("Court %d", matchIndex%courtsCount+1)
}

// scheduleSlot сдвигает время на час после каждого полного круга кортов.
func scheduleSlot(base time.Time, matchIndex, courtsCount int) time.Time {
	return base.Add(time.Duration(matchIndex/courtsCount) * time.Hour)
}

func pairingParticipants(matchID string, pairing brackets.Pairing) []*models.MatchParticipant {
	return []*models.MatchParticipant{
		{ID: uuid.NewString(), MatchID: matchID, MemberID: pairing.TeamA.P1.ID, Team: models.SlotTeamA},
		{ID: uuid.NewString(), MatchID: matchID, MemberID: pairing.TeamA.P2.ID, Team: models.SlotTeamA},
		{ID: uuid.NewString(), MatchID: matchID, MemberID: pairing.TeamB.P1.ID, Team: models.SlotTeamB},
		{ID: uuid.NewString(), MatchID: matchID, MemberID: pairing.TeamB.P2.ID, Team: models.SlotTeamB},
	}
}
