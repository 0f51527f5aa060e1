package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tennisclub/league-system/brackets"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

// defaultTopPerGroup задаёт, сколько лучших игроков каждой группы
// проходит в нокаут-турнир, если организатор не указал иное.
const defaultTopPerGroup = 2

type TournamentService interface {
	// GenerateKnockout строит нокаут-сетку второго раунда из лучших
	// игроков каждой группы. Следующие раунды создаёт AdvanceRound.
	GenerateKnockout(ctx context.Context, leagueID string, input KnockoutInput) ([]*models.LeagueMatch, error)
	// AdvanceRound создаёт матчи следующего раунда из победителей
	// завершённых матчей текущего. Ничьи пропускаются.
	AdvanceRound(ctx context.Context, leagueID string, input AdvanceRoundInput) ([]*models.LeagueMatch, error)
}

type KnockoutInput struct {
	CourtsCount int `json:"courts_count"`
	TopPerGroup int `json:"top_n_per_group"`
}

type AdvanceRoundInput struct {
	CurrentRound int `json:"current_round"`
	CourtsCount  int `json:"courts_count"`
}

type tournamentService struct {
	db              *sql.DB
	leagueRepo      repositories.LeagueRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	memberRepo      repositories.MemberRepository
	rankingService  RankingService
	hub             *brackets.Hub
}

func NewTournamentService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	memberRepo repositories.MemberRepository,
	rankingService RankingService,
	hub *brackets.Hub,
) TournamentService {
	return &tournamentService{
		db:              db,
		leagueRepo:      leagueRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		memberRepo:      memberRepo,
		rankingService:  rankingService,
		hub:             hub,
	}
}

func (s *tournamentService) GenerateKnockout(ctx context.Context, leagueID string, input KnockoutInput) ([]*models.LeagueMatch, error) {
	topPerGroup := input.TopPerGroup
	if topPerGroup < 1 {
		topPerGroup = defaultTopPerGroup
	}
	courtsCount := input.CourtsCount
	if courtsCount < 1 {
		courtsCount = 1
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

	exists, err := s.matchRepo.ExistsNonPreliminary(ctx, tx, leagueID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrKnockoutAlreadyExists
	}

	topByGroup, err := s.rankingService.TopPlayersPerGroup(ctx, leagueID, topPerGroup)
	if err != nil {
		return nil, err
	}
	if len(topByGroup) == 0 {
		return nil, ErrNoCompletedMatches
	}

	groupNumbers := make([]int, 0, len(topByGroup))
	for number := range topByGroup {
		groupNumbers = append(groupNumbers, number)
	}
	sort.Ints(groupNumbers)

	qualifiedRankings := make([]models.PlayerRanking, 0, len(groupNumbers)*topPerGroup)
	for _, number := range groupNumbers {
		qualifiedRankings = append(qualifiedRankings, topByGroup[number]...)
	}
	if len(qualifiedRankings) < 2 {
		return nil, ErrNoQualifiedPlayers
	}

	qualified, err := resolveRankedMembers(ctx, s.memberRepo, qualifiedRankings)
	if err != nil {
		return nil, err
	}

	baseTime := time.Now().UTC().Add(24 * time.Hour)
	matches := make([]*models.LeagueMatch, 0, len(qualified)/2)

	// Нечётный хвост квалифицированных остаётся без пары и в сетку
	// не попадает.
	for i := 0; i+1 < len(qualified); i += 2 {
		sideA := knockoutSide{label: qualified[i].FullName, memberIDs: []string{qualified[i].ID}}
		sideB := knockoutSide{label: qualified[i+1].FullName, memberIDs: []string{qualified[i+1].ID}}

		match, err := s.createKnockoutMatch(ctx, tx, leagueID, 2, sideA, sideB, len(matches), courtsCount, baseTime)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit knockout generation: %w", err)
	}

	log.Info("knockout bracket generated", "league_id", leagueID, "matches", len(matches), "top_per_group", topPerGroup)
	if s.hub != nil {
		s.hub.BroadcastToLeague(leagueID, brackets.Event{Type: brackets.EventBracketUpdated, Payload: matches})
	}
	return matches, nil
}

func (s *tournamentService) AdvanceRound(ctx context.Context, leagueID string, input AdvanceRoundInput) ([]*models.LeagueMatch, error) {
	if input.CurrentRound < 2 {
		return nil, ErrInvalidAdvanceRound
	}
	courtsCount := input.CourtsCount
	if courtsCount < 1 {
		courtsCount = 1
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

	currentRound := input.CurrentRound
	completedStatus := models.MatchStatusCompleted
	completed, err := s.matchRepo.ListByLeague(ctx, leagueID, &currentRound, &completedStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches for round %d: %w", currentRound, err)
	}
	if len(completed) == 0 {
		return nil, ErrNoCompletedRoundMatches
	}

	nextRound := currentRound + 1
	existing, err := s.matchRepo.ListByLeague(ctx, leagueID, &nextRound, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for round %d: %w", nextRound, err)
	}
	if len(existing) > 0 {
		return nil, ErrRoundAlreadyExists
	}

	winners, err := s.collectWinners(ctx, completed)
	if err != nil {
		return nil, err
	}
	if len(winners) < 2 {
		return nil, ErrNotEnoughWinners
	}

	baseTime := time.Now().UTC().Add(24 * time.Hour)
	matches := make([]*models.LeagueMatch, 0, len(winners)/2)

	for i := 0; i+1 < len(winners); i += 2 {
		match, err := s.createKnockoutMatch(ctx, tx, leagueID, nextRound, winners[i], winners[i+1], len(matches), courtsCount, baseTime)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit round advance: %w", err)
	}

	log.Info("tournament round advanced", "league_id", leagueID, "round", nextRound, "matches", len(matches))
	if s.hub != nil {
		s.hub.BroadcastToLeague(leagueID, brackets.Event{Type: brackets.EventBracketUpdated, Payload: matches})
	}
	return matches, nil
}

// knockoutSide описывает одну сторону нокаут-матча: отображаемое имя
// и состав, который переносится в participants следующего раунда.
type knockoutSide struct {
	label     string
	memberIDs []string
}

// collectWinners достаёт победителей завершённых матчей раунда в порядке
// создания матчей. Сторона определяется по счёту, состав по participants;
// матчи без победителя (ничьи) пропускаются.
func (s *tournamentService) collectWinners(ctx context.Context, completed []*models.LeagueMatch) ([]knockoutSide, error) {
	matchIDs := make([]string, len(completed))
	for i, match := range completed {
		matchIDs[i] = match.ID
	}

	participants, err := s.participantRepo.ListByMatchIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	type slotKey struct {
		matchID string
		slot    models.TeamSlot
	}
	bySlot := make(map[slotKey][]string, len(participants))
	for _, participant := range participants {
		key := slotKey{matchID: participant.MatchID, slot: participant.Team}
		bySlot[key] = append(bySlot[key], participant.MemberID)
	}

	winners := make([]knockoutSide, 0, len(completed))
	for _, match := range completed {
		if match.Winner == nil {
			continue
		}
		slot, ok := brackets.WinningSlot(*match)
		if !ok {
			continue
		}
		winners = append(winners, knockoutSide{
			label:     *match.Winner,
			memberIDs: bySlot[slotKey{matchID: match.ID, slot: slot}],
		})
	}
	return winners, nil
}

func (s *tournamentService) createKnockoutMatch(
	ctx context.Context,
	tx repositories.SQLExecutor,
	leagueID string,
	round int,
	sideA, sideB knockoutSide,
	matchIndex, courtsCount int,
	baseTime time.Time,
) (*models.LeagueMatch, error) {
	match := &models.LeagueMatch{
		ID:          uuid.NewString(),
		LeagueID:    leagueID,
		Round:       round,
		GroupNumber: 1,
		Stage:       models.StageKnockout,
		PlayerA:     sideA.label,
		PlayerB:     sideB.label,
		Court:       courtName(matchIndex, courtsCount),
		ScheduledAt: scheduleSlot(baseTime, matchIndex, courtsCount),
		Status:      models.MatchStatusScheduled,
	}
	if err := s.matchRepo.Create(ctx, tx, match); err != nil {
		return nil, err
	}

	participants := make([]*models.MatchParticipant, 0, len(sideA.memberIDs)+len(sideB.memberIDs))
	for _, memberID := range sideA.memberIDs {
		participants = append(participants, &models.MatchParticipant{
			ID: uuid.NewString(), MatchID: match.ID, MemberID: memberID, Team: models.SlotTeamA,
		})
	}
	for _, memberID := range sideB.memberIDs {
		participants = append(participants, &models.MatchParticipant{
			ID: uuid.NewString(), MatchID: match.ID, MemberID: memberID, Team: models.SlotTeamB,
		})
	}
	if err := s.participantRepo.CreateBatch(ctx, tx, participants); err != nil {
		return nil, err
	}
	return match, nil
}
