package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tennisclub/league-system/brackets"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

// PreliminarySummary описывает ход предварительного этапа лиги.
type PreliminarySummary struct {
	Complete         bool `json:"preliminary_complete"`
	TotalMatches     int  `json:"total_matches"`
	CompletedMatches int  `json:"completed_matches"`
}

type FinalStageService interface {
	// CheckPreliminaryComplete сообщает, завершены ли все матчи раунда 1.
	// Лига без предварительных матчей считается незавершённой.
	CheckPreliminaryComplete(ctx context.Context, leagueID string) (bool, error)
	// PreliminaryStatus добавляет к проверке счётчики матчей раунда 1.
	PreliminaryStatus(ctx context.Context, leagueID string) (PreliminarySummary, error)
	// GenerateFinalStage создаёт пост-групповой этап: рейтинговые
	// плей-офф двух лучших групп либо олимпийскую сетку на 16 игроков.
	// Повторная генерация отклоняется, пока существует хотя бы один
	// матч не предварительного этапа.
	GenerateFinalStage(ctx context.Context, leagueID string, input FinalStageInput) ([]*models.LeagueMatch, error)
}

type FinalStageInput struct {
	Mode        models.FinalStageMode `json:"mode"`
	CourtsCount int                   `json:"courts_count"`
	NumMatches  *int                  `json:"num_matches,omitempty"`
}

type finalStageService struct {
	db              *sql.DB
	leagueRepo      repositories.LeagueRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	memberRepo      repositories.MemberRepository
	rankingService  RankingService
	hub             *brackets.Hub

	newRand func() *rand.Rand
}

func NewFinalStageService(
	db *sql.DB,
	leagueRepo repositories.LeagueRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	memberRepo repositories.MemberRepository,
	rankingService RankingService,
	hub *brackets.Hub,
) FinalStageService {
	return &finalStageService{
		db:              db,
		leagueRepo:      leagueRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		memberRepo:      memberRepo,
		rankingService:  rankingService,
		hub:             hub,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

func (s *finalStageService) CheckPreliminaryComplete(ctx context.Context, leagueID string) (bool, error) {
	summary, err := s.PreliminaryStatus(ctx, leagueID)
	if err != nil {
		return false, err
	}
	return summary.Complete, nil
}

func (s *finalStageService) PreliminaryStatus(ctx context.Context, leagueID string) (PreliminarySummary, error) {
	round := preliminaryRound
	matches, err := s.matchRepo.ListByLeague(ctx, leagueID, &round, nil)
	if err != nil {
		return PreliminarySummary{}, fmt.Errorf("failed to list preliminary matches: %w", err)
	}

	summary := PreliminarySummary{TotalMatches: len(matches)}
	for _, match := range matches {
		if match.Status == models.MatchStatusCompleted {
			summary.CompletedMatches++
		}
	}
	summary.Complete = summary.TotalMatches > 0 && summary.CompletedMatches == summary.TotalMatches
	return summary, nil
}

func (s *finalStageService) GenerateFinalStage(ctx context.Context, leagueID string, input FinalStageInput) ([]*models.LeagueMatch, error) {
	switch input.Mode {
	case models.FinalStageRankedPlay:
		if input.NumMatches == nil {
			return nil, ErrMatchCountRequired
		}
	case models.FinalStageElimination:
	default:
		return nil, ErrInvalidFinalStageMode
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

	complete, err := s.CheckPreliminaryComplete(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, ErrPreliminaryIncomplete
	}

	exists, err := s.matchRepo.ExistsNonPreliminary(ctx, tx, leagueID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrFinalStageAlreadyGenerated
	}

	rankings, err := s.rankingService.CalculateGroupRankings(ctx, leagueID, nil)
	if err != nil {
		return nil, err
	}

	var matches []*models.LeagueMatch
	switch input.Mode {
	case models.FinalStageRankedPlay:
		matches, err = s.generateRankedPlay(ctx, tx, leagueID, rankings, *input.NumMatches, courtsCount)
	case models.FinalStageElimination:
		matches, err = s.generateElimination(ctx, tx, leagueID, rankings, courtsCount)
	}
	if err != nil {
		return nil, err
	}

	mode := input.Mode
	if err := s.leagueRepo.UpdateFinalStageMode(ctx, tx, leagueID, &mode); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit final stage generation: %w", err)
	}

	log.Info("final stage generated", "league_id", leagueID, "mode", input.Mode, "matches", len(matches))
	if s.hub != nil {
		s.hub.BroadcastToLeague(leagueID, brackets.Event{Type: brackets.EventBracketUpdated, Payload: matches})
	}
	return matches, nil
}

func (s *finalStageService) generateRankedPlay(ctx context.Context, tx repositories.SQLExecutor, leagueID string, rankings []models.PlayerRanking, numMatches, courtsCount int) ([]*models.LeagueMatch, error) {
	byGroup := make(map[int][]models.PlayerRanking)
	for _, ranking := range rankings {
		byGroup[ranking.GroupNumber] = append(byGroup[ranking.GroupNumber], ranking)
	}
	if len(byGroup) < 2 {
		return nil, ErrTwoGroupsRequired
	}

	groupNumbers := make([]int, 0, len(byGroup))
	for number := range byGroup {
		groupNumbers = append(groupNumbers, number)
	}
	sort.Ints(groupNumbers)

	group1, err := resolveRankedMembers(ctx, s.memberRepo, byGroup[groupNumbers[0]])
	if err != nil {
		return nil, err
	}
	group2, err := resolveRankedMembers(ctx, s.memberRepo, byGroup[groupNumbers[1]])
	if err != nil {
		return nil, err
	}

	pairings, err := brackets.GenerateRankedPlayoffs(group1, group2, numMatches)
	if err != nil {
		return nil, err
	}

	baseTime := time.Now().UTC().Add(24 * time.Hour)
	matches := make([]*models.LeagueMatch, 0, len(pairings))
	for idx, pairing := range pairings {
		match := &models.LeagueMatch{
			ID:          uuid.NewString(),
			LeagueID:    leagueID,
			Round:       2,
			GroupNumber: 1,
			Stage:       models.StageRanked,
			PlayerA:     pairing.TeamA.Label(),
			PlayerB:     pairing.TeamB.Label(),
			Court:       courtName(idx, courtsCount),
			ScheduledAt: scheduleSlot(baseTime, idx, courtsCount),
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
	return matches, nil
}

func (s *finalStageService) generateElimination(ctx context.Context, tx repositories.SQLExecutor, leagueID string, rankings []models.PlayerRanking, courtsCount int) ([]*models.LeagueMatch, error) {
	if len(rankings) < 16 {
		return nil, brackets.ErrInsufficientRankedPlayers
	}

	// Посев идёт строго в порядке сводного рейтинга (группа, затем
	// результаты), поэтому соседние строки образуют команды внутри
	// своей группы.
	ranked, err := resolveRankedMembers(ctx, s.memberRepo, rankings[:16])
	if err != nil {
		return nil, err
	}

	bracket, err := brackets.BuildEliminationBracket(ranked, s.newRand())
	if err != nil {
		return nil, err
	}

	baseTime := time.Now().UTC().Add(24 * time.Hour)

	// Заготовки создаются от финала к четвертьфиналам, чтобы next_match_id
	// всегда ссылался на уже существующую строку.
	ids := make([]string, len(bracket))
	creationOrder := []int{6, 4, 5, 0, 1, 2, 3}
	matchesByIndex := make([]*models.LeagueMatch, len(bracket))

	for _, idx := range creationOrder {
		em := bracket[idx]

		var nextMatchID *string
		var nextMatchSlot *models.TeamSlot
		if em.NextIndex != brackets.FinalIndex {
			id := ids[em.NextIndex]
			slot := em.NextSlot
			nextMatchID = &id
			nextMatchSlot = &slot
		}

		match := &models.LeagueMatch{
			ID:            uuid.NewString(),
			LeagueID:      leagueID,
			Round:         em.Round,
			GroupNumber:   em.Position,
			Stage:         models.StageElimination,
			PlayerA:       em.LabelA,
			PlayerB:       em.LabelB,
			Court:         courtName(em.Position-1, courtsCount),
			ScheduledAt:   eliminationSlot(baseTime, em, courtsCount),
			Status:        models.MatchStatusScheduled,
			NextMatchID:   nextMatchID,
			NextMatchSlot: nextMatchSlot,
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, err
		}
		ids[idx] = match.ID
		matchesByIndex[idx] = match

		if em.TeamA != nil && em.TeamB != nil {
			pairing := brackets.Pairing{TeamA: *em.TeamA, TeamB: *em.TeamB}
			if err := s.participantRepo.CreateBatch(ctx, tx, pairingParticipants(match.ID, pairing)); err != nil {
				return nil, err
			}
		}
	}

	// Ответ в порядке сетки: четвертьфиналы, полуфиналы, финал.
	return matchesByIndex, nil
}

// eliminationSlot разводит раунды по времени: четвертьфиналы идут
// волнами по кортам, полуфиналы через 2 часа, финал через 3.
func eliminationSlot(base time.Time, em brackets.EliminationMatch, courtsCount int) time.Time {
	switch em.Round {
	case 2:
		return base.Add(time.Duration((em.Position-1)/courtsCount) * time.Hour)
	case 3:
		return base.Add(2 * time.Hour)
	default:
		return base.Add(3 * time.Hour)
	}
}

// resolveRankedMembers превращает строки рейтинга в игроков, сохраняя
// порядок рейтинга. Разрешение идёт по идентификаторам, не по именам.
func resolveRankedMembers(ctx context.Context, memberRepo repositories.MemberRepository, rankings []models.PlayerRanking) ([]models.Member, error) {
	ids := make([]string, len(rankings))
	for i, ranking := range rankings {
		ids[i] = ranking.MemberID
	}

	members, err := memberRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ranked members: %w", err)
	}

	byID := make(map[string]models.Member, len(members))
	for _, member := range members {
		byID[member.ID] = *member
	}

	resolved := make([]models.Member, 0, len(rankings))
	for _, ranking := range rankings {
		member, ok := byID[ranking.MemberID]
		if !ok {
			return nil, fmt.Errorf("%w: ranked member %s", ErrMemberNotFound, ranking.MemberID)
		}
		resolved = append(resolved, member)
	}
	return resolved, nil
}
