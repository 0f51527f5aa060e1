package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tennisclub/league-system/brackets"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

const preliminaryRound = 1

type RankingService interface {
	// CalculateGroupRankings строит таблицу результатов по завершённым
	// матчам предварительного этапа; groupNumber фильтрует одну группу.
	CalculateGroupRankings(ctx context.Context, leagueID string, groupNumber *int) ([]models.PlayerRanking, error)
	// TopPlayersPerGroup возвращает по topN лучших строк на группу.
	TopPlayersPerGroup(ctx context.Context, leagueID string, topN int) (map[int][]models.PlayerRanking, error)
}

type rankingService struct {
	leagueRepo      repositories.LeagueRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	memberRepo      repositories.MemberRepository
}

func NewRankingService(
	leagueRepo repositories.LeagueRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	memberRepo repositories.MemberRepository,
) RankingService {
	return &rankingService{
		leagueRepo:      leagueRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		memberRepo:      memberRepo,
	}
}

func (s *rankingService) CalculateGroupRankings(ctx context.Context, leagueID string, groupNumber *int) ([]models.PlayerRanking, error) {
	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %s: %w", leagueID, err)
	}

	completed, err := s.loadCompletedPreliminaryMatches(ctx, leagueID, groupNumber)
	if err != nil {
		return nil, err
	}

	return brackets.CalculateRankings(completed), nil
}

func (s *rankingService) TopPlayersPerGroup(ctx context.Context, leagueID string, topN int) (map[int][]models.PlayerRanking, error) {
	rankings, err := s.CalculateGroupRankings(ctx, leagueID, nil)
	if err != nil {
		return nil, err
	}

	groups := make(map[int][]models.PlayerRanking)
	for _, ranking := range rankings {
		if len(groups[ranking.GroupNumber]) < topN {
			groups[ranking.GroupNumber] = append(groups[ranking.GroupNumber], ranking)
		}
	}
	return groups, nil
}

// loadCompletedPreliminaryMatches собирает вход для чистого расчёта:
// завершённые матчи раунда 1 с составами команд, разрешёнными через
// match_participants (а не через отображаемые имена на матче).
func (s *rankingService) loadCompletedPreliminaryMatches(ctx context.Context, leagueID string, groupNumber *int) ([]brackets.CompletedMatch, error) {
	round := preliminaryRound
	status := models.MatchStatusCompleted
	matches, err := s.matchRepo.ListByLeague(ctx, leagueID, &round, &status)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed preliminary matches: %w", err)
	}

	if groupNumber != nil {
		filtered := matches[:0]
		for _, match := range matches {
			if match.GroupNumber == *groupNumber {
				filtered = append(filtered, match)
			}
		}
		matches = filtered
	}
	if len(matches) == 0 {
		return []brackets.CompletedMatch{}, nil
	}

	matchIDs := make([]string, len(matches))
	for i, match := range matches {
		matchIDs[i] = match.ID
	}

	participants, err := s.participantRepo.ListByMatchIDs(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	memberIDs := make([]string, 0, len(participants))
	seen := make(map[string]bool, len(participants))
	for _, participant := range participants {
		if !seen[participant.MemberID] {
			seen[participant.MemberID] = true
			memberIDs = append(memberIDs, participant.MemberID)
		}
	}

	members, err := s.memberRepo.ListByIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant members: %w", err)
	}
	membersByID := make(map[string]models.Member, len(members))
	for _, member := range members {
		membersByID[member.ID] = *member
	}

	byMatch := make(map[string][]*models.MatchParticipant, len(matches))
	for _, participant := range participants {
		byMatch[participant.MatchID] = append(byMatch[participant.MatchID], participant)
	}

	completed := make([]brackets.CompletedMatch, 0, len(matches))
	for _, match := range matches {
		cm := brackets.CompletedMatch{GroupNumber: match.GroupNumber}
		if match.ScoreA != nil {
			cm.ScoreA = *match.ScoreA
		}
		if match.ScoreB != nil {
			cm.ScoreB = *match.ScoreB
		}
		for _, participant := range byMatch[match.ID] {
			member, ok := membersByID[participant.MemberID]
			if !ok {
				continue
			}
			if participant.Team == models.SlotTeamA {
				cm.TeamA = append(cm.TeamA, member)
			} else {
				cm.TeamB = append(cm.TeamB, member)
			}
		}
		completed = append(completed, cm)
	}

	return completed, nil
}
