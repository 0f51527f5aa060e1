package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

type ApplicationService interface {
	// Apply регистрирует участника в лиге. При достижении лимита мест
	// и включённой автогенерации сразу строится предварительная сетка.
	Apply(ctx context.Context, leagueID, memberID string) (*models.LeagueApplication, error)
	ListByLeague(ctx context.Context, leagueID string) ([]*models.LeagueApplication, error)
	// Cancel снимает заявку участника. После генерации сетки отмена
	// запрещена: составы групп уже зафиксированы.
	Cancel(ctx context.Context, leagueID, memberID string) error
}

type applicationService struct {
	applicationRepo repositories.ApplicationRepository
	leagueRepo      repositories.LeagueRepository
	memberRepo      repositories.MemberRepository
	bracketService  BracketService
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	leagueRepo repositories.LeagueRepository,
	memberRepo repositories.MemberRepository,
	bracketService BracketService,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		leagueRepo:      leagueRepo,
		memberRepo:      memberRepo,
		bracketService:  bracketService,
	}
}

func (s *applicationService) Apply(ctx context.Context, leagueID, memberID string) (*models.LeagueApplication, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %s: %w", leagueID, err)
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load member %s: %w", memberID, err)
	}

	count, err := s.applicationRepo.CountByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if count >= league.MaxParticipants {
		return nil, ErrLeagueFull
	}

	application := &models.LeagueApplication{
		ID:       uuid.NewString(),
		LeagueID: leagueID,
		MemberID: memberID,
		Status:   models.ApplicationPending,
	}
	if err := s.applicationRepo.Create(ctx, application); err != nil {
		if errors.Is(err, repositories.ErrApplicationConflict) {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}
	application.Member = member

	log.Info("member applied to league",
		"league_id", leagueID,
		"member_id", memberID,
		"filled", count+1,
		"capacity", league.MaxParticipants)

	if count+1 >= league.MaxParticipants && league.AutoGenerateBracket {
		groups := 2
		if league.GroupsCount != nil {
			groups = *league.GroupsCount
		}
		courts := 2
		if league.CourtsCount != nil {
			courts = *league.CourtsCount
		}
		if _, err := s.bracketService.GenerateBracket(ctx, leagueID, groups, courts); err != nil {
			// Заявка уже принята, сетку можно перегенерировать вручную.
			log.Error("auto bracket generation failed", "league_id", leagueID, "error", err)
		}
	}

	return application, nil
}

func (s *applicationService) Cancel(ctx context.Context, leagueID, memberID string) error {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return ErrLeagueNotFound
		}
		return fmt.Errorf("failed to load league %s: %w", leagueID, err)
	}
	if league.BracketGeneratedAt != nil {
		return ErrBracketAlreadyGenerated
	}

	if err := s.applicationRepo.Delete(ctx, leagueID, memberID); err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return ErrApplicationNotFound
		}
		return err
	}

	log.Info("application cancelled", "league_id", leagueID, "member_id", memberID)
	return nil
}

func (s *applicationService) ListByLeague(ctx context.Context, leagueID string) ([]*models.LeagueApplication, error) {
	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %s: %w", leagueID, err)
	}
	return s.applicationRepo.ListByLeague(ctx, leagueID, false)
}
