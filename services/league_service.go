package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
	"golang.org/x/sync/errgroup"
)

type LeagueService interface {
	Create(ctx context.Context, input CreateLeagueInput) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	GetByID(ctx context.Context, id string) (*models.League, error)
	// GetOverview возвращает лигу вместе с заявками и матчами одним ответом.
	GetOverview(ctx context.Context, id string) (*models.League, error)
}

type CreateLeagueInput struct {
	Name                string `json:"name"`
	SurfaceType         string `json:"surface_type"`
	EntryFee            int    `json:"entry_fee"`
	MaxParticipants     int    `json:"max_participants"`
	AutoGenerateBracket bool   `json:"auto_generate_bracket"`
	GroupsCount         *int   `json:"groups_count,omitempty"`
	CourtsCount         *int   `json:"courts_count,omitempty"`
}

type leagueService struct {
	leagueRepo      repositories.LeagueRepository
	applicationRepo repositories.ApplicationRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	applicationRepo repositories.ApplicationRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
) LeagueService {
	return &leagueService{
		leagueRepo:      leagueRepo,
		applicationRepo: applicationRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
	}
}

func (s *leagueService) Create(ctx context.Context, input CreateLeagueInput) (*models.League, error) {
	if input.Name == "" {
		return nil, ErrLeagueNameRequired
	}
	if input.MaxParticipants <= 0 {
		return nil, ErrLeagueInvalidCapacity
	}

	league := &models.League{
		ID:                  uuid.NewString(),
		Name:                input.Name,
		SurfaceType:         input.SurfaceType,
		EntryFee:            input.EntryFee,
		MaxParticipants:     input.MaxParticipants,
		AutoGenerateBracket: input.AutoGenerateBracket,
		GroupsCount:         input.GroupsCount,
		CourtsCount:         input.CourtsCount,
	}

	if err := s.leagueRepo.Create(ctx, league); err != nil {
		return nil, err
	}
	return league, nil
}

func (s *leagueService) List(ctx context.Context) ([]*models.League, error) {
	return s.leagueRepo.List(ctx)
}

func (s *leagueService) GetByID(ctx context.Context, id string) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %s: %w", id, err)
	}
	return league, nil
}

func (s *leagueService) GetOverview(ctx context.Context, id string) (*models.League, error) {
	league, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		applications []*models.LeagueApplication
		matches      []*models.LeagueMatch
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		applications, err = s.applicationRepo.ListByLeague(gCtx, id, false)
		if err != nil {
			return fmt.Errorf("failed to list applications: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByLeague(gCtx, id, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.attachParticipants(ctx, matches); err != nil {
		return nil, err
	}

	league.Applications = make([]models.LeagueApplication, len(applications))
	for i, application := range applications {
		league.Applications[i] = *application
	}
	league.Matches = make([]models.LeagueMatch, len(matches))
	for i, match := range matches {
		league.Matches[i] = *match
	}
	return league, nil
}

func (s *leagueService) attachParticipants(ctx context.Context, matches []*models.LeagueMatch) error {
	if len(matches) == 0 {
		return nil
	}

	matchIDs := make([]string, len(matches))
	for i, match := range matches {
		matchIDs[i] = match.ID
	}

	participants, err := s.participantRepo.ListByMatchIDs(ctx, matchIDs)
	if err != nil {
		return fmt.Errorf("failed to list match participants: %w", err)
	}

	byMatch := make(map[string][]models.MatchParticipant, len(matches))
	for _, participant := range participants {
		byMatch[participant.MatchID] = append(byMatch[participant.MatchID], *participant)
	}
	for _, match := range matches {
		match.Participants = byMatch[match.ID]
	}
	return nil
}
