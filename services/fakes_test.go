package services

import (
	"context"
	"time"

	"github.com/tennisclub/league-system/models"
	"github.com/tennisclub/league-system/repositories"
)

// Общие фейки хранилищ для сервисных тестов. Хранят данные в памяти и
// игнорируют переданный SQLExecutor: транзакционность проверяется через
// sqlmock на уровне Begin/Commit/Rollback.

type fakeLeagueRepo struct {
	leagues map[string]*models.League
}

func newFakeLeagueRepo() *fakeLeagueRepo {
	return &fakeLeagueRepo{leagues: make(map[string]*models.League)}
}

func (r *fakeLeagueRepo) Create(_ context.Context, league *models.League) error {
	stored := *league
	r.leagues[league.ID] = &stored
	return nil
}

func (r *fakeLeagueRepo) GetByID(_ context.Context, id string) (*models.League, error) {
	league, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	copied := *league
	return &copied, nil
}

func (r *fakeLeagueRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id string) (*models.League, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeLeagueRepo) List(_ context.Context) ([]*models.League, error) {
	leagues := make([]*models.League, 0, len(r.leagues))
	for _, league := range r.leagues {
		copied := *league
		leagues = append(leagues, &copied)
	}
	return leagues, nil
}

func (r *fakeLeagueRepo) UpdateBracketMeta(_ context.Context, _ repositories.SQLExecutor, id string, groupsCount, courtsCount int, generatedAt time.Time) error {
	league, ok := r.leagues[id]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	league.GroupsCount = &groupsCount
	league.CourtsCount = &courtsCount
	league.FinalStageMode = nil
	league.BracketGeneratedAt = &generatedAt
	return nil
}

func (r *fakeLeagueRepo) UpdateFinalStageMode(_ context.Context, _ repositories.SQLExecutor, id string, mode *models.FinalStageMode) error {
	league, ok := r.leagues[id]
	if !ok {
		return repositories.ErrLeagueNotFound
	}
	league.FinalStageMode = mode
	return nil
}

type fakeMatchRepo struct {
	matches map[string]*models.LeagueMatch
	order   []string
	clock   time.Time
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		matches: make(map[string]*models.LeagueMatch),
		clock:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

// seed кладёт матч в хранилище, минуя Create, для подготовки сценария.
func (r *fakeMatchRepo) seed(match *models.LeagueMatch) {
	r.clock = r.clock.Add(time.Second)
	stored := *match
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.clock
	}
	r.matches[match.ID] = &stored
	r.order = append(r.order, match.ID)
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.LeagueMatch) error {
	r.clock = r.clock.Add(time.Second)
	match.CreatedAt = r.clock
	stored := *match
	r.matches[match.ID] = &stored
	r.order = append(r.order, match.ID)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*models.LeagueMatch, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, _ repositories.SQLExecutor, id string) (*models.LeagueMatch, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMatchRepo) ListByLeague(_ context.Context, leagueID string, round *int, status *models.MatchStatus) ([]*models.LeagueMatch, error) {
	matches := make([]*models.LeagueMatch, 0)
	for _, id := range r.order {
		match, ok := r.matches[id]
		if !ok || match.LeagueID != leagueID {
			continue
		}
		if round != nil && match.Round != *round {
			continue
		}
		if status != nil && match.Status != *status {
			continue
		}
		copied := *match
		matches = append(matches, &copied)
	}
	return matches, nil
}

func (r *fakeMatchRepo) DeleteByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID string) error {
	kept := r.order[:0]
	for _, id := range r.order {
		if match, ok := r.matches[id]; ok && match.LeagueID == leagueID {
			delete(r.matches, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return nil
}

func (r *fakeMatchRepo) ExistsNonPreliminary(_ context.Context, _ repositories.SQLExecutor, leagueID string) (bool, error) {
	for _, match := range r.matches {
		if match.LeagueID == leagueID && match.Stage != models.StagePreliminary {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, match *models.LeagueMatch) error {
	stored, ok := r.matches[match.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.ScoreA = match.ScoreA
	stored.ScoreB = match.ScoreB
	stored.Status = match.Status
	stored.Winner = match.Winner
	stored.CompletedAt = match.CompletedAt
	return nil
}

func (r *fakeMatchRepo) UpdateSlotLabel(_ context.Context, _ repositories.SQLExecutor, id string, slot models.TeamSlot, label string) error {
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if slot == models.SlotTeamB {
		stored.PlayerB = label
	} else {
		stored.PlayerA = label
	}
	return nil
}

func (r *fakeMatchRepo) UpdateSchedule(_ context.Context, id string, court *string, scheduledAt *time.Time) error {
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if court != nil {
		stored.Court = *court
	}
	if scheduledAt != nil {
		stored.ScheduledAt = *scheduledAt
	}
	return nil
}

type slotDeletion struct {
	matchID string
	slot    models.TeamSlot
}

type fakeParticipantRepo struct {
	byMatch   map[string][]*models.MatchParticipant
	batches   [][]*models.MatchParticipant
	deletions []slotDeletion
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{byMatch: make(map[string][]*models.MatchParticipant)}
}

func (r *fakeParticipantRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, participants []*models.MatchParticipant) error {
	batch := make([]*models.MatchParticipant, 0, len(participants))
	for _, participant := range participants {
		stored := *participant
		r.byMatch[participant.MatchID] = append(r.byMatch[participant.MatchID], &stored)
		batch = append(batch, &stored)
	}
	r.batches = append(r.batches, batch)
	return nil
}

func (r *fakeParticipantRepo) ListByMatch(_ context.Context, matchID string) ([]*models.MatchParticipant, error) {
	participants := make([]*models.MatchParticipant, 0, len(r.byMatch[matchID]))
	for _, participant := range r.byMatch[matchID] {
		copied := *participant
		participants = append(participants, &copied)
	}
	return participants, nil
}

func (r *fakeParticipantRepo) ListByMatchIDs(ctx context.Context, matchIDs []string) ([]*models.MatchParticipant, error) {
	participants := make([]*models.MatchParticipant, 0)
	for _, matchID := range matchIDs {
		fromMatch, _ := r.ListByMatch(ctx, matchID)
		participants = append(participants, fromMatch...)
	}
	return participants, nil
}

func (r *fakeParticipantRepo) DeleteByMatchSlot(_ context.Context, _ repositories.SQLExecutor, matchID string, slot models.TeamSlot) error {
	kept := make([]*models.MatchParticipant, 0)
	for _, participant := range r.byMatch[matchID] {
		if participant.Team == slot {
			continue
		}
		kept = append(kept, participant)
	}
	r.byMatch[matchID] = kept
	r.deletions = append(r.deletions, slotDeletion{matchID: matchID, slot: slot})
	return nil
}

type fakeApplicationRepo struct {
	applications map[string]*models.LeagueApplication
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{applications: make(map[string]*models.LeagueApplication)}
}

func applicationKey(leagueID, memberID string) string {
	return leagueID + "/" + memberID
}

func (r *fakeApplicationRepo) Create(_ context.Context, application *models.LeagueApplication) error {
	key := applicationKey(application.LeagueID, application.MemberID)
	if _, exists := r.applications[key]; exists {
		return repositories.ErrApplicationConflict
	}
	stored := *application
	r.applications[key] = &stored
	return nil
}

func (r *fakeApplicationRepo) ListByLeague(_ context.Context, leagueID string, _ bool) ([]*models.LeagueApplication, error) {
	applications := make([]*models.LeagueApplication, 0)
	for _, application := range r.applications {
		if application.LeagueID == leagueID {
			copied := *application
			applications = append(applications, &copied)
		}
	}
	return applications, nil
}

func (r *fakeApplicationRepo) CountByLeague(_ context.Context, leagueID string) (int, error) {
	count := 0
	for _, application := range r.applications {
		if application.LeagueID == leagueID {
			count++
		}
	}
	return count, nil
}

func (r *fakeApplicationRepo) UpdateStatusByLeague(_ context.Context, _ repositories.SQLExecutor, leagueID string, status models.ApplicationStatus) error {
	for _, application := range r.applications {
		if application.LeagueID == leagueID {
			application.Status = status
		}
	}
	return nil
}

func (r *fakeApplicationRepo) Delete(_ context.Context, leagueID, memberID string) error {
	key := applicationKey(leagueID, memberID)
	if _, exists := r.applications[key]; !exists {
		return repositories.ErrApplicationNotFound
	}
	delete(r.applications, key)
	return nil
}

// fakeRankingService отдаёт заранее подготовленный рейтинг, не трогая
// матчи: знает тот же контракт сортировки, что и боевой сервис.
type fakeRankingService struct {
	rankings []models.PlayerRanking
}

func (s *fakeRankingService) CalculateGroupRankings(_ context.Context, _ string, groupNumber *int) ([]models.PlayerRanking, error) {
	rankings := make([]models.PlayerRanking, 0, len(s.rankings))
	for _, ranking := range s.rankings {
		if groupNumber != nil && ranking.GroupNumber != *groupNumber {
			continue
		}
		rankings = append(rankings, ranking)
	}
	return rankings, nil
}

func (s *fakeRankingService) TopPlayersPerGroup(_ context.Context, _ string, topN int) (map[int][]models.PlayerRanking, error) {
	groups := make(map[int][]models.PlayerRanking)
	for _, ranking := range s.rankings {
		if len(groups[ranking.GroupNumber]) < topN {
			groups[ranking.GroupNumber] = append(groups[ranking.GroupNumber], ranking)
		}
	}
	return groups, nil
}
