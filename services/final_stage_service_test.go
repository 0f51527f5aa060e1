package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tennisclub/league-system/models"
)

type finalStageFixture struct {
	db              *sql.DB
	mock            sqlmock.Sqlmock
	leagueRepo      *fakeLeagueRepo
	matchRepo       *fakeMatchRepo
	participantRepo *fakeParticipantRepo
	memberRepo      *fakeMemberRepo
	svc             *finalStageService
}

func newFinalStageFixture(t *testing.T, rankings []models.PlayerRanking) *finalStageFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &finalStageFixture{
		db:              db,
		mock:            mock,
		leagueRepo:      newFakeLeagueRepo(),
		matchRepo:       newFakeMatchRepo(),
		participantRepo: newFakeParticipantRepo(),
		memberRepo:      newFakeMemberRepo(),
	}

	f.leagueRepo.leagues["league-1"] = &models.League{ID: "league-1", Name: "Autumn League", MaxParticipants: 16}
	f.matchRepo.seed(&models.LeagueMatch{
		ID:       "prelim-1",
		LeagueID: "league-1",
		Round:    1,
		Stage:    models.StagePreliminary,
		Status:   models.MatchStatusCompleted,
	})

	svc := NewFinalStageService(db, f.leagueRepo, f.matchRepo, f.participantRepo, f.memberRepo, &fakeRankingService{rankings: rankings}, nil)
	f.svc = svc.(*finalStageService)
	f.svc.newRand = func() *rand.Rand { return rand.New(rand.NewSource(7)) }
	return f
}

// interleavedRankings строит сводный рейтинг двух групп по восемь
// игроков, у которых победы чередуются между группами: пересортировка
// по одним только победам перемешала бы группы.
func interleavedRankings(memberRepo *fakeMemberRepo) []models.PlayerRanking {
	rankings := make([]models.PlayerRanking, 0, 16)
	for group := 1; group <= 2; group++ {
		for pos := 0; pos < 8; pos++ {
			idx := (group-1)*8 + pos
			id := fmt.Sprintf("member-%02d", idx)
			name := fmt.Sprintf("Player %02d", idx)
			memberRepo.byID[id] = &models.Member{ID: id, FullName: name}
			rankings = append(rankings, models.PlayerRanking{
				MemberID:    id,
				PlayerName:  name,
				GroupNumber: group,
				Wins:        15 - pos*2 - (group - 1),
			})
		}
	}
	return rankings
}

func TestGenerateFinalStageEliminationSeedsByRankingOrder(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	rankings := interleavedRankings(memberRepo)

	// Семнадцатый игрок замыкает рейтинг из-за номера группы, хотя
	// побед у него больше всех. В сетку он попасть не должен.
	memberRepo.byID["member-16"] = &models.Member{ID: "member-16", FullName: "Player 16"}
	rankings = append(rankings, models.PlayerRanking{
		MemberID:    "member-16",
		PlayerName:  "Player 16",
		GroupNumber: 3,
		Wins:        100,
	})

	f := newFinalStageFixture(t, rankings)
	f.memberRepo = memberRepo
	f.svc.memberRepo = memberRepo

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	matches, err := f.svc.GenerateFinalStage(context.Background(), "league-1", FinalStageInput{
		Mode:        models.FinalStageElimination,
		CourtsCount: 2,
	})
	require.NoError(t, err)
	require.Len(t, matches, 7)
	require.NoError(t, f.mock.ExpectationsWereMet())

	groupByMember := make(map[string]int, len(rankings))
	for _, ranking := range rankings {
		groupByMember[ranking.MemberID] = ranking.GroupNumber
	}

	wantTeams := make(map[string]bool, 8)
	for i := 0; i < 16; i += 2 {
		wantTeams[teamKey(rankings[i].MemberID, rankings[i+1].MemberID)] = true
	}

	seeded := make(map[string]int)
	quarterfinalBatches := 0
	for _, batch := range f.participantRepo.batches {
		if len(batch) != 4 {
			continue
		}
		quarterfinalBatches++

		bySlot := make(map[models.TeamSlot][]string)
		for _, participant := range batch {
			bySlot[participant.Team] = append(bySlot[participant.Team], participant.MemberID)
			seeded[participant.MemberID]++
		}
		for slot, memberIDs := range bySlot {
			require.Len(t, memberIDs, 2, "slot %s", slot)
			assert.Equal(t, groupByMember[memberIDs[0]], groupByMember[memberIDs[1]],
				"team %v mixes players from different groups", memberIDs)
			assert.True(t, wantTeams[teamKey(memberIDs[0], memberIDs[1])],
				"team %v is not a pair of ranking neighbours", memberIDs)
		}
	}

	assert.Equal(t, 4, quarterfinalBatches)
	assert.Len(t, seeded, 16)
	for i := 0; i < 16; i++ {
		assert.Equal(t, 1, seeded[rankings[i].MemberID])
	}
	assert.NotContains(t, seeded, "member-16")
}

func teamKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func TestGenerateFinalStageRejectsRepeatedGeneration(t *testing.T) {
	memberRepo := newFakeMemberRepo()
	rankings := interleavedRankings(memberRepo)

	f := newFinalStageFixture(t, rankings)
	f.svc.memberRepo = memberRepo
	f.matchRepo.seed(&models.LeagueMatch{
		ID:       "final-1",
		LeagueID: "league-1",
		Round:    4,
		Stage:    models.StageElimination,
		Status:   models.MatchStatusScheduled,
	})
	createdBefore := len(f.matchRepo.order)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.GenerateFinalStage(context.Background(), "league-1", FinalStageInput{
		Mode:        models.FinalStageElimination,
		CourtsCount: 2,
	})
	require.ErrorIs(t, err, ErrFinalStageAlreadyGenerated)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Len(t, f.matchRepo.order, createdBefore)
	assert.Empty(t, f.participantRepo.batches)
}

func TestGenerateFinalStageRankedRequiresMatchCount(t *testing.T) {
	f := newFinalStageFixture(t, nil)

	_, err := f.svc.GenerateFinalStage(context.Background(), "league-1", FinalStageInput{
		Mode: models.FinalStageRankedPlay,
	})
	require.ErrorIs(t, err, ErrMatchCountRequired)
	require.NoError(t, f.mock.ExpectationsWereMet())
}
