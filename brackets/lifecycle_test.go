package brackets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tennisclub/league-system/models"
)

func scheduledMatch(stage models.MatchStage) *models.LeagueMatch {
	return &models.LeagueMatch{
		ID:      "match-1",
		PlayerA: "Anna, Boris",
		PlayerB: "Clara, Dmitri",
		Stage:   stage,
		Status:  models.MatchStatusScheduled,
	}
}

func TestApplyScoreCompletesMatch(t *testing.T) {
	match := scheduledMatch(models.StagePreliminary)
	now := time.Now()

	require.NoError(t, ApplyScore(match, 6, 4, now))

	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.ScoreA)
	require.NotNil(t, match.ScoreB)
	assert.Equal(t, 6, *match.ScoreA)
	assert.Equal(t, 4, *match.ScoreB)
	require.NotNil(t, match.Winner)
	assert.Equal(t, "Anna, Boris", *match.Winner)
	require.NotNil(t, match.CompletedAt)
	assert.Equal(t, now, *match.CompletedAt)
}

func TestApplyScoreRejectsCompletedMatch(t *testing.T) {
	match := scheduledMatch(models.StagePreliminary)
	require.NoError(t, ApplyScore(match, 6, 4, time.Now()))
	snapshot := *match

	err := ApplyScore(match, 0, 6, time.Now())
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
	// Отклонённая подача не меняет матч.
	assert.Equal(t, snapshot, *match)
}

func TestApplyScoreTie(t *testing.T) {
	// Ничья в предварительном матче допустима, победителя нет.
	match := scheduledMatch(models.StagePreliminary)
	require.NoError(t, ApplyScore(match, 5, 5, time.Now()))
	assert.Nil(t, match.Winner)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)

	// В олимпийском матче ничья запрещена, матч не изменяется.
	elim := scheduledMatch(models.StageElimination)
	err := ApplyScore(elim, 5, 5, time.Now())
	assert.ErrorIs(t, err, ErrTieNotAllowed)
	assert.Equal(t, models.MatchStatusScheduled, elim.Status)
	assert.Nil(t, elim.ScoreA)
}

func TestWinningSlot(t *testing.T) {
	six, four := 6, 4

	match := models.LeagueMatch{ScoreA: &six, ScoreB: &four}
	slot, ok := WinningSlot(match)
	require.True(t, ok)
	assert.Equal(t, models.SlotTeamA, slot)

	match = models.LeagueMatch{ScoreA: &four, ScoreB: &six}
	slot, ok = WinningSlot(match)
	require.True(t, ok)
	assert.Equal(t, models.SlotTeamB, slot)

	match = models.LeagueMatch{ScoreA: &six, ScoreB: &six}
	_, ok = WinningSlot(match)
	assert.False(t, ok)

	_, ok = WinningSlot(models.LeagueMatch{})
	assert.False(t, ok)
}

func completedEliminationMatch() models.LeagueMatch {
	six, four := 6, 4
	winner := "Anna, Boris"
	nextID := "match-final"
	slot := models.SlotTeamA
	now := time.Now()
	return models.LeagueMatch{
		ID:            "match-sf1",
		Stage:         models.StageElimination,
		Status:        models.MatchStatusCompleted,
		PlayerA:       "Anna, Boris",
		PlayerB:       "Clara, Dmitri",
		ScoreA:        &six,
		ScoreB:        &four,
		Winner:        &winner,
		CompletedAt:   &now,
		NextMatchID:   &nextID,
		NextMatchSlot: &slot,
	}
}

func sfParticipants() []models.MatchParticipant {
	return []models.MatchParticipant{
		{MatchID: "match-sf1", MemberID: "anna", Team: models.SlotTeamA},
		{MatchID: "match-sf1", MemberID: "boris", Team: models.SlotTeamA},
		{MatchID: "match-sf1", MemberID: "clara", Team: models.SlotTeamB},
		{MatchID: "match-sf1", MemberID: "dmitri", Team: models.SlotTeamB},
	}
}

func TestPlanPropagationCollectsWinners(t *testing.T) {
	match := completedEliminationMatch()
	downstream := models.LeagueMatch{ID: "match-final", Status: models.MatchStatusScheduled}

	plan, err := PlanPropagation(match, sfParticipants(), downstream)
	require.NoError(t, err)
	require.NotNil(t, plan)

	assert.Equal(t, "match-final", plan.MatchID)
	assert.Equal(t, models.SlotTeamA, plan.Slot)
	assert.Equal(t, "Anna, Boris", plan.WinnerLabel)
	assert.ElementsMatch(t, []string{"anna", "boris"}, plan.MemberIDs)
}

func TestPlanPropagationUsesScoresNotLabels(t *testing.T) {
	// Команды с одинаковыми отображаемыми именами: победитель всё равно
	// определяется по счёту.
	match := completedEliminationMatch()
	match.PlayerB = match.PlayerA
	four, six := 4, 6
	match.ScoreA, match.ScoreB = &four, &six
	winner := match.PlayerB
	match.Winner = &winner
	downstream := models.LeagueMatch{ID: "match-final", Status: models.MatchStatusScheduled}

	plan, err := PlanPropagation(match, sfParticipants(), downstream)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.ElementsMatch(t, []string{"clara", "dmitri"}, plan.MemberIDs)
}

func TestPlanPropagationSkipsWhenNothingToPropagate(t *testing.T) {
	downstream := models.LeagueMatch{ID: "match-final", Status: models.MatchStatusScheduled}

	// Не олимпийский этап.
	match := completedEliminationMatch()
	match.Stage = models.StagePreliminary
	plan, err := PlanPropagation(match, sfParticipants(), downstream)
	require.NoError(t, err)
	assert.Nil(t, plan)

	// Нет связи вперёд (финал).
	match = completedEliminationMatch()
	match.NextMatchID = nil
	plan, err = PlanPropagation(match, sfParticipants(), downstream)
	require.NoError(t, err)
	assert.Nil(t, plan)

	// Нет победителя.
	match = completedEliminationMatch()
	match.Winner = nil
	plan, err = PlanPropagation(match, sfParticipants(), downstream)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestPlanPropagationRejectsCompletedDownstream(t *testing.T) {
	match := completedEliminationMatch()
	downstream := models.LeagueMatch{ID: "match-final", Status: models.MatchStatusCompleted}

	_, err := PlanPropagation(match, sfParticipants(), downstream)
	assert.ErrorIs(t, err, ErrDownstreamAlreadyCompleted)
}

func TestPlanPropagationIgnoresForeignParticipants(t *testing.T) {
	match := completedEliminationMatch()
	downstream := models.LeagueMatch{ID: "match-final", Status: models.MatchStatusScheduled}

	participants := append(sfParticipants(),
		models.MatchParticipant{MatchID: "match-sf2", MemberID: "eva", Team: models.SlotTeamA})

	plan, err := PlanPropagation(match, participants, downstream)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.ElementsMatch(t, []string{"anna", "boris"}, plan.MemberIDs)
}
