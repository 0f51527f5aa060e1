package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tennisclub/league-system/models"
)

func team(ids ...string) []models.Member {
	members := make([]models.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, models.Member{ID: id, FullName: "Player " + id})
	}
	return members
}

func TestCalculateRankingsCreditsBothTeams(t *testing.T) {
	matches := []CompletedMatch{
		{GroupNumber: 1, ScoreA: 6, ScoreB: 3, TeamA: team("a", "b"), TeamB: team("c", "d")},
	}

	rankings := CalculateRankings(matches)
	require.Len(t, rankings, 4)

	byID := make(map[string]models.PlayerRanking)
	for _, row := range rankings {
		byID[row.MemberID] = row
	}

	assert.Equal(t, 1, byID["a"].Wins)
	assert.Equal(t, 0, byID["a"].Losses)
	assert.Equal(t, 6, byID["a"].PointsFor)
	assert.Equal(t, 3, byID["a"].PointsAgainst)
	assert.Equal(t, 3, byID["a"].PointsDiff)
	assert.Equal(t, 1.0, byID["a"].WinRate)

	assert.Equal(t, 0, byID["c"].Wins)
	assert.Equal(t, 1, byID["c"].Losses)
	assert.Equal(t, -3, byID["c"].PointsDiff)
	assert.Equal(t, 0.0, byID["c"].WinRate)
}

func TestCalculateRankingsTieCountsAsPlayedOnly(t *testing.T) {
	matches := []CompletedMatch{
		{GroupNumber: 1, ScoreA: 4, ScoreB: 4, TeamA: team("a", "b"), TeamB: team("c", "d")},
	}

	rankings := CalculateRankings(matches)
	require.Len(t, rankings, 4)

	for _, row := range rankings {
		assert.Equal(t, 0, row.Wins)
		assert.Equal(t, 0, row.Losses)
		assert.Equal(t, 1, row.MatchesPlayed)
		assert.Equal(t, 4, row.PointsFor)
		assert.Equal(t, 4, row.PointsAgainst)
	}
}

func TestCalculateRankingsSortOrder(t *testing.T) {
	matches := []CompletedMatch{
		// Группа 2: у пары e/f победа.
		{GroupNumber: 2, ScoreA: 6, ScoreB: 1, TeamA: team("e", "f"), TeamB: team("g", "h")},
		// Группа 1: a/b выигрывают дважды, c/d один раз с меньшей разницей.
		{GroupNumber: 1, ScoreA: 6, ScoreB: 2, TeamA: team("a", "b"), TeamB: team("c", "d")},
		{GroupNumber: 1, ScoreA: 6, ScoreB: 0, TeamA: team("a", "b"), TeamB: team("c", "d")},
		{GroupNumber: 1, ScoreA: 2, ScoreB: 6, TeamA: team("a", "b"), TeamB: team("c", "d")},
	}

	rankings := CalculateRankings(matches)
	require.Len(t, rankings, 8)

	// Сначала вся группа 1, затем группа 2.
	for i := 0; i < 4; i++ {
		assert.Equal(t, 1, rankings[i].GroupNumber)
	}
	for i := 4; i < 8; i++ {
		assert.Equal(t, 2, rankings[i].GroupNumber)
	}

	// Внутри группы 1 лидируют a/b: 2 победы против 1.
	assert.Equal(t, 2, rankings[0].Wins)
	assert.Equal(t, 2, rankings[1].Wins)
	assert.Equal(t, 1, rankings[2].Wins)
	assert.Equal(t, 1, rankings[3].Wins)
}

func TestCalculateRankingsOrderIndependent(t *testing.T) {
	matches := []CompletedMatch{
		{GroupNumber: 1, ScoreA: 6, ScoreB: 2, TeamA: team("a", "b"), TeamB: team("c", "d")},
		{GroupNumber: 1, ScoreA: 3, ScoreB: 6, TeamA: team("a", "c"), TeamB: team("b", "d")},
		{GroupNumber: 1, ScoreA: 5, ScoreB: 5, TeamA: team("a", "d"), TeamB: team("b", "c")},
	}
	reversed := []CompletedMatch{matches[2], matches[1], matches[0]}

	assert.Equal(t, CalculateRankings(matches), CalculateRankings(reversed))
}

func TestCalculateRankingsSeparatesGroupsForSamePlayer(t *testing.T) {
	// Один и тот же игрок в разных группах агрегируется раздельно.
	matches := []CompletedMatch{
		{GroupNumber: 1, ScoreA: 6, ScoreB: 0, TeamA: team("a", "b"), TeamB: team("c", "d")},
		{GroupNumber: 2, ScoreA: 0, ScoreB: 6, TeamA: team("a", "e"), TeamB: team("f", "g")},
	}

	rankings := CalculateRankings(matches)

	var rowsForA []models.PlayerRanking
	for _, row := range rankings {
		if row.MemberID == "a" {
			rowsForA = append(rowsForA, row)
		}
	}
	require.Len(t, rowsForA, 2)
	assert.NotEqual(t, rowsForA[0].GroupNumber, rowsForA[1].GroupNumber)
}

func TestCalculateRankingsEmptyInput(t *testing.T) {
	assert.Empty(t, CalculateRankings(nil))
}
