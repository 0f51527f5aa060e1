package brackets

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePreliminaryPairsRejectsSmallGroup(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := GeneratePreliminaryPairs(makeMembers(3), 3, rng)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestGeneratePreliminaryPairsFourPlayers(t *testing.T) {
	// 4 игрока по 3 матча: единственное решение состоит из всех трёх
	// разбиений на пары, каждый играет с каждым ровно один раз в
	// качестве партнёра.
	rng := rand.New(rand.NewSource(42))
	members := makeMembers(4)

	result, err := GeneratePreliminaryPairs(members, 3, rng)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Target)
	require.Len(t, result.Matches, 3)

	played := make(map[string]int)
	partners := make(map[string]map[string]int)
	countPartners := func(team Team) {
		for _, id := range []string{team.P1.ID, team.P2.ID} {
			played[id]++
		}
		if partners[team.P1.ID] == nil {
			partners[team.P1.ID] = make(map[string]int)
		}
		partners[team.P1.ID][team.P2.ID]++
	}
	for _, match := range result.Matches {
		countPartners(match.TeamA)
		countPartners(match.TeamB)
	}

	for _, m := range members {
		assert.Equal(t, 3, played[m.ID], "player %s must play exactly 3 matches", m.ID)
	}
	for _, counts := range partners {
		for other, n := range counts {
			assert.Equal(t, 1, n, "partnership with %s must not repeat", other)
		}
	}
}

func TestGeneratePreliminaryPairsNoRepeatedPartners(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	result, err := GeneratePreliminaryPairs(makeMembers(8), 3, rng)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Target)

	seen := make(map[[2]string]bool)
	pairKey := func(team Team) [2]string {
		a, b := team.P1.ID, team.P2.ID
		if a > b {
			a, b = b, a
		}
		return [2]string{a, b}
	}
	for _, match := range result.Matches {
		for _, team := range []Team{match.TeamA, match.TeamB} {
			key := pairKey(team)
			assert.False(t, seen[key], "partners %v must not play together twice", key)
			seen[key] = true
		}
	}
}

func TestGeneratePreliminaryPairsTeamsNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	result, err := GeneratePreliminaryPairs(makeMembers(12), 3, rng)
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)

	for _, match := range result.Matches {
		ids := map[string]bool{
			match.TeamA.P1.ID: true,
			match.TeamA.P2.ID: true,
			match.TeamB.P1.ID: true,
			match.TeamB.P2.ID: true,
		}
		assert.Len(t, ids, 4, "a match must involve 4 distinct players")
	}
}

func TestGeneratePreliminaryPairsRespectsMatchLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	result, err := GeneratePreliminaryPairs(makeMembers(10), 2, rng)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Target)

	played := make(map[string]int)
	for _, match := range result.Matches {
		for _, id := range []string{match.TeamA.P1.ID, match.TeamA.P2.ID, match.TeamB.P1.ID, match.TeamB.P2.ID} {
			played[id]++
		}
	}
	for id, n := range played {
		assert.LessOrEqual(t, n, 2, "player %s exceeded the per-player match limit", id)
	}
}

func TestGeneratePreliminaryPairsDefaultsMatchCount(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	result, err := GeneratePreliminaryPairs(makeMembers(8), 0, rng)
	require.NoError(t, err)
	assert.Equal(t, 8*DefaultMatchesPerPlayer/4, result.Target)
}

func TestTeamLabel(t *testing.T) {
	members := makeMembers(2)
	team := Team{P1: members[0], P2: members[1]}
	assert.Equal(t, "Player 00, Player 01", team.Label())
}
