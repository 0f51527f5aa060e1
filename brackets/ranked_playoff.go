package brackets

import (
	"errors"

	"github.com/tennisclub/league-system/models"
)

var (
	ErrInsufficientRankedPlayers = errors.New("not enough ranked players for the requested matches")
	ErrInvalidMatchCount         = errors.New("num_matches must be 1, 2, or 4")
)

// GenerateRankedPlayoffs строит кросс-групповые матчи из двух групп с
// наименьшими номерами. Входные списки уже отсортированы от лучшего к
// худшему. Матч i сводит ранговую полосу [2i, 2i+1] первой группы против
// той же полосы второй.
func GenerateRankedPlayoffs(group1, group2 []models.Member, numMatches int) ([]Pairing, error) {
	switch numMatches {
	case 1, 2, 4:
	default:
		return nil, ErrInvalidMatchCount
	}

	if len(group1) < numMatches*2 || len(group2) < numMatches*2 {
		return nil, ErrInsufficientRankedPlayers
	}

	matches := make([]Pairing, 0, numMatches)
	for i := 0; i < numMatches; i++ {
		rank := i * 2
		matches = append(matches, Pairing{
			TeamA: Team{P1: group1[rank], P2: group1[rank+1]},
			TeamB: Team{P1: group2[rank], P2: group2[rank+1]},
		})
	}

	return matches, nil
}
