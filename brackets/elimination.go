package brackets

import (
	"fmt"
	"math/rand"

	"github.com/tennisclub/league-system/models"
)

const eliminationPlayerCount = 16

// FinalIndex помечает матч без следующего матча (финал).
const FinalIndex = -1

// EliminationMatch представляет узел олимпийской сетки в арене из 7 элементов:
// индексы 0-3 четвертьфиналы, 4-5 полуфиналы, 6 финал. Связь вперёд
// задаётся индексом в этом же срезе, а не идентификатором строки БД,
// поэтому висячих ссылок при перегенерации не бывает.
type EliminationMatch struct {
	Round    int
	Position int

	// TeamA/TeamB равны nil для заготовок (полуфиналы, финал);
	// составы туда проставит продвижение победителей.
	TeamA *Team
	TeamB *Team

	LabelA string
	LabelB string

	NextIndex int
	NextSlot  models.TeamSlot
}

// BuildEliminationBracket сеет олимпийскую сетку на 8 команд: берёт
// верхние 16 игроков сводного рейтинга, склеивает соседей в команды,
// случайно перемешивает команды и сводит их в 4 четвертьфинала.
// Полуфиналы и финал создаются заготовками сразу, чтобы связи вперёд
// были известны в момент создания четвертьфиналов, и хранилищу остаётся
// записать их от финала к четвертьфиналам без второго прохода.
func BuildEliminationBracket(ranked []models.Member, rng *rand.Rand) ([]EliminationMatch, error) {
	if len(ranked) < eliminationPlayerCount {
		return nil, ErrInsufficientRankedPlayers
	}

	teams := make([]Team, 0, 8)
	for i := 0; i < eliminationPlayerCount; i += 2 {
		teams = append(teams, Team{P1: ranked[i], P2: ranked[i+1]})
	}

	rng.Shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})

	bracket := make([]EliminationMatch, 0, 7)

	for qf := 0; qf < 4; qf++ {
		teamA := teams[qf*2]
		teamB := teams[qf*2+1]
		slot := models.SlotTeamA
		if qf%2 == 1 {
			slot = models.SlotTeamB
		}
		bracket = append(bracket, EliminationMatch{
			Round:     2,
			Position:  qf + 1,
			TeamA:     &teamA,
			TeamB:     &teamB,
			LabelA:    teamA.Label(),
			LabelB:    teamB.Label(),
			NextIndex: 4 + qf/2,
			NextSlot:  slot,
		})
	}

	for sf := 0; sf < 2; sf++ {
		slot := models.SlotTeamA
		if sf == 1 {
			slot = models.SlotTeamB
		}
		bracket = append(bracket, EliminationMatch{
			Round:     3,
			Position:  sf + 1,
			LabelA:    fmt.Sprintf("QF%d winner", sf*2+1),
			LabelB:    fmt.Sprintf("QF%d winner", sf*2+2),
			NextIndex: 6,
			NextSlot:  slot,
		})
	}

	bracket = append(bracket, EliminationMatch{
		Round:     4,
		Position:  1,
		LabelA:    "SF1 winner",
		LabelB:    "SF2 winner",
		NextIndex: FinalIndex,
	})

	return bracket, nil
}
