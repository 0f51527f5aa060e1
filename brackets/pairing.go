package brackets

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tennisclub/league-system/models"
)

var ErrInsufficientPlayers = errors.New("at least 4 players are required for doubles")

// maxPairingAttempts ограничивает рандомизированный перебор; гарантирует завершение.
const maxPairingAttempts = 1000

// DefaultMatchesPerPlayer задаёт, сколько матчей играет каждый игрок в группе.
const DefaultMatchesPerPlayer = 3

type Team struct {
	P1 models.Member
	P2 models.Member
}

// Label возвращает отображаемое имя команды для полей player_a/player_b.
func (t Team) Label() string {
	return fmt.Sprintf("%s, %s", t.P1.FullName, t.P2.FullName)
}

type Pairing struct {
	TeamA Team
	TeamB Team
}

// PairingResult содержит найденные матчи и целевое количество.
// len(Matches) может быть меньше Target: поиск с ограниченным числом
// попыток завершается и с недобором, это не ошибка: вызывающая сторона
// сама решает, показывать ли недобор пользователю.
type PairingResult struct {
	Matches []Pairing
	Target  int
}

// pairingState хранит историю партнёрств и счётчики сыгранных матчей,
// протаскивается через цикл поиска явно.
type pairingState struct {
	partners map[string]map[string]bool
	played   map[string]int
}

func newPairingState() *pairingState {
	return &pairingState{
		partners: make(map[string]map[string]bool),
		played:   make(map[string]int),
	}
}

func (s *pairingState) havePartnered(a, b string) bool {
	return s.partners[a][b]
}

func (s *pairingState) markPartners(a, b string) {
	if s.partners[a] == nil {
		s.partners[a] = make(map[string]bool)
	}
	if s.partners[b] == nil {
		s.partners[b] = make(map[string]bool)
	}
	s.partners[a][b] = true
	s.partners[b][a] = true
}

func (s *pairingState) record(p Pairing) {
	s.markPartners(p.TeamA.P1.ID, p.TeamA.P2.ID)
	s.markPartners(p.TeamB.P1.ID, p.TeamB.P2.ID)
	for _, id := range []string{p.TeamA.P1.ID, p.TeamA.P2.ID, p.TeamB.P1.ID, p.TeamB.P2.ID} {
		s.played[id]++
	}
}

// GeneratePreliminaryPairs собирает парные матчи внутри одной группы так,
// чтобы каждый игрок сыграл matchesPerPlayer матчей и ни одна пара
// партнёров не повторилась. Жадный рандомизированный поиск: на каждой
// попытке перемешиваем ещё не доигравших игроков и берём первую
// допустимую четвёрку в порядке перебора.
func GeneratePreliminaryPairs(members []models.Member, matchesPerPlayer int, rng *rand.Rand) (PairingResult, error) {
	if len(members) < 4 {
		return PairingResult{}, ErrInsufficientPlayers
	}
	if matchesPerPlayer < 1 {
		matchesPerPlayer = DefaultMatchesPerPlayer
	}

	target := len(members) * matchesPerPlayer / 4
	state := newPairingState()
	matches := make([]Pairing, 0, target)

	for attempt := 0; attempt < maxPairingAttempts && len(matches) < target; attempt++ {
		available := make([]models.Member, 0, len(members))
		for _, m := range members {
			if state.played[m.ID] < matchesPerPlayer {
				available = append(available, m)
			}
		}
		if len(available) < 4 {
			break
		}

		rng.Shuffle(len(available), func(i, j int) {
			available[i], available[j] = available[j], available[i]
		})

		if pairing, ok := findPairing(available, state); ok {
			state.record(pairing)
			matches = append(matches, pairing)
		}
	}

	return PairingResult{Matches: matches, Target: target}, nil
}

// findPairing сканирует четвёрки перемешанного списка и возвращает первую,
// в которой обе пары партнёров ещё не играли вместе. Индексы строго
// возрастают, поэтому пересечение составов команд исключено построением.
func findPairing(available []models.Member, state *pairingState) (Pairing, bool) {
	n := len(available)
	for i := 0; i < n-3; i++ {
		for j := i + 1; j < n-2; j++ {
			if state.havePartnered(available[i].ID, available[j].ID) {
				continue
			}
			for k := j + 1; k < n-1; k++ {
				for l := k + 1; l < n; l++ {
					if state.havePartnered(available[k].ID, available[l].ID) {
						continue
					}
					return Pairing{
						TeamA: Team{P1: available[i], P2: available[j]},
						TeamB: Team{P1: available[k], P2: available[l]},
					}, true
				}
			}
		}
	}
	return Pairing{}, false
}
