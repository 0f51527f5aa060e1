package brackets

import (
	"errors"
	"time"

	"github.com/tennisclub/league-system/models"
)

var (
	ErrMatchAlreadyCompleted      = errors.New("match is already completed")
	ErrTieNotAllowed              = errors.New("elimination matches cannot end in a tie")
	ErrDownstreamAlreadyCompleted = errors.New("dependent match already completed; cannot update upstream result")
)

// ApplyScore переводит матч из scheduled в completed. Единственный
// разрешённый переход: повторная подача счёта по завершённому матчу
// отклоняется, и матч при этом не изменяется.
//
// Победитель определяется сравнением счёта, ничья оставляет Winner
// пустым; для матчей олимпийского этапа ничья запрещена.
func ApplyScore(match *models.LeagueMatch, scoreA, scoreB int, now time.Time) error {
	if match.Status == models.MatchStatusCompleted {
		return ErrMatchAlreadyCompleted
	}
	if match.Stage == models.StageElimination && scoreA == scoreB {
		return ErrTieNotAllowed
	}

	match.ScoreA = &scoreA
	match.ScoreB = &scoreB
	match.Status = models.MatchStatusCompleted
	match.CompletedAt = &now

	switch {
	case scoreA > scoreB:
		winner := match.PlayerA
		match.Winner = &winner
	case scoreB > scoreA:
		winner := match.PlayerB
		match.Winner = &winner
	default:
		match.Winner = nil
	}

	return nil
}

// WinningSlot определяет победившую сторону по счёту, не по текстовым
// названиям команд: совпадающие отображаемые имена не путают продвижение.
func WinningSlot(match models.LeagueMatch) (models.TeamSlot, bool) {
	if match.ScoreA == nil || match.ScoreB == nil {
		return "", false
	}
	switch {
	case *match.ScoreA > *match.ScoreB:
		return models.SlotTeamA, true
	case *match.ScoreB > *match.ScoreA:
		return models.SlotTeamB, true
	default:
		return "", false
	}
}

// Propagation описывает замену одного слота нижестоящего матча:
// новое отображаемое имя и двое победителей, которые займут слот.
// Применение выполняет хранилище, и оно обязано быть атомарным: участники
// слота заменяются целиком, противоположный слот не трогается.
type Propagation struct {
	MatchID     string
	Slot        models.TeamSlot
	WinnerLabel string
	MemberIDs   []string
}

// PlanPropagation вычисляет продвижение победителя завершённого матча
// олимпийского этапа в слот следующего матча. Возвращает nil без ошибки,
// если продвигать нечего (нет связи вперёд, нет победителя, не тот этап).
func PlanPropagation(match models.LeagueMatch, participants []models.MatchParticipant, downstream models.LeagueMatch) (*Propagation, error) {
	if match.Stage != models.StageElimination || match.NextMatchID == nil || match.NextMatchSlot == nil {
		return nil, nil
	}

	winnerSlot, ok := WinningSlot(match)
	if !ok || match.Winner == nil {
		return nil, nil
	}

	if downstream.Status == models.MatchStatusCompleted {
		return nil, ErrDownstreamAlreadyCompleted
	}

	memberIDs := make([]string, 0, 2)
	for _, p := range participants {
		if p.MatchID == match.ID && p.Team == winnerSlot {
			memberIDs = append(memberIDs, p.MemberID)
		}
	}

	return &Propagation{
		MatchID:     downstream.ID,
		Slot:        *match.NextMatchSlot,
		WinnerLabel: *match.Winner,
		MemberIDs:   memberIDs,
	}, nil
}
