package brackets

import (
	"sort"

	"github.com/tennisclub/league-system/models"
)

// CompletedMatch описывает завершённый предварительный матч с уже разрешёнными
// составами команд. Подготовку из строк БД выполняет сервисный слой.
type CompletedMatch struct {
	GroupNumber int
	ScoreA      int
	ScoreB      int
	TeamA       []models.Member
	TeamB       []models.Member
}

// CalculateRankings сворачивает завершённые матчи в таблицу результатов
// по игрокам. Простая агрегация без итераций: результат не зависит от
// порядка матчей во входном списке.
//
// Ничья не даёт ни победы, ни поражения, но matches_played и очки
// засчитываются обеим командам.
//
// Сортировка: группа по возрастанию, затем победы, разница очков и
// набранные очки по убыванию.
func CalculateRankings(matches []CompletedMatch) []models.PlayerRanking {
	type key struct {
		memberID string
		group    int
	}

	stats := make(map[key]*models.PlayerRanking)

	credit := func(m models.Member, group, pointsFor, pointsAgainst int, won, lost bool) {
		k := key{memberID: m.ID, group: group}
		row, ok := stats[k]
		if !ok {
			row = &models.PlayerRanking{
				MemberID:    m.ID,
				PlayerName:  m.FullName,
				GroupNumber: group,
			}
			stats[k] = row
		}
		row.MatchesPlayed++
		row.PointsFor += pointsFor
		row.PointsAgainst += pointsAgainst
		if won {
			row.Wins++
		} else if lost {
			row.Losses++
		}
	}

	for _, match := range matches {
		teamAWon := match.ScoreA > match.ScoreB
		teamBWon := match.ScoreB > match.ScoreA

		for _, member := range match.TeamA {
			credit(member, match.GroupNumber, match.ScoreA, match.ScoreB, teamAWon, teamBWon)
		}
		for _, member := range match.TeamB {
			credit(member, match.GroupNumber, match.ScoreB, match.ScoreA, teamBWon, teamAWon)
		}
	}

	rankings := make([]models.PlayerRanking, 0, len(stats))
	for _, row := range stats {
		row.PointsDiff = row.PointsFor - row.PointsAgainst
		if row.MatchesPlayed > 0 {
			row.WinRate = float64(row.Wins) / float64(row.MatchesPlayed)
		}
		rankings = append(rankings, *row)
	}

	sort.Slice(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if a.GroupNumber != b.GroupNumber {
			return a.GroupNumber < b.GroupNumber
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.PointsDiff != b.PointsDiff {
			return a.PointsDiff > b.PointsDiff
		}
		if a.PointsFor != b.PointsFor {
			return a.PointsFor > b.PointsFor
		}
		// Стабильный порядок при полном равенстве показателей.
		return a.MemberID < b.MemberID
	})

	return rankings
}
