package models

// PlayerRanking представляет производную строку таблицы результатов, в БД не хранится.
// MemberID идентифицирует игрока; PlayerName только для отображения.
type PlayerRanking struct {
	MemberID      string  `json:"member_id"`
	PlayerName    string  `json:"player_name"`
	GroupNumber   int     `json:"group_number"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	PointsFor     int     `json:"points_for"`
	PointsAgainst int     `json:"points_against"`
	PointsDiff    int     `json:"points_diff"`
	MatchesPlayed int     `json:"matches_played"`
	WinRate       float64 `json:"win_rate"`
}
