package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// MatchStage различает предварительный, рейтинговый и олимпийский этапы,
// а также нокаут-турнир с ручным продвижением раундов.
type MatchStage string

const (
	StagePreliminary MatchStage = "preliminary"
	StageRanked      MatchStage = "ranked"
	StageElimination MatchStage = "elimination"
	StageKnockout    MatchStage = "knockout"
)

type TeamSlot string

const (
	SlotTeamA TeamSlot = "team_a"
	SlotTeamB TeamSlot = "team_b"
)

// LeagueMatch описывает парный матч лиги. PlayerA/PlayerB хранят отображаемые
// названия команд ("Имя1, Имя2") и оставлены для обратной совместимости;
// источником истины по составам служат записи MatchParticipant.
type LeagueMatch struct {
	ID            string      `json:"id" db:"id"`
	LeagueID      string      `json:"league_id" db:"league_id"`
	Round         int         `json:"round" db:"round"`
	GroupNumber   int         `json:"group_number" db:"group_number"`
	Stage         MatchStage  `json:"stage" db:"stage"`
	PlayerA       string      `json:"player_a" db:"player_a"`
	PlayerB       string      `json:"player_b" db:"player_b"`
	Court         string      `json:"court" db:"court"`
	ScheduledAt   time.Time   `json:"scheduled_at" db:"scheduled_at"`
	Status        MatchStatus `json:"status" db:"status"`
	ScoreA        *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB        *int        `json:"score_b,omitempty" db:"score_b"`
	Winner        *string     `json:"winner,omitempty" db:"winner"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	NextMatchID   *string     `json:"next_match_id,omitempty" db:"next_match_id"`
	NextMatchSlot *TeamSlot   `json:"next_match_slot,omitempty" db:"next_match_slot"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`

	Participants []MatchParticipant `json:"participants,omitempty" db:"-"`
}
