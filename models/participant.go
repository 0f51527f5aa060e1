package models

import "time"

// MatchParticipant связывает матч с игроком: 4 записи на парный матч,
// по одной на сторону в одиночном нокауте.
type MatchParticipant struct {
	ID        string    `json:"id" db:"id"`
	MatchID   string    `json:"match_id" db:"match_id"`
	MemberID  string    `json:"member_id" db:"member_id"`
	Team      TeamSlot  `json:"team" db:"team"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
