package models

import "time"

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationScheduled ApplicationStatus = "scheduled"
)

type LeagueApplication struct {
	ID        string            `json:"id" db:"id"`
	LeagueID  string            `json:"league_id" db:"league_id"`
	MemberID  string            `json:"member_id" db:"member_id"`
	Status    ApplicationStatus `json:"status" db:"status"`
	AppliedAt time.Time         `json:"applied_at" db:"applied_at"`

	Member *Member `json:"member,omitempty" db:"-"`
}
