package models

import "time"

// FinalStageMode определяет формат пост-группового этапа лиги.
type FinalStageMode string

const (
	FinalStageRankedPlay  FinalStageMode = "ranked_play"
	FinalStageElimination FinalStageMode = "elimination"
)

type League struct {
	ID                  string          `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	SurfaceType         string          `json:"surface_type" db:"surface_type"`
	EntryFee            int             `json:"entry_fee" db:"entry_fee"`
	MaxParticipants     int             `json:"max_participants" db:"max_participants"`
	AutoGenerateBracket bool            `json:"auto_generate_bracket" db:"auto_generate_bracket"`
	GroupsCount         *int            `json:"groups_count,omitempty" db:"groups_count"`
	CourtsCount         *int            `json:"courts_count,omitempty" db:"courts_count"`
	FinalStageMode      *FinalStageMode `json:"final_stage_mode,omitempty" db:"final_stage_mode"`
	BracketGeneratedAt  *time.Time      `json:"bracket_generated_at,omitempty" db:"bracket_generated_at"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Applications []LeagueApplication `json:"applications,omitempty" db:"-"`
	Matches      []LeagueMatch       `json:"matches,omitempty" db:"-"`
}
