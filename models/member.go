package models

import "time"

type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
)

// MemberLevel задаёт уровень игры, выбирается при регистрации.
type MemberLevel string

const (
	LevelBeginner     MemberLevel = "beginner"
	LevelIntermediate MemberLevel = "intermediate"
	LevelAdvanced     MemberLevel = "advanced"
)

type Member struct {
	ID           string      `json:"id" db:"id"`
	FullName     string      `json:"full_name" db:"full_name"`
	Email        string      `json:"email" db:"email"`
	Level        MemberLevel `json:"level" db:"level"`
	Role         MemberRole  `json:"role" db:"role"`
	PasswordHash string      `json:"-" db:"password_hash"`
	JoinedAt     time.Time   `json:"joined_at" db:"joined_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
