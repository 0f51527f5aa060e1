package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурсы
	ErrLeagueNotFound      = errors.New("league not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrApplicationNotFound = errors.New("league application not found")

	// Аутентификация и авторизация
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current member")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters")

	// Валидация и бизнес-правила
	ErrLeagueNameRequired      = errors.New("league name is required")
	ErrLeagueInvalidCapacity   = errors.New("league max participants must be positive")
	ErrPreliminaryIncomplete   = errors.New("all preliminary matches must be completed first")
	ErrInvalidFinalStageMode   = errors.New("mode must be ranked_play or elimination")
	ErrMatchCountRequired      = errors.New("num_matches is required for ranked_play mode")
	ErrTwoGroupsRequired       = errors.New("at least two groups are required for ranked play-offs")
	ErrNoApplicants            = errors.New("no applicants available for bracket generation")
	ErrInvalidMemberRole       = errors.New("role must be member or admin")
	ErrNoCompletedMatches      = errors.New("no completed preliminary matches found")
	ErrNoQualifiedPlayers      = errors.New("not enough qualified players for tournament")
	ErrInvalidAdvanceRound     = errors.New("current_round must be at least 2")
	ErrNoCompletedRoundMatches = errors.New("no completed matches found for the given round")
	ErrNotEnoughWinners        = errors.New("not enough winners to advance to next round")

	// Конфликты
	ErrAlreadyApplied             = errors.New("member already applied to this league")
	ErrLeagueFull                 = errors.New("league capacity reached")
	ErrFinalStageAlreadyGenerated = errors.New("final stage already generated")
	ErrKnockoutAlreadyExists      = errors.New("tournament bracket already exists")
	ErrRoundAlreadyExists         = errors.New("next round matches already exist")
	ErrBracketAlreadyGenerated    = errors.New("cannot cancel application after bracket has been generated")
)
