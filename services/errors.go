package services

import (
	"errors"

	"github.com/Dosada05/pickem-league/scoring"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Ошибки конфликтов
	ErrUserEmailConflict       = errors.New("email address is already in use")
	ErrUserNicknameConflict    = errors.New("nickname is already in use")
	ErrLeagueNameConflict      = errors.New("league name already exists for this season")
	ErrAlreadyLeagueMember     = errors.New("user is already a member of this league")
	ErrCompetitionWeekConflict = errors.New("league already has a competition for this week")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrNotLeagueMember      = errors.New("user is not a member of this league")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrLeagueNotFound      = errors.New("league not found")
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrGameNotFound        = errors.New("game not found")
	ErrPickNotFound        = errors.New("pick not found")

	// Соревнования и матчи
	ErrCompetitionInvalidStatus           = errors.New("invalid competition status provided")
	ErrCompetitionInvalidStatusTransition = errors.New("invalid competition status transition")
	ErrCompetitionLocked                  = errors.New("competition is locked for picks")
	ErrGameTeamsMustDiffer                = errors.New("home and away teams must differ")
	ErrGameInvalidStatus                  = errors.New("invalid game status provided")
	ErrGameScoresRequired                 = errors.New("final game requires both scores")
	ErrGameScoreNegative                  = errors.New("game score cannot be negative")

	// Пики
	ErrPickInvalidConfidence = errors.New("confidence must be between 1 and 20")
	ErrPickInvalidTeam       = errors.New("picked team does not play in this game")
	ErrGameAlreadyStarted    = errors.New("game has already started")

	// Расчёт очков
	ErrInconsistentState = scoring.ErrInconsistentState
	ErrCalculationBusy   = errors.New("another calculation for this scope is still running")
)
