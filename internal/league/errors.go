package league

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrReadOnlyPeriod = errors.New("period is read-only")
	ErrDuplicateMatch = errors.New("these teams are already matched in this period")
	// ErrIntegrity means the session references something that does not exist.
	ErrIntegrity = errors.New("league state is inconsistent")
	// ErrCorruptState is returned by stores when persisted data cannot be decoded.
	ErrCorruptState = errors.New("stored league state is corrupt")
)

var (
	ErrEmptyName          = fmt.Errorf("%w: team name cannot be empty", ErrValidation)
	ErrDuplicateName      = fmt.Errorf("%w: a team with this name already exists", ErrValidation)
	ErrInvalidPoints      = fmt.Errorf("%w: points must be a finite number", ErrValidation)
	ErrInvalidSelection   = fmt.Errorf("%w: select two different, existing teams", ErrValidation)
	ErrInvalidWinner      = fmt.Errorf("%w: winner must be one of the two teams in the match", ErrValidation)
	ErrMissingDate        = fmt.Errorf("%w: a date is required to finalize the period", ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: date must be formatted YYYY-MM-DD", ErrValidation)
	ErrNothingToFinalize  = fmt.Errorf("%w: select at least one winner before finalizing", ErrValidation)
	ErrTeamAlreadyPaired  = fmt.Errorf("%w: team is already paired in this period", ErrValidation)
	ErrAlreadyApplied     = fmt.Errorf("%w: match result has already been applied", ErrValidation)
	ErrInvalidDirection   = fmt.Errorf("%w: direction must be -1 or +1", ErrValidation)
	ErrInvalidGamesPlayed = fmt.Errorf("%w: games played cannot be negative", ErrValidation)
	ErrInvalidPeriodIndex = fmt.Errorf("%w: period index must be at least 1", ErrValidation)
	ErrNoWinner           = fmt.Errorf("%w: no winner selected for this match", ErrValidation)

	ErrTeamNotFound  = fmt.Errorf("%w: team", ErrNotFound)
	ErrMatchNotFound = fmt.Errorf("%w: match", ErrNotFound)
)

// Code maps an error onto the short code reported to clients and metrics.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyName):
		return "empty_name"
	case errors.Is(err, ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, ErrInvalidPoints):
		return "invalid_points"
	case errors.Is(err, ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, ErrInvalidWinner):
		return "invalid_winner"
	case errors.Is(err, ErrMissingDate):
		return "missing_date"
	case errors.Is(err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, ErrNothingToFinalize):
		return "nothing_to_finalize"
	case errors.Is(err, ErrTeamAlreadyPaired):
		return "team_already_paired"
	case errors.Is(err, ErrAlreadyApplied):
		return "already_applied"
	case errors.Is(err, ErrInvalidDirection):
		return "invalid_direction"
	case errors.Is(err, ErrInvalidGamesPlayed):
		return "invalid_games_played"
	case errors.Is(err, ErrInvalidPeriodIndex):
		return "invalid_period_index"
	case errors.Is(err, ErrNoWinner):
		return "no_winner"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTeamNotFound):
		return "team_not_found"
	case errors.Is(err, ErrMatchNotFound):
		return "match_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrReadOnlyPeriod):
		return "read_only_period"
	case errors.Is(err, ErrDuplicateMatch):
		return "duplicate_match"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	}
	return "internal"
}
