package rating

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseStrategy maps a configuration value onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case DayWeighted:
		return DayWeighted, nil
	case CumulativeException:
		return CumulativeException, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// Compute proposes new ratings for both teams of a decided match.
func Compute(policy Policy, team1, team2 TeamState, winnerID string, period int) (Outcome, error) {
	if team1.ID == team2.ID {
		return Outcome{}, ErrSameTeam
	}
	if winnerID != team1.ID && winnerID != team2.ID {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownWinner, winnerID)
	}

	winner, loser := team1, team2
	if winnerID == team2.ID {
		winner, loser = team2, team1
	}

	var (
		w, l      Result
		exception bool
	)
	switch policy.Strategy {
	case DayWeighted:
		if period < 1 {
			return Outcome{}, fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
		}
		w, l = dayWeighted(winner, loser, period)
	case CumulativeException:
		w, l, exception = cumulative(winner, loser, policy.ExceptionRule)
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, policy.Strategy)
	}

	out := Outcome{
		WinnerID:         winnerID,
		Strategy:         policy.Strategy,
		Gap:              math.Abs(team1.Points - team2.Points),
		ExceptionApplied: exception,
	}
	if winnerID == team1.ID {
		out.Team1, out.Team2 = w, l
	} else {
		out.Team1, out.Team2 = l, w
	}
	return out, nil
}

func dayWeighted(winner, loser TeamState, d int) (Result, Result) {
	days := float64(d)
	rawWinner := (winner.Points*days + loser.Points + WinBonus) / (days + 1)
	rawLoser := (loser.Points*days + winner.Points - WinBonus) / (days + 1)

	w := Result{Before: winner, After: winner, Delta: Round1(rawWinner - winner.Points)}
	w.After.Points = Round1(rawWinner)
	l := Result{Before: loser, After: loser, Delta: Round1(rawLoser - loser.Points)}
	l.After.Points = Round1(rawLoser)
	return w, l
}

func cumulative(winner, loser TeamState, exceptionRule bool) (Result, Result, bool) {
	gap := math.Abs(winner.Points - loser.Points)
	// The favourite winning is the expected outcome: nobody moves.
	exception := exceptionRule && gap > ExceptionGap && winner.Points > loser.Points

	w := Result{Before: winner, After: winner}
	l := Result{Before: loser, After: loser}
	if exception {
		return w, l, true
	}

	w.After = accumulate(winner, loser.Points+WinBonus)
	w.Delta = w.After.Points - winner.Points
	l.After = accumulate(loser, winner.Points-WinBonus)
	l.Delta = l.After.Points - loser.Points
	return w, l, false
}

func accumulate(team TeamState, earned float64) TeamState {
	team.PointsSum += earned
	team.GamesPlayed++
	team.Points = team.PointsSum / float64(team.GamesPlayed)
	return team
}
