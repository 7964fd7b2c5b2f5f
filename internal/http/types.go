package http

import (
	"net/http"

	"github.com/mauv0809/cricket-ladder/internal/config"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/notifier"
	"github.com/mauv0809/cricket-ladder/internal/processor"
)

type Server struct {
	Engine         *league.Engine
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux
}

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type addTeamRequest struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

type reorderRequest struct {
	TeamIDs []string `json:"team_ids"`
}

type gamesPlayedRequest struct {
	GamesPlayed int `json:"games_played"`
}

type addMatchRequest struct {
	Team1ID string `json:"team1_id"`
	Team2ID string `json:"team2_id"`
}

type winnerRequest struct {
	TeamID string `json:"team_id"`
}

type navigateRequest struct {
	Direction int `json:"direction"`
}

type setPeriodRequest struct {
	Index int `json:"index"`
}

type finalizeRequest struct {
	Date string `json:"date"`
}

type finalizeResponse struct {
	Summary league.PeriodSummary `json:"summary"`
	View    league.View          `json:"view"`
}

// pushEnvelope is the body Google Pub/Sub sends to push subscriptions.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}
