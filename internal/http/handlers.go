package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, league.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, league.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, league.ErrReadOnlyPeriod), errors.Is(err, league.ErrDuplicateMatch):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Code: league.Code(err)}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		resp.Error = "internal error"
	}
	respondJSON(w, status, resp)
}

// decodeBody reads a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Code: "invalid_body"})
		return false
	}
	return true
}

// respondView answers a successful mutation with the updated read model.
func (s *Server) respondView(w http.ResponseWriter, status int, err error) {
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, status, s.Engine.View())
}

func (s *Server) StateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, s.Engine.View())
	}
}

func (s *Server) ListTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams := slices.Collect(s.Engine.ListTeams())
		if teams == nil {
			teams = []league.Team{}
		}
		respondJSON(w, http.StatusOK, teams)
	}
}

func (s *Server) AddTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addTeamRequest
		if !decodeBody(w, r, &req) {
			return
		}
		_, err := s.Engine.AddTeam(r.Context(), req.Name, req.Points)
		s.respondView(w, http.StatusCreated, err)
	}
}

func (s *Server) DeleteTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondView(w, http.StatusOK, s.Engine.DeleteTeam(r.Context(), r.PathValue("id")))
	}
}

func (s *Server) ReorderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.respondView(w, http.StatusOK, s.Engine.Reorder(r.Context(), req.TeamIDs))
	}
}

func (s *Server) GamesPlayedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gamesPlayedRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.respondView(w, http.StatusOK, s.Engine.UpdateGlobalGamesPlayed(r.Context(), req.GamesPlayed))
	}
}

func (s *Server) AutoScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := s.Engine.AutoSchedule(r.Context())
		s.respondView(w, http.StatusOK, err)
	}
}

func (s *Server) AddMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addMatchRequest
		if !decodeBody(w, r, &req) {
			return
		}
		_, err := s.Engine.AddMatch(r.Context(), req.Team1ID, req.Team2ID)
		s.respondView(w, http.StatusCreated, err)
	}
}

func (s *Server) RemoveMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondView(w, http.StatusOK, s.Engine.RemoveMatch(r.Context(), r.PathValue("id")))
	}
}

func (s *Server) SelectWinnerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req winnerRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.respondView(w, http.StatusOK, s.Engine.SelectWinner(r.Context(), r.PathValue("id"), req.TeamID))
	}
}

func (s *Server) PredictHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := s.Engine.Predict(r.PathValue("id"), r.URL.Query().Get("winner"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func (s *Server) NavigateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.respondView(w, http.StatusOK, s.Engine.Navigate(r.Context(), req.Direction))
	}
}

func (s *Server) SetPeriodHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setPeriodRequest
		if !decodeBody(w, r, &req) {
			return
		}
		s.respondView(w, http.StatusOK, s.Engine.SetPeriodIndex(r.Context(), req.Index))
	}
}

func (s *Server) FinalizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req finalizeRequest
		if !decodeBody(w, r, &req) {
			return
		}
		summary, err := s.Engine.Finalize(r.Context(), req.Date)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, finalizeResponse{Summary: summary, View: s.Engine.View()})
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings := s.Engine.Leaderboard()
		if standings == nil {
			standings = []league.Standing{}
		}
		respondJSON(w, http.StatusOK, standings)
	}
}

func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var entries []league.HistoryEntry
		if teamID := r.URL.Query().Get("team_id"); teamID != "" {
			entries = s.Engine.TeamHistory(teamID)
		} else {
			entries = s.Engine.History()
		}
		if entries == nil {
			entries = []league.HistoryEntry{}
		}
		respondJSON(w, http.StatusOK, entries)
	}
}

// PushHandler receives Pub/Sub push deliveries for one topic.
func (s *Server) PushHandler(topic pubsub.EventType) http.HandlerFunc {
	op := "push_" + string(topic)
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncOperation(op)
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			s.Metrics.IncRejection(op, "unreadable_body")
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received push message", "topic", topic, "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			s.Metrics.IncRejection(op, "invalid_envelope")
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			s.Metrics.IncRejection(op, "invalid_base64")
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		if err := s.Processor.HandleEvent(topic, rawData, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to handle push message", "topic", topic, "message_id", envelope.Message.MessageID, "error", err)
			s.Metrics.IncRejection(op, "processing_failed")
			http.Error(w, "Failed to process message", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := s.Notifier.FormatLeaderboardResponse(s.Engine.Leaderboard())
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}
