package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/sundaysquad/sundaysquad/internal/league"
	"github.com/sundaysquad/sundaysquad/internal/results"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameID")
		if gameID != "" {
			log.Info("Received request to clear a specific game", "gameID", gameID)
			s.Store.ClearGame(gameID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared game %s from store!", gameID)
			log.Info("Successfully cleared game from store", "gameID", gameID)
		} else {
			log.Info("Received request to clear entire store")
			s.Store.Clear()
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "Store cleared!")
			log.Info("Store cleared successfully")
		}
	}
}

// submitResultRequest is the JSON body accepted by the submit-result endpoint.
type submitResultRequest struct {
	GameID      string                         `json:"game_id"`
	Attendance  map[string]bool                `json:"attendance"`
	Score       results.ScorePayload           `json:"score"`
	PlayerStats map[string]results.StatPayload `json:"player_stats"`
}

// castVoteRequest is the JSON body accepted by the cast-vote endpoint.
type castVoteRequest struct {
	GameID   string       `json:"game_id"`
	PlayerID string       `json:"player_id"`
	Vote     results.Vote `json:"vote"`
}

// writeWorkflowError maps the approval workflow's sentinel errors to HTTP
// status codes.
func writeWorkflowError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, league.ErrGameNotFound), errors.Is(err, results.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, results.ErrAlreadyCompleted), errors.Is(err, results.ErrResultAlreadyFinal):
		status = http.StatusConflict
	case errors.Is(err, results.ErrNotAParticipant):
		status = http.StatusForbidden
	case errors.Is(err, results.ErrIncompleteAttendance),
		errors.Is(err, results.ErrInvalidResultSchema),
		errors.Is(err, results.ErrInvalidStatSchema),
		errors.Is(err, results.ErrUnknownSport),
		errors.Is(err, results.ErrInvalidVote):
		status = http.StatusBadRequest
	case errors.Is(err, results.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) SubmitResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req submitResultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode submit result request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.GameID == "" {
			http.Error(w, "game_id is required", http.StatusBadRequest)
			return
		}

		outcome, err := s.Coordinator.SubmitGameResult(req.GameID, req.Attendance, req.Score, req.PlayerStats)
		if err != nil {
			log.Error("Failed to submit result", "gameID", req.GameID, "error", err)
			writeWorkflowError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(outcome); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) CastVoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req castVoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode cast vote request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.GameID == "" || req.PlayerID == "" {
			http.Error(w, "game_id and player_id are required", http.StatusBadRequest)
			return
		}

		status, err := s.Coordinator.CastVote(req.GameID, req.PlayerID, req.Vote)
		if err != nil {
			log.Error("Failed to cast vote", "gameID", req.GameID, "playerID", req.PlayerID, "error", err)
			writeWorkflowError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]results.Status{"status": status}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) PendingApprovalsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		if playerID == "" {
			http.Error(w, "playerID is required", http.StatusBadRequest)
			return
		}
		actionableOnly := r.URL.Query().Get("actionable") == "true"

		items, err := s.Coordinator.GetPendingApprovals(playerID, actionableOnly)
		if err != nil {
			http.Error(w, "Failed to get pending approvals", http.StatusInternalServerError)
			log.Error("Failed to get pending approvals", "playerID", playerID, "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(items); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// resultStatusResponse joins the record with its current vote tally.
type resultStatusResponse struct {
	Record   *results.ResultRecord `json:"record"`
	Approved int                   `json:"approved"`
	Disputed int                   `json:"disputed"`
	Eligible int                   `json:"eligible"`
}

func (s *Server) ResultStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("gameID")
		if gameID == "" {
			http.Error(w, "gameID is required", http.StatusBadRequest)
			return
		}

		record, tally, err := s.Coordinator.GetResultStatus(gameID)
		if err != nil {
			log.Error("Failed to get result status", "gameID", gameID, "error", err)
			writeWorkflowError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := resultStatusResponse{
			Record:   record,
			Approved: tally.Approved,
			Disputed: tally.Disputed,
			Eligible: tally.Eligible,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(players); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ListGamesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := s.Store.GetAllGames()
		if err != nil {
			http.Error(w, "Failed to get games", http.StatusInternalServerError)
			log.Error("Failed to get games from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(games); err != nil {
			log.Error("Failed to encode games to JSON", "error", err)
		}
	}
}

// LeaderboardHandler returns a handler that serves the player totals leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := s.Store.GetLeaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(totals); err != nil {
			log.Error("Failed to encode leaderboard to JSON", "error", err)
		}
	}
}

// StatsHandler serves the db-backed operational counters.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Counters.GetAll()
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			log.Error("Failed to get counters from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(counters); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// decodePushEvent unwraps a pubsub push delivery: the JSON envelope carries a
// base64 payload, which is MessagePack-encoded.
func (s *Server) decodePushEvent(r *http.Request) (results.Event, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return results.Event{}, fmt.Errorf("failed to read request body: %w", err)
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	// Decode the incoming JSON's `data` field.
	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		return results.Event{}, fmt.Errorf("failed to unmarshal wrapper JSON: %w", err)
	}

	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		return results.Event{}, fmt.Errorf("failed to decode base64 data: %w", err)
	}

	var event results.Event
	if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
		return results.Event{}, fmt.Errorf("failed to decode event payload: %w", err)
	}
	return event, nil
}

// ResultSubmittedEventHandler handles the push delivery for freshly submitted
// results and fans the approval request out to the squad.
func (s *Server) ResultSubmittedEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := s.decodePushEvent(r)
		if err != nil {
			log.Error("Failed to decode result-submitted event", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Coordinator.NotifyApprovalRequest(event.GameID, isDryRun); err != nil {
			log.Error("Failed to notify approval request", "gameID", event.GameID, "error", err)
			http.Error(w, "Failed to notify approval request", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// ResultFinalizedEventHandler handles the push delivery for finalized results:
// it folds the stats into the league totals and announces the result.
func (s *Server) ResultFinalizedEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := s.decodePushEvent(r)
		if err != nil {
			log.Error("Failed to decode result-finalized event", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Coordinator.ApplyFinalizedResult(event.GameID, isDryRun); err != nil {
			log.Error("Failed to apply finalized result", "gameID", event.GameID, "error", err)
			http.Error(w, "Failed to apply finalized result", http.StatusInternalServerError)
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

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := s.Store.GetLeaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(totals)
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

// PendingApprovalsCommandHandler returns a handler for the /pending-approvals Slack command.
func (s *Server) PendingApprovalsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerID := r.FormValue("text")
		if playerID == "" {
			playerID = r.FormValue("user_id")
		}
		if playerID == "" {
			http.Error(w, "Player ID is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received pending approvals command", "playerID", playerID)

		items, err := s.Coordinator.GetPendingApprovals(playerID, true)
		if err != nil {
			http.Error(w, "Failed to get pending approvals", http.StatusInternalServerError)
			log.Error("Failed to get pending approvals", "playerID", playerID, "error", err)
			return
		}

		msg, err := s.Notifier.FormatPendingApprovalsResponse(playerID, items)
		if err != nil {
			http.Error(w, "Failed to format pending approvals", http.StatusInternalServerError)
			log.Error("Failed to format pending approvals", "error", err)
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
