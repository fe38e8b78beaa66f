package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"dungeon-legends-server/auth"
	"dungeon-legends-server/config"
	"dungeon-legends-server/game"
	"dungeon-legends-server/gameerrors"
	"dungeon-legends-server/storage"
)

const bearerPrefix = "Bearer "

// Handler holds dependencies for API handlers.
type Handler struct {
	Config   *config.Config
	Registry *game.Registry
	Store    storage.MatchStore
}

// NewHandler creates a new API handler with the given dependencies. store may
// be nil when persistence is disabled.
func NewHandler(cfg *config.Config, registry *game.Registry, store storage.MatchStore) *Handler {
	return &Handler{
		Config:   cfg,
		Registry: registry,
		Store:    store,
	}
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// extractUserID validates the Authorization header and returns the user ID,
// or empty string on failure.
func (h *Handler) extractUserID(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}
	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	claims, err := auth.ValidateToken(h.Config.AuthBaseURL, token)
	if err != nil {
		return ""
	}
	return auth.UserIDFromClaims(claims)
}

// CreateGameRequest is the JSON body for POST /api/game/create.
type CreateGameRequest struct {
	Participants []game.ParticipantSpec `json:"participants"`
	Mode         string                 `json:"mode,omitempty"`
}

// CreateGameResponse returns the new match id and the seat assignments.
type CreateGameResponse struct {
	GameID       string        `json:"gameId"`
	Participants []SeatSummary `json:"participants"`
}

// SeatSummary is one seat of a created match.
type SeatSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HeroType string `json:"heroType"`
	IsAI     bool   `json:"isAI"`
}

// CreateGame starts a new match from the requested seats. Human seats without
// a user id are bound to the authenticated caller.
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := h.extractUserID(r)
	if userID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for i := range req.Participants {
		if !req.Participants[i].IsAI && req.Participants[i].UserID == "" {
			req.Participants[i].UserID = userID
		}
	}

	m, err := h.Registry.StartMatch(req.Participants, game.GameMode(req.Mode))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := CreateGameResponse{GameID: m.ID}
	for _, p := range m.Participants {
		resp.Participants = append(resp.Participants, SeatSummary{
			ID:       p.ID,
			Name:     p.Name,
			HeroType: string(p.Hero.Type),
			IsAI:     p.IsAI,
		})
	}
	writeJSON(w, resp)
}

// GameState returns a snapshot of the match identified by the gameId query
// parameter.
func (h *Handler) GameState(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.extractUserID(r) == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	gameID := r.URL.Query().Get("gameId")
	m, ok := h.Registry.Get(gameID)
	if !ok {
		http.Error(w, gameerrors.ErrMatchNotFound.Error(), http.StatusNotFound)
		return
	}
	snapshot, err := m.SnapshotSync(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snapshot)
}

// gameIDRequest is the JSON body for save and load.
type gameIDRequest struct {
	GameID string `json:"gameId"`
}

// SaveGame serializes a live match into the store.
func (h *Handler) SaveGame(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.extractUserID(r) == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	var req gameIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.Registry.Save(r.Context(), req.GameID); err != nil {
		slog.Error("saving match", "tag", "api", "match", req.GameID, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "saved", "gameId": req.GameID})
}

// LoadGame restores a saved match and returns its snapshot.
func (h *Handler) LoadGame(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.extractUserID(r) == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	var req gameIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	m, err := h.Registry.Resume(r.Context(), req.GameID)
	if err != nil {
		slog.Error("loading match", "tag", "api", "match", req.GameID, "err", err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	snapshot, err := m.SnapshotSync(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snapshot)
}

// Results returns recently finished matches.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list := []storage.ResultRecord{}
	if h.Store != nil {
		var err error
		list, err = h.Store.ListRecentResults(r.Context(), limit)
		if err != nil {
			slog.Error("listing results", "tag", "api", "err", err)
			http.Error(w, "failed to load results", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, list)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "tag", "api", "err", err)
	}
}
