// Package handler exposes the game service over a small JSON/HTTP surface.
// Handlers stay thin: decode, delegate, encode. All rule decisions live in
// the service and policy layers.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"board-banker/internal/ledger"
	"board-banker/internal/model"
	"board-banker/internal/repository"
	"board-banker/internal/service"
)

// Handler routes HTTP requests to the game service.
type Handler struct {
	games  *service.GameService
	health func(ctx context.Context) error
}

// New creates a new Handler instance.
func New(games *service.GameService) *Handler {
	return &Handler{games: games}
}

// WithHealthCheck registers a dependency health probe served at /healthz.
func (h *Handler) WithHealthCheck(fn func(ctx context.Context) error) *Handler {
	h.health = fn
	return h
}

// Router builds the HTTP mux with request logging.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /games", h.createGame)
	mux.HandleFunc("GET /games", h.listGames)
	mux.HandleFunc("GET /games/{id}", h.getGame)
	mux.HandleFunc("DELETE /games/{id}", h.deleteGame)
	mux.HandleFunc("PUT /games/{id}/notes", h.updateNotes)
	mux.HandleFunc("PUT /games/{id}/settings", h.updateSettings)
	mux.HandleFunc("POST /games/{id}/players", h.addPlayer)
	mux.HandleFunc("POST /games/{id}/players/{playerID}/remove", h.removePlayer)
	mux.HandleFunc("POST /games/{id}/actions", h.action)
	mux.HandleFunc("GET /healthz", h.healthz)

	return logRequests(mux)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "unhealthy")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logRequests is the zerolog request-logging middleware.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

type newPlayerRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type createGameRequest struct {
	Name          string             `json:"name"`
	Players       []newPlayerRequest `json:"players"`
	StartingMoney int64              `json:"starting_money"`
	Settings      model.Settings     `json:"settings"`
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	players := make([]service.NewPlayer, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, service.NewPlayer{Name: p.Name, Color: model.Color(p.Color)})
	}

	game, err := h.games.CreateGame(r.Context(), req.Name, players, req.StartingMoney, req.Settings)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, game)
}

func (h *Handler) listGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if games == nil {
		games = []*model.Game{}
	}
	respondJSON(w, http.StatusOK, games)
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (h *Handler) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.games.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, err := h.games.UpdateNotes(r.Context(), r.PathValue("id"), req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, err := h.games.UpdateSettings(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (h *Handler) addPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		Color         string `json:"color"`
		StartingMoney int64  `json:"starting_money"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, err := h.games.AddPlayer(r.Context(), r.PathValue("id"),
		service.NewPlayer{Name: req.Name, Color: model.Color(req.Color)}, req.StartingMoney)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (h *Handler) removePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DistributeTo []string `json:"distribute_to"`
	}
	// The body is optional: a plain removal sends nothing.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gameID, playerID := r.PathValue("id"), r.PathValue("playerID")
	var (
		game *model.Game
		err  error
	)
	if len(req.DistributeTo) > 0 {
		game, err = h.games.DistributeAndRemove(r.Context(), gameID, playerID, req.DistributeTo)
	} else {
		game, err = h.games.RemovePlayer(r.Context(), gameID, playerID)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps service and ledger errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrGameNotFound),
		errors.Is(err, ledger.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAccount),
		errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrInvalidColor),
		errors.Is(err, service.ErrTooFewPlayers),
		errors.Is(err, service.ErrNoRecipients),
		errors.Is(err, service.ErrEmptyPot):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrColorTaken):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("Internal error")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
