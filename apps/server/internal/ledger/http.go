package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wolfsim/chronicle"
)

type HTTPHandler struct {
	ledger Service
}

type errorResponse struct {
	Error string `json:"error"`
}

// decodedRound is a RoundItem with its envelope expanded to JSON.
type decodedRound struct {
	RoundItem
	Envelope json.RawMessage `json:"envelope,omitempty"`
}

func NewHTTPHandler(ledgerService Service) *HTTPHandler {
	return &HTTPHandler{ledger: ledgerService}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/history", h.handleRecent)
	mux.HandleFunc("/api/history/", h.handleGame)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.ListRecent(ctx, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query recent games failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

// handleGame serves /api/history/{id}; ?decode=1 expands each envelope.
func (h *HTTPHandler) handleGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	gameID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/history/"))
	if gameID == "" || strings.Contains(gameID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.ledger.GetRounds(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "query game rounds failed")
		return
	}

	if r.URL.Query().Get("decode") != "1" {
		writeJSON(w, http.StatusOK, map[string]any{
			"game_id": gameID,
			"rounds":  items,
		})
		return
	}
	decoded := make([]decodedRound, 0, len(items))
	for _, item := range items {
		raw, err := chronicle.EnvelopeJSON(item.EnvelopeB64)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "decode envelope failed")
			return
		}
		decoded = append(decoded, decodedRound{RoundItem: item, Envelope: raw})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": gameID,
		"rounds":  decoded,
	})
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultRecentLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultRecentLimit
	}
	if n > 100 {
		return 100
	}
	return n
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
