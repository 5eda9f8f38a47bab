package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"wolfsim/chronicle"
	"wolfsim/setup"
	"wolfsim/werewolf"
)

const hostKeyHeader = "X-Host-Key"

type HTTPHandler struct {
	lobby     *Lobby
	publicURL string
}

type errorResponse struct {
	Error string `json:"error"`
}

// createGameRequest is a chronicle spec; with no seats, RandomPlayers names
// are drawn from the stock cast.
type createGameRequest struct {
	chronicle.GameSpec
	RandomPlayers int `json:"random_players,omitempty"`
}

// NewHTTPHandler serves the game routes. publicURL prefixes the links
// encoded in QR codes.
func NewHTTPHandler(lby *Lobby, publicURL string) *HTTPHandler {
	return &HTTPHandler{
		lobby:     lby,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/games", h.handleGames)
	mux.HandleFunc("/api/games/", h.handleGame)
}

func (h *HTTPHandler) handleGames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"items": h.lobby.List()})
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *HTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	spec := req.GameSpec
	if len(spec.Seats) == 0 && req.RandomPlayers > 0 {
		seed := time.Now().UnixNano()
		if spec.RNG != nil && spec.RNG.Seed != 0 {
			seed = spec.RNG.Seed
		}
		cast, err := setup.RandomCast(req.RandomPlayers, rand.New(rand.NewSource(seed)))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		for _, seat := range cast {
			spec.Seats = append(spec.Seats, chronicle.SeatSpec{Name: seat.Name, Personality: seat.Personality.String()})
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	s, hostKey, err := h.lobby.Create(ctx, spec)
	if err != nil {
		if errors.Is(err, ErrInvalidSpec) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "create game failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"game":     s.Summary(),
		"host_key": hostKey,
		"agents":   s.Agents(false),
	})
}

// handleGame routes /api/games/{id}[/advance|/log|/graph/{round}|/qr].
func (h *HTTPHandler) handleGame(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/games/"))
	parts := strings.Split(strings.Trim(path, "/"), "/")
	gameID := strings.TrimSpace(parts[0])
	if gameID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s, err := h.lobby.Get(gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	switch {
	case len(parts) == 1:
		h.requireMethod(w, r, http.MethodGet, func() { h.handleDetail(w, r, s) })
	case len(parts) == 2 && parts[1] == "advance":
		h.requireMethod(w, r, http.MethodPost, func() { h.handleAdvance(w, r, s) })
	case len(parts) == 2 && parts[1] == "log":
		h.requireMethod(w, r, http.MethodGet, func() { h.handleLog(w, r, s) })
	case len(parts) == 3 && parts[1] == "graph":
		h.requireMethod(w, r, http.MethodGet, func() { h.handleGraph(w, r, s, parts[2]) })
	case len(parts) == 2 && parts[1] == "qr":
		h.requireMethod(w, r, http.MethodGet, func() { h.handleQR(w, s) })
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *HTTPHandler) requireMethod(w http.ResponseWriter, r *http.Request, method string, next func()) {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	next()
}

func (h *HTTPHandler) handleDetail(w http.ResponseWriter, r *http.Request, s *Session) {
	god, ok := h.godView(w, r, s)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game":   s.Summary(),
		"agents": s.Agents(god),
	})
}

func (h *HTTPHandler) handleAdvance(w http.ResponseWriter, r *http.Request, s *Session) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	rec, err := h.lobby.Advance(ctx, s.ID, r.Header.Get(hostKeyHeader))
	if err != nil {
		switch {
		case errors.Is(err, ErrBadHostKey):
			writeError(w, http.StatusForbidden, "bad host key")
		case errors.Is(err, werewolf.ErrGameOver):
			writeError(w, http.StatusConflict, "game is over")
		case errors.Is(err, ErrRoundLimit):
			writeError(w, http.StatusConflict, "round limit reached")
		default:
			writeError(w, http.StatusInternalServerError, "advance failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game":   s.Summary(),
		"record": rec.Public(),
	})
}

func (h *HTTPHandler) handleLog(w http.ResponseWriter, r *http.Request, s *Session) {
	god, ok := h.godView(w, r, s)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": s.ID,
		"rounds":  s.Log(god),
	})
}

// handleGraph returns JSON by default and Graphviz text with ?format=dot.
func (h *HTTPHandler) handleGraph(w http.ResponseWriter, r *http.Request, s *Session, rawRound string) {
	round, err := strconv.Atoi(rawRound)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round")
		return
	}
	god, ok := h.godView(w, r, s)
	if !ok {
		return
	}
	g, err := s.Graph(round, god)
	if err != nil {
		if errors.Is(err, werewolf.ErrUnknownRound) {
			writeError(w, http.StatusNotFound, "round not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "build graph failed")
		return
	}
	if r.URL.Query().Get("format") == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(g.DOT()))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleQR renders a PNG of the spectator link.
func (h *HTTPHandler) handleQR(w http.ResponseWriter, s *Session) {
	link := fmt.Sprintf("%s/api/games/%s/log", h.publicURL, s.ID)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode qr failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// godView reports whether ?god=1 was asked for. Hidden information is only
// served to the host.
func (h *HTTPHandler) godView(w http.ResponseWriter, r *http.Request, s *Session) (bool, bool) {
	if r.URL.Query().Get("god") != "1" {
		return false, true
	}
	if !s.CheckHostKey(r.Header.Get(hostKeyHeader)) {
		writeError(w, http.StatusForbidden, "god view needs the host key")
		return false, false
	}
	return true, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
