package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
)

var ErrNotFound = errors.New("not found")

// Service persists game headers and their round envelopes.
type Service interface {
	Close() error
	// SaveGame inserts or updates a game header. CreatedAt is kept from the
	// first save.
	SaveGame(ctx context.Context, game GameRecord) error
	// AppendRound stores one envelope; a repeated seq for the same game is
	// ignored. The game must have been saved first.
	AppendRound(ctx context.Context, gameID string, item RoundItem) error
	// ListRecent returns games, most recently updated first.
	ListRecent(ctx context.Context, limit int) ([]GameRecord, error)
	// GetRounds returns a game's envelopes in seq order.
	GetRounds(ctx context.Context, gameID string) ([]RoundItem, error)
}

type GameRecord struct {
	GameID    string         `json:"game_id"`
	Seed      int64          `json:"seed"`
	Players   int            `json:"players"`
	Rounds    int            `json:"rounds"`
	Status    Status         `json:"status"`
	Winner    string         `json:"winner,omitempty"`
	Summary   map[string]any `json:"summary,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type RoundItem struct {
	Seq         uint64    `json:"seq"`
	EventType   string    `json:"event_type"`
	EnvelopeB64 string    `json:"envelope_b64"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewServiceFromEnv picks a backend from LEDGER_MODE (memory, sqlite,
// postgres or mongo; sqlite when unset) and returns it with the mode name.
func NewServiceFromEnv() (Service, string, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("LEDGER_MODE")))
	switch mode {
	case "memory":
		return NewMemoryService(), "memory", nil
	case "", "local", "sqlite":
		service, err := NewSQLiteServiceFromEnv()
		if err != nil {
			return nil, "", err
		}
		return service, "sqlite", nil
	case "postgres":
		service, err := NewPostgresService(ledgerDSNFromEnv())
		if err != nil {
			return nil, "", err
		}
		return service, "postgres", nil
	case "mongo", "mongodb":
		service, err := NewMongoServiceFromEnv()
		if err != nil {
			return nil, "", err
		}
		return service, "mongo", nil
	default:
		return nil, "", fmt.Errorf("unknown LEDGER_MODE %q", mode)
	}
}

func validateGame(game GameRecord) error {
	if strings.TrimSpace(game.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if game.Status == "" {
		return fmt.Errorf("game %s: status is required", game.GameID)
	}
	return nil
}

func validateRound(gameID string, item RoundItem) error {
	if strings.TrimSpace(gameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if item.Seq == 0 {
		return fmt.Errorf("game %s: seq must be > 0", gameID)
	}
	if item.EventType == "" || item.EnvelopeB64 == "" {
		return fmt.Errorf("game %s seq %d: event type and envelope are required", gameID, item.Seq)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

func envIntOrDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
