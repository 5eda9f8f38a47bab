package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLService stores the ledger in two tables, ledger_games and
// ledger_rounds. sqlite and postgres share the statements; only the
// placeholder style differs.
type SQLService struct {
	db      *sql.DB
	dialect dialect
}

func (s *SQLService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *SQLService) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQLService) SaveGame(ctx context.Context, game GameRecord) error {
	if err := validateGame(game); err != nil {
		return err
	}
	summary, err := json.Marshal(game.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary for %s: %w", game.GameID, err)
	}
	nowMs := nowUTC().UnixMilli()
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO ledger_games (
    game_id, seed, players, rounds, status, winner, summary_json, created_at_ms, updated_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id) DO UPDATE SET
    seed = excluded.seed,
    players = excluded.players,
    rounds = excluded.rounds,
    status = excluded.status,
    winner = excluded.winner,
    summary_json = excluded.summary_json,
    updated_at_ms = excluded.updated_at_ms
`), game.GameID, game.Seed, game.Players, game.Rounds, string(game.Status), game.Winner, string(summary), nowMs, nowMs)
	return err
}

func (s *SQLService) AppendRound(ctx context.Context, gameID string, item RoundItem) error {
	if err := validateRound(gameID, item); err != nil {
		return err
	}
	exists, err := s.gameExists(ctx, gameID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("append round to %s: %w", gameID, ErrNotFound)
	}
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = nowUTC()
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO ledger_rounds (game_id, seq, event_type, envelope_b64, created_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (game_id, seq) DO NOTHING
`), gameID, int64(item.Seq), item.EventType, item.EnvelopeB64, createdAt.UnixMilli())
	return err
}

func (s *SQLService) ListRecent(ctx context.Context, limit int) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT game_id, seed, players, rounds, status, winner, summary_json, created_at_ms, updated_at_ms
FROM ledger_games
ORDER BY updated_at_ms DESC, game_id ASC
LIMIT ?
`), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GameRecord, 0)
	for rows.Next() {
		var (
			g                     GameRecord
			status, summaryJSON   string
			createdAtMs, updateMs int64
		)
		if err := rows.Scan(&g.GameID, &g.Seed, &g.Players, &g.Rounds, &status, &g.Winner, &summaryJSON, &createdAtMs, &updateMs); err != nil {
			return nil, err
		}
		g.Status = Status(status)
		if summaryJSON != "" && summaryJSON != "null" {
			if err := json.Unmarshal([]byte(summaryJSON), &g.Summary); err != nil {
				return nil, fmt.Errorf("decode summary for %s: %w", g.GameID, err)
			}
		}
		g.CreatedAt = time.UnixMilli(createdAtMs).UTC()
		g.UpdatedAt = time.UnixMilli(updateMs).UTC()
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLService) GetRounds(ctx context.Context, gameID string) ([]RoundItem, error) {
	exists, err := s.gameExists(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT seq, event_type, envelope_b64, created_at_ms
FROM ledger_rounds
WHERE game_id = ?
ORDER BY seq ASC
`), gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RoundItem, 0)
	for rows.Next() {
		var (
			item        RoundItem
			seq         int64
			createdAtMs int64
		)
		if err := rows.Scan(&seq, &item.EventType, &item.EnvelopeB64, &createdAtMs); err != nil {
			return nil, err
		}
		item.Seq = uint64(seq)
		item.CreatedAt = time.UnixMilli(createdAtMs).UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *SQLService) gameExists(ctx context.Context, gameID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM ledger_games WHERE game_id = ?`), gameID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func ensureLedgerSchema(ctx context.Context, db *sql.DB, d dialect) error {
	bigint := "INTEGER"
	if d == dialectPostgres {
		bigint = "BIGINT"
	}
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS ledger_games (
    game_id TEXT PRIMARY KEY,
    seed ` + bigint + ` NOT NULL,
    players INTEGER NOT NULL,
    rounds INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    winner TEXT NOT NULL DEFAULT '',
    summary_json TEXT NOT NULL DEFAULT '{}',
    created_at_ms ` + bigint + ` NOT NULL,
    updated_at_ms ` + bigint + ` NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_games_recent ON ledger_games(updated_at_ms DESC)`,
		`
CREATE TABLE IF NOT EXISTS ledger_rounds (
    game_id TEXT NOT NULL REFERENCES ledger_games(game_id) ON DELETE CASCADE,
    seq ` + bigint + ` NOT NULL,
    event_type TEXT NOT NULL,
    envelope_b64 TEXT NOT NULL,
    created_at_ms ` + bigint + ` NOT NULL,
    PRIMARY KEY (game_id, seq)
)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
