package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryService keeps everything in process; history is lost on restart.
type MemoryService struct {
	mu     sync.RWMutex
	games  map[string]*GameRecord
	rounds map[string][]RoundItem
}

func NewMemoryService() *MemoryService {
	return &MemoryService{
		games:  make(map[string]*GameRecord),
		rounds: make(map[string][]RoundItem),
	}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) SaveGame(_ context.Context, game GameRecord) error {
	if err := validateGame(game); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowUTC()
	if prev, ok := s.games[game.GameID]; ok {
		game.CreatedAt = prev.CreatedAt
	} else {
		game.CreatedAt = now
	}
	game.UpdatedAt = now
	game.Summary = cloneSummary(game.Summary)
	s.games[game.GameID] = &game
	return nil
}

func (s *MemoryService) AppendRound(_ context.Context, gameID string, item RoundItem) error {
	if err := validateRound(gameID, item); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return fmt.Errorf("append round to %s: %w", gameID, ErrNotFound)
	}
	for _, existing := range s.rounds[gameID] {
		if existing.Seq == item.Seq {
			return nil
		}
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = nowUTC()
	}
	items := append(s.rounds[gameID], item)
	sort.Slice(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })
	s.rounds[gameID] = items
	return nil
}

func (s *MemoryService) ListRecent(_ context.Context, limit int) ([]GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]GameRecord, 0, len(s.games))
	for _, g := range s.games {
		cp := *g
		cp.Summary = cloneSummary(g.Summary)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].GameID < out[j].GameID
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryService) GetRounds(_ context.Context, gameID string) ([]RoundItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.games[gameID]; !ok {
		return nil, ErrNotFound
	}
	return append([]RoundItem(nil), s.rounds[gameID]...), nil
}

func cloneSummary(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
