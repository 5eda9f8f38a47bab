package lobby

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wolfsim/apps/server/internal/ledger"
	"wolfsim/chronicle"
	"wolfsim/role"
	"wolfsim/werewolf"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrBadHostKey   = errors.New("bad host key")
	ErrRoundLimit   = errors.New("round limit reached")
	ErrInvalidSpec  = errors.New("invalid game spec")
)

const ledgerTimeout = 3 * time.Second

// Update is pushed to subscribers after every round. Record is the public
// projection.
type Update struct {
	GameID   string               `json:"game_id"`
	Record   werewolf.RoundRecord `json:"record"`
	Terminal bool                 `json:"terminal"`
	Winner   role.Team            `json:"winner"`
}

// Summary is the lobby listing view of a session.
type Summary struct {
	GameID    string    `json:"game_id"`
	Round     int       `json:"round"`
	Phase     string    `json:"phase"`
	Terminal  bool      `json:"terminal"`
	Winner    role.Team `json:"winner"`
	Players   int       `json:"players"`
	Alive     int       `json:"alive"`
	MaxRounds int       `json:"max_rounds"`
	CreatedAt time.Time `json:"created_at"`
}

// Lobby owns the live sessions.
type Lobby struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ledger   ledger.Service
}

// New creates a lobby; a nil ledger keeps no history.
func New(ledgerService ledger.Service) *Lobby {
	return &Lobby{
		sessions: make(map[string]*Session),
		ledger:   ledgerService,
	}
}

// Create seats a new game from spec and returns it with the host key. Only
// the host key may advance the game. The spec's game id is replaced; a
// missing seed is drawn from the clock.
func (l *Lobby) Create(ctx context.Context, spec chronicle.GameSpec) (*Session, string, error) {
	spec.GameID = uuid.New().String()
	if spec.RNG == nil || spec.RNG.Seed == 0 {
		spec.RNG = &chronicle.RNGSpec{Seed: time.Now().UnixNano()}
	}
	prepared, err := chronicle.Prepare(spec)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	world, err := werewolf.NewWorld(prepared.Config)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	hostKey := uuid.New().String()
	hash, err := bcrypt.GenerateFromPassword([]byte(hostKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash host key: %w", err)
	}

	s := &Session{
		ID:          prepared.GameID,
		CreatedAt:   time.Now().UTC(),
		seed:        prepared.Seed,
		maxRounds:   prepared.MaxRounds,
		world:       world,
		hostHash:    hash,
		subscribers: make(map[uint64]func(Update)),
	}

	l.mu.Lock()
	l.sessions[s.ID] = s
	l.mu.Unlock()

	l.saveGame(ctx, s)
	l.appendEnvelope(ctx, s.ID, 1, chronicle.TypeGameStart, chronicle.GameStartPayload(s.seed, world.Agents(), false))
	log.Printf("[Lobby] Created game %s: players=%d seed=%d", s.ID, len(prepared.Config.Seats), s.seed)
	return s, hostKey, nil
}

func (l *Lobby) Get(gameID string) (*Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sessions[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return s, nil
}

// List returns every session summary, newest first.
func (l *Lobby) List() []Summary {
	l.mu.RLock()
	sessions := make([]*Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		sessions = append(sessions, s)
	}
	l.mu.RUnlock()

	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}

// Advance plays one round of gameID. The record is persisted and pushed to
// subscribers before it is returned.
func (l *Lobby) Advance(ctx context.Context, gameID, hostKey string) (werewolf.RoundRecord, error) {
	s, err := l.Get(gameID)
	if err != nil {
		return werewolf.RoundRecord{}, err
	}
	if !s.CheckHostKey(hostKey) {
		return werewolf.RoundRecord{}, ErrBadHostKey
	}

	s.mu.Lock()
	if !s.world.IsTerminal() && s.world.Round() >= s.maxRounds {
		s.mu.Unlock()
		return werewolf.RoundRecord{}, ErrRoundLimit
	}
	rec, err := s.world.AdvanceRound()
	if err != nil {
		s.mu.Unlock()
		return werewolf.RoundRecord{}, err
	}
	terminal := s.world.IsTerminal()
	update := Update{
		GameID:   s.ID,
		Record:   rec.Public(),
		Terminal: terminal,
		Winner:   s.world.WinningTeam(),
	}
	var endPayload map[string]any
	if terminal {
		endPayload = chronicle.GameEndPayload(s.world)
	}
	subs := s.subscriberList()
	s.mu.Unlock()

	// seq 1 is gameStart, so round n is seq n+1.
	l.appendEnvelope(ctx, s.ID, uint64(rec.Round)+1, chronicle.TypeRound, chronicle.RoundPayload(rec, false))
	if terminal {
		l.appendEnvelope(ctx, s.ID, uint64(rec.Round)+2, chronicle.TypeGameEnd, endPayload)
		log.Printf("[Lobby] Game %s over after %d rounds: %s win", s.ID, rec.Round, update.Winner)
	}
	l.saveGame(ctx, s)

	for _, fn := range subs {
		fn(update)
	}
	return rec, nil
}

func (l *Lobby) saveGame(ctx context.Context, s *Session) {
	if l.ledger == nil {
		return
	}
	sum := s.Summary()
	status := ledger.StatusRunning
	winner := ""
	if sum.Terminal {
		status = ledger.StatusFinished
		winner = sum.Winner.String()
	}
	ctx, cancel := context.WithTimeout(ctx, ledgerTimeout)
	defer cancel()
	err := l.ledger.SaveGame(ctx, ledger.GameRecord{
		GameID:  s.ID,
		Seed:    s.seed,
		Players: sum.Players,
		Rounds:  sum.Round,
		Status:  status,
		Winner:  winner,
		Summary: map[string]any{"alive": sum.Alive, "max_rounds": sum.MaxRounds},
	})
	if err != nil {
		log.Printf("[Lobby] save game failed: game=%s err=%v", s.ID, err)
	}
}

func (l *Lobby) appendEnvelope(ctx context.Context, gameID string, seq uint64, typ string, payload map[string]any) {
	if l.ledger == nil {
		return
	}
	env, err := chronicle.NewEnvelope(gameID, seq, typ, payload)
	if err != nil {
		log.Printf("[Lobby] build %s envelope failed: game=%s err=%v", typ, gameID, err)
		return
	}
	b64, err := chronicle.EncodeEnvelope(env)
	if err != nil {
		log.Printf("[Lobby] encode %s envelope failed: game=%s err=%v", typ, gameID, err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, ledgerTimeout)
	defer cancel()
	if err := l.ledger.AppendRound(ctx, gameID, ledger.RoundItem{Seq: seq, EventType: typ, EnvelopeB64: b64}); err != nil {
		log.Printf("[Lobby] append %s failed: game=%s seq=%d err=%v", typ, gameID, seq, err)
	}
}
