package lobby

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"wolfsim/werewolf"
)

// Session is one live game. All reads and the round step go through mu.
type Session struct {
	ID        string
	CreatedAt time.Time

	seed      int64
	maxRounds int
	hostHash  []byte

	mu          sync.Mutex
	world       *werewolf.World
	subscribers map[uint64]func(Update)
	nextSub     uint64
}

// CheckHostKey reports whether key is this game's host key.
func (s *Session) CheckHostKey(key string) bool {
	return key != "" && bcrypt.CompareHashAndPassword(s.hostHash, []byte(key)) == nil
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() Summary {
	return Summary{
		GameID:    s.ID,
		Round:     s.world.Round(),
		Phase:     s.world.Phase().String(),
		Terminal:  s.world.IsTerminal(),
		Winner:    s.world.WinningTeam(),
		Players:   len(s.world.Agents()),
		Alive:     len(s.world.LivingAgents()),
		MaxRounds: s.maxRounds,
		CreatedAt: s.CreatedAt,
	}
}

// Log returns every round so far; without god view each record is the
// public projection.
func (s *Session) Log(godView bool) []werewolf.RoundRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logLocked(godView)
}

func (s *Session) logLocked(godView bool) []werewolf.RoundRecord {
	recs := s.world.Log()
	if !godView {
		for i := range recs {
			recs[i] = recs[i].Public()
		}
	}
	return recs
}

// Agents lists the cast; roles stay hidden until revealed unless godView.
func (s *Session) Agents(godView bool) []werewolf.AgentView {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := s.world.Agents()
	if !godView {
		for i := range views {
			views[i] = views[i].Public()
		}
	}
	return views
}

func (s *Session) Graph(round int, godView bool) (werewolf.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Relations(round, godView)
}

// Subscribe registers fn for round updates. fn runs on the advancing
// goroutine and must not block. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(Update)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribeLocked(fn)
}

// Watch subscribes fn and hands the public log so far to snapshot in one
// step, so every round lands in exactly one of the two. snapshot runs under
// the session lock, before any update can reach fn, and must not call back
// into the session.
func (s *Session) Watch(snapshot func(Summary, []werewolf.RoundRecord), fn func(Update)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot(s.summaryLocked(), s.logLocked(false))
	return s.subscribeLocked(fn)
}

func (s *Session) subscribeLocked(fn func(Update)) func() {
	s.nextSub++
	id := s.nextSub
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// subscriberList must be called with mu held.
func (s *Session) subscriberList() []func(Update) {
	out := make([]func(Update), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		out = append(out, fn)
	}
	return out
}
