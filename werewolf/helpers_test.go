package werewolf

import (
	"testing"

	"wolfsim/role"
)

type castMember struct {
	name string
	role role.Role
}

func newTestWorld(t *testing.T, seed int64, cast ...castMember) *World {
	t.Helper()
	cfg := Config{Seed: seed}
	for _, c := range cast {
		cfg.Seats = append(cfg.Seats, Seat{Name: c.name, Personality: role.Logical})
		cfg.Roles = append(cfg.Roles, c.role)
	}
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld err: %v", err)
	}
	return w
}

// pinDistrust makes every other agent consider name the least trustworthy.
func pinDistrust(w *World, name string) {
	for _, a := range w.agents {
		if a.name != name {
			a.trust[name] = 0.0
		}
	}
}

func mustAdvance(t *testing.T, w *World) RoundRecord {
	t.Helper()
	rec, err := w.AdvanceRound()
	if err != nil {
		t.Fatalf("AdvanceRound(round %d) err: %v", w.Round()+1, err)
	}
	return rec
}

func eventsOf(rec RoundRecord, kind EventKind) []Event {
	var out []Event
	for _, e := range rec.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func voteOf(rec RoundRecord, voter string) (string, bool) {
	for _, v := range rec.Resolution.Votes {
		if v.Voter == voter {
			return v.Target, true
		}
	}
	return "", false
}
