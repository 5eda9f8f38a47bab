package werewolf

import (
	"fmt"
	"math/rand"
	"strings"

	"wolfsim/role"
)

// Seat is one cast member before roles are dealt.
type Seat struct {
	Name        string           `json:"name" yaml:"name"`
	Personality role.Personality `json:"personality" yaml:"personality"`
}

type Config struct {
	// Seating order; also the order agents speak in.
	Seats []Seat
	// Roles[i] is dealt to Seats[i].
	Roles []role.Role

	// RNG seed (0 => time-based). Ignored when Rand is set.
	Seed int64
	Rand *rand.Rand

	// Optional collaborators.
	Narrator Narrator
	Logger   Logger
}

// Logger receives engine trace lines; *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

func (c Config) validate() error {
	if len(c.Seats) == 0 {
		return fmt.Errorf("no seats")
	}
	if len(c.Roles) != len(c.Seats) {
		return fmt.Errorf("role count %d != seat count %d", len(c.Roles), len(c.Seats))
	}
	seen := make(map[string]struct{}, len(c.Seats))
	for i, s := range c.Seats {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("seat %d has empty name", i)
		}
		if name != s.Name {
			return fmt.Errorf("seat %d name %q has surrounding whitespace", i, s.Name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate name %q", name)
		}
		seen[name] = struct{}{}
		if !s.Personality.Valid() {
			return fmt.Errorf("seat %q has invalid personality", name)
		}
		if !c.Roles[i].Valid() {
			return fmt.Errorf("seat %q has invalid role", name)
		}
	}
	return nil
}
