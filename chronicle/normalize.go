package chronicle

import (
	"math/rand"
	"strings"

	"wolfsim/role"
	"wolfsim/werewolf"
)

const (
	defaultGameID    = "chronicle_local"
	defaultSeed      = 1
	defaultMaxRounds = 30
)

type normalizedSpec struct {
	gameID    string
	seed      int64
	maxRounds int
	godView   bool
	seats     []werewolf.Seat
	roles     []role.Role
}

func normalizeSpec(spec GameSpec) (normalizedSpec, error) {
	out := normalizedSpec{
		gameID:    strings.TrimSpace(spec.GameID),
		seed:      seedFromSpec(spec.RNG),
		maxRounds: spec.MaxRounds,
		godView:   spec.GodView,
	}
	if out.gameID == "" {
		out.gameID = defaultGameID
	}
	if out.maxRounds <= 0 {
		out.maxRounds = defaultMaxRounds
	}

	n := len(spec.Seats)
	if n < role.StandardLimits.MinPlayers || n > role.StandardLimits.MaxPlayers {
		return out, specError("need %d-%d seats, got %d", role.StandardLimits.MinPlayers, role.StandardLimits.MaxPlayers, n)
	}

	explicit := 0
	for i, s := range spec.Seats {
		p, err := role.ParsePersonality(s.Personality)
		if err != nil {
			return out, specError("seat %d: %v", i, err)
		}
		out.seats = append(out.seats, werewolf.Seat{Name: strings.TrimSpace(s.Name), Personality: p})
		if s.Role != "" {
			explicit++
		}
	}

	switch {
	case explicit == n:
		if spec.Roles != nil {
			return out, specError("give roles per seat or as counts, not both")
		}
		for i, s := range spec.Seats {
			r, err := role.ParseRole(s.Role)
			if err != nil {
				return out, specError("seat %d: %v", i, err)
			}
			out.roles = append(out.roles, r)
		}
	case explicit == 0:
		if spec.Roles == nil {
			return out, specError("no roles given")
		}
		if err := spec.Roles.Check(n, role.StandardLimits); err != nil {
			return out, specError("%v", err)
		}
		pool, err := role.Assign(*spec.Roles, n)
		if err != nil {
			return out, specError("%v", err)
		}
		role.Shuffle(pool, rand.New(rand.NewSource(out.seed)))
		out.roles = pool
	default:
		return out, specError("%d of %d seats have a role", explicit, n)
	}

	if role.Tally(out.roles)[role.Wolf] == 0 {
		return out, specError("at least one wolf is required")
	}
	return out, nil
}

// seedFromSpec falls back to a fixed seed so a spec always yields one tape.
func seedFromSpec(rng *RNGSpec) int64 {
	if rng == nil || rng.Seed == 0 {
		return defaultSeed
	}
	return rng.Seed
}
