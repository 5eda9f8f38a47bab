package role

import (
	"fmt"
	"math/rand"
)

// Counts is how many seats each special role gets; every remaining seat is a Villager.
type Counts struct {
	Wolf      int `json:"wolf" yaml:"wolf"`
	Seer      int `json:"seer" yaml:"seer"`
	Medium    int `json:"medium" yaml:"medium"`
	Madman    int `json:"madman" yaml:"madman"`
	Bodyguard int `json:"bodyguard" yaml:"bodyguard"`
}

// Limits bounds a Counts value and the table size.
type Limits struct {
	MinPlayers, MaxPlayers     int
	MinWolf, MaxWolf           int
	MinSeer, MaxSeer           int
	MinMedium, MaxMedium       int
	MinMadman, MaxMadman       int
	MinBodyguard, MaxBodyguard int
}

// StandardLimits is the table setup offered to players: 4-15 seats, one seer.
var StandardLimits = Limits{
	MinPlayers: 4, MaxPlayers: 15,
	MinWolf: 1, MaxWolf: 3,
	MinSeer: 1, MaxSeer: 1,
	MinMedium: 0, MaxMedium: 1,
	MinMadman: 0, MaxMadman: 2,
	MinBodyguard: 0, MaxBodyguard: 1,
}

func (c Counts) Special() int {
	return c.Wolf + c.Seer + c.Medium + c.Madman + c.Bodyguard
}

// Villagers is the remainder for a table of total seats; negative means too many specials.
func (c Counts) Villagers(total int) int {
	return total - c.Special()
}

// Check validates c against the limits for a table of total seats.
func (c Counts) Check(total int, lim Limits) error {
	if total < lim.MinPlayers || total > lim.MaxPlayers {
		return fmt.Errorf("player count %d out of range [%d, %d]", total, lim.MinPlayers, lim.MaxPlayers)
	}
	checks := []struct {
		name     string
		n        int
		min, max int
	}{
		{"wolf", c.Wolf, lim.MinWolf, lim.MaxWolf},
		{"seer", c.Seer, lim.MinSeer, lim.MaxSeer},
		{"medium", c.Medium, lim.MinMedium, lim.MaxMedium},
		{"madman", c.Madman, lim.MinMadman, lim.MaxMadman},
		{"bodyguard", c.Bodyguard, lim.MinBodyguard, lim.MaxBodyguard},
	}
	for _, ck := range checks {
		if ck.n < ck.min || ck.n > ck.max {
			return fmt.Errorf("%s count %d out of range [%d, %d]", ck.name, ck.n, ck.min, ck.max)
		}
	}
	if c.Villagers(total) < 0 {
		return fmt.Errorf("too many special roles: %d for %d players", c.Special(), total)
	}
	return nil
}

// Assign builds the role pool for total seats: specials first, Villagers fill the rest.
// The pool is not shuffled.
func Assign(c Counts, total int) ([]Role, error) {
	if total <= 0 {
		return nil, fmt.Errorf("player count must be > 0")
	}
	if c.Wolf < 0 || c.Seer < 0 || c.Medium < 0 || c.Madman < 0 || c.Bodyguard < 0 {
		return nil, fmt.Errorf("role counts must be >= 0")
	}
	villagers := c.Villagers(total)
	if villagers < 0 {
		return nil, fmt.Errorf("too many special roles: %d for %d players", c.Special(), total)
	}
	pool := make([]Role, 0, total)
	pool = appendN(pool, Wolf, c.Wolf)
	pool = appendN(pool, Seer, c.Seer)
	pool = appendN(pool, Medium, c.Medium)
	pool = appendN(pool, Madman, c.Madman)
	pool = appendN(pool, Bodyguard, c.Bodyguard)
	pool = appendN(pool, Villager, villagers)
	return pool, nil
}

// Shuffle permutes the pool in place.
func Shuffle(pool []Role, rng *rand.Rand) {
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
}

// Tally counts roles in a pool.
func Tally(pool []Role) map[Role]int {
	out := make(map[Role]int, len(All))
	for _, r := range pool {
		out[r]++
	}
	return out
}

func appendN(pool []Role, r Role, n int) []Role {
	for i := 0; i < n; i++ {
		pool = append(pool, r)
	}
	return pool
}
