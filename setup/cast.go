package setup

import (
	"fmt"
	"math/rand"

	"wolfsim/role"
	"wolfsim/werewolf"
)

// StockNames is the pool random casts draw from.
var StockNames = []string{
	"Akira", "Kaoru", "Satoru", "Tsuyoshi", "Misaki",
	"Hiroshi", "Yukari", "Azusa", "Takeshi", "Nanami",
	"Kenta", "Makoto", "Ayumi", "Miyuki", "Shiori",
}

// RandomCast samples n distinct stock names and gives each a random personality.
func RandomCast(n int, rng *rand.Rand) ([]werewolf.Seat, error) {
	if n <= 0 || n > len(StockNames) {
		return nil, fmt.Errorf("setup: cast size %d out of range [1, %d]", n, len(StockNames))
	}
	idx := rng.Perm(len(StockNames))[:n]
	out := make([]werewolf.Seat, 0, n)
	for _, i := range idx {
		out = append(out, werewolf.Seat{
			Name:        StockNames[i],
			Personality: role.Personalities[rng.Intn(len(role.Personalities))],
		})
	}
	return out, nil
}
