// Package setup reads game setup files and turns them into engine configs.
package setup

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"wolfsim/role"
	"wolfsim/werewolf"
)

const (
	NarratorRule   = "rule"
	NarratorGemini = "gemini"
	NarratorPlain  = "plain"

	defaultPlayers   = 8
	defaultMaxRounds = 30
)

const defaultSetupYAML = `# wolfsim game setup
seed: 0            # 0 picks a time-based seed
max_rounds: 30
narrator: rule     # rule | gemini | plain
shuffle_roles: true

# Leave players empty to draw random_players names from the stock cast.
random_players: 8
players: []

roles:
  wolf: 2
  seer: 1
  medium: 1
  madman: 1
  bodyguard: 1
`

// PlayerConfig is one named seat in a setup file.
type PlayerConfig struct {
	Name        string `yaml:"name"`
	Personality string `yaml:"personality"`
}

// File models a setup YAML document.
type File struct {
	Seed          int64          `yaml:"seed"`
	MaxRounds     int            `yaml:"max_rounds"`
	Narrator      string         `yaml:"narrator"`
	Styles        string         `yaml:"styles,omitempty"`
	ShuffleRoles  bool           `yaml:"shuffle_roles"`
	RandomPlayers int            `yaml:"random_players,omitempty"`
	Players       []PlayerConfig `yaml:"players"`
	Roles         role.Counts    `yaml:"roles"`
}

// Default returns the built-in setup.
func Default() *File {
	f, err := Parse([]byte(defaultSetupYAML))
	if err != nil {
		panic(fmt.Sprintf("setup: built-in defaults: %v", err))
	}
	return f
}

// DefaultYAML is the commented template written by `wolfsim -init`.
func DefaultYAML() string { return defaultSetupYAML }

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("setup: read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("setup: parse yaml: %w", err)
	}
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) applyDefaults() {
	if f.MaxRounds <= 0 {
		f.MaxRounds = defaultMaxRounds
	}
	f.Narrator = strings.ToLower(strings.TrimSpace(f.Narrator))
	if f.Narrator == "" {
		f.Narrator = NarratorRule
	}
	if len(f.Players) == 0 && f.RandomPlayers <= 0 {
		f.RandomPlayers = defaultPlayers
	}
}

// Size is the number of seats the file describes.
func (f *File) Size() int {
	if len(f.Players) > 0 {
		return len(f.Players)
	}
	return f.RandomPlayers
}

func (f *File) Validate() error {
	switch f.Narrator {
	case NarratorRule, NarratorGemini, NarratorPlain:
	default:
		return fmt.Errorf("setup: unknown narrator %q", f.Narrator)
	}
	if len(f.Players) > 0 && f.RandomPlayers > 0 && f.RandomPlayers != len(f.Players) {
		return errors.New("setup: random_players conflicts with the players list")
	}
	if f.RandomPlayers > len(StockNames) {
		return fmt.Errorf("setup: at most %d random players", len(StockNames))
	}
	for i, p := range f.Players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("setup: player %d has no name", i)
		}
		if _, err := role.ParsePersonality(p.Personality); err != nil {
			return fmt.Errorf("setup: player %q: %w", p.Name, err)
		}
	}
	if err := f.Roles.Check(f.Size(), role.StandardLimits); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	return nil
}

// EffectiveSeed resolves a zero seed to a time-based one.
func (f *File) EffectiveSeed() int64 {
	if f.Seed != 0 {
		return f.Seed
	}
	return time.Now().UnixNano()
}

// Build deals seats and roles with a rng seeded from seed. The narrator is
// left for the caller to attach.
func (f *File) Build(seed int64) (werewolf.Config, error) {
	rng := rand.New(rand.NewSource(seed))

	var seats []werewolf.Seat
	if len(f.Players) > 0 {
		for _, p := range f.Players {
			pers, err := role.ParsePersonality(p.Personality)
			if err != nil {
				return werewolf.Config{}, err
			}
			seats = append(seats, werewolf.Seat{Name: strings.TrimSpace(p.Name), Personality: pers})
		}
	} else {
		cast, err := RandomCast(f.RandomPlayers, rng)
		if err != nil {
			return werewolf.Config{}, err
		}
		seats = cast
	}

	roles, err := role.Assign(f.Roles, len(seats))
	if err != nil {
		return werewolf.Config{}, fmt.Errorf("setup: %w", err)
	}
	if f.ShuffleRoles {
		role.Shuffle(roles, rng)
	}
	return werewolf.Config{Seats: seats, Roles: roles, Seed: seed}, nil
}
