package role

import (
	"fmt"
	"strings"
)

// Personality only changes how an agent talks, never what it decides.
type Personality byte

const (
	PersonalityInvalid Personality = iota
	Aggressive
	Timid
	Logical
	Intuitive
	Psycho
)

var Personalities = []Personality{Aggressive, Timid, Logical, Intuitive, Psycho}

type personalityInfo struct {
	name  string
	style string
	emoji string
}

var personalityTable = map[Personality]personalityInfo{
	Aggressive: {name: "aggressive", style: "aggressive", emoji: "🔥"},
	Timid:      {name: "timid", style: "scared", emoji: "💧"},
	Logical:    {name: "logical", style: "logical", emoji: "🧠"},
	Intuitive:  {name: "intuitive", style: "intuitive", emoji: "⚡"},
	Psycho:     {name: "psycho", style: "psycho", emoji: "🎭"},
}

func (p Personality) String() string {
	if info, ok := personalityTable[p]; ok {
		return info.name
	}
	return "invalid"
}

// Style is the tag narrators key their line tables on.
func (p Personality) Style() string {
	return personalityTable[p].style
}

func (p Personality) Emoji() string {
	return personalityTable[p].emoji
}

func (p Personality) Valid() bool {
	_, ok := personalityTable[p]
	return ok
}

func ParsePersonality(s string) (Personality, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for p, info := range personalityTable {
		if info.name == key || info.style == key {
			return p, nil
		}
	}
	return PersonalityInvalid, fmt.Errorf("unknown personality %q", s)
}

func (p Personality) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid personality %d", byte(p))
	}
	return []byte(p.String()), nil
}

func (p *Personality) UnmarshalText(b []byte) error {
	parsed, err := ParsePersonality(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
