package role

import (
	"fmt"
	"strings"
)

// Role 角色枚举
//
// 0 is reserved as invalid so a zero-valued Role never passes as a real seat.
type Role byte

const (
	Invalid Role = iota
	Wolf
	Villager
	Seer
	Madman
	Bodyguard
	Medium
)

// All lists every playable role in declaration order.
var All = []Role{Wolf, Villager, Seer, Madman, Bodyguard, Medium}

var RoleDictionary = map[Role]string{
	Wolf:      "wolf",
	Villager:  "villager",
	Seer:      "seer",
	Madman:    "madman",
	Bodyguard: "bodyguard",
	Medium:    "medium",
}

var roleIcons = map[Role]string{
	Wolf:      "🐺",
	Villager:  "👤",
	Seer:      "🔮",
	Madman:    "🤡",
	Bodyguard: "🛡️",
	Medium:    "🕯️",
}

func (r Role) String() string {
	if s, ok := RoleDictionary[r]; ok {
		return s
	}
	return "invalid"
}

// Title is the capitalized display name.
func (r Role) Title() string {
	s := r.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func (r Role) Icon() string {
	if s, ok := roleIcons[r]; ok {
		return s
	}
	return "?"
}

func (r Role) Valid() bool {
	_, ok := RoleDictionary[r]
	return ok
}

// Team returns the faction a role wins with.
func (r Role) Team() Team {
	switch r {
	case Wolf, Madman:
		return TeamWolf
	case Villager, Seer, Bodyguard, Medium:
		return TeamVillage
	}
	return TeamNone
}

// ParseRole accepts the lowercase dictionary names, case-insensitively.
func ParseRole(s string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for r, name := range RoleDictionary {
		if name == key {
			return r, nil
		}
	}
	return Invalid, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", byte(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Team 阵营
type Team byte

const (
	TeamNone Team = iota
	TeamWolf
	TeamVillage
)

func (t Team) String() string {
	switch t {
	case TeamWolf:
		return "wolves"
	case TeamVillage:
		return "village"
	}
	return "none"
}

// Verdict is what a seer or medium sees when looking at someone.
type Verdict byte

const (
	VerdictHuman Verdict = iota + 1
	VerdictWolf
)

func (v Verdict) String() string {
	switch v {
	case VerdictWolf:
		return "wolf"
	case VerdictHuman:
		return "human"
	}
	return "unknown"
}

// VerdictOf only reports the Wolf role itself as guilty; a Madman reads human.
func VerdictOf(r Role) Verdict {
	if r == Wolf {
		return VerdictWolf
	}
	return VerdictHuman
}

func (t Team) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Team) UnmarshalText(b []byte) error {
	switch string(b) {
	case "wolves":
		*t = TeamWolf
	case "village":
		*t = TeamVillage
	case "none", "":
		*t = TeamNone
	default:
		return fmt.Errorf("unknown team %q", string(b))
	}
	return nil
}

func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Verdict) UnmarshalText(b []byte) error {
	switch string(b) {
	case "wolf":
		*v = VerdictWolf
	case "human":
		*v = VerdictHuman
	default:
		return fmt.Errorf("unknown verdict %q", string(b))
	}
	return nil
}
