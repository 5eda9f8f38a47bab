package chronicle

import (
	"google.golang.org/protobuf/types/known/structpb"

	"wolfsim/role"
)

type GameSpec struct {
	GameID    string       `json:"game_id,omitempty"`
	Seats     []SeatSpec   `json:"seats"`
	Roles     *role.Counts `json:"roles,omitempty"`
	RNG       *RNGSpec     `json:"rng,omitempty"`
	MaxRounds int          `json:"max_rounds,omitempty"`
	GodView   bool         `json:"god_view,omitempty"`
}

// SeatSpec names one player. Role is either set on every seat or on none, in
// which case Roles counts are dealt with the spec's rng.
type SeatSpec struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Role        string `json:"role,omitempty"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

type Tape struct {
	TapeVersion int         `json:"tape_version"`
	GameID      string      `json:"game_id"`
	Seed        int64       `json:"seed"`
	Events      []TapeEvent `json:"events"`
}

type TapeEvent struct {
	Type        string           `json:"type"`
	Seq         uint64           `json:"seq"`
	Value       *structpb.Struct `json:"value,omitempty"`
	EnvelopeB64 string           `json:"envelope_b64,omitempty"`
}
