package werewolf

import (
	"fmt"

	"wolfsim/role"
)

// Facts are the structured, role-specific details a narrator may mention.
type Facts struct {
	// Seer: the earliest investigation result.
	FirstSighting *SeerSighting
	// Medium: the most recent sighting.
	LatestMedium *MediumSighting
	// Bodyguard: who it intends to protect.
	GuardTarget string
	// Whether the speaker has already made a public role claim.
	Claimed bool
}

// NarrationRequest describes one decision to be put into words.
type NarrationRequest struct {
	Round       int
	Speaker     string
	Role        role.Role
	Personality role.Personality
	Strategy    Strategy
	Target      string
	Facts       Facts
}

// Narration is what a narrator returns. Claim is role.Invalid unless the line
// is a public role claim.
type Narration struct {
	Text         string
	InnerThought string
	Claim        role.Role
}

// IsClaim reports whether the narration publicly claims a role.
func (n Narration) IsClaim() bool { return n.Claim.Valid() }

// Narrator turns decisions into display text. Implementations must mention
// the target or result they were handed; the engine logs the text verbatim.
type Narrator interface {
	Narrate(req NarrationRequest) Narration
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(req NarrationRequest) Narration

func (f NarratorFunc) Narrate(req NarrationRequest) Narration { return f(req) }

// plainNarrator is used when no narrator is configured.
type plainNarrator struct{}

func (plainNarrator) Narrate(req NarrationRequest) Narration {
	return Narration{
		Text:         fmt.Sprintf("I vote for %s.", req.Target),
		InnerThought: fmt.Sprintf("[%s] %s", req.Strategy, req.Target),
	}
}
