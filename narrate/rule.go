package narrate

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"wolfsim/role"
	"wolfsim/werewolf"
)

const guardAnnounceChance = 0.3

// RuleNarrator picks phrasebook lines by personality and speaks role reports
// on fixed days. It has its own rng so narration never shifts the world's draws.
type RuleNarrator struct {
	styles *StyleRegistry

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRuleNarrator creates a narrator over styles (nil means built-in). Seed 0
// is time-based.
func NewRuleNarrator(styles *StyleRegistry, seed int64) *RuleNarrator {
	if styles == nil {
		styles = DefaultStyles()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RuleNarrator{
		styles: styles,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Narrate implements werewolf.Narrator.
func (n *RuleNarrator) Narrate(req werewolf.NarrationRequest) werewolf.Narration {
	n.mu.Lock()
	defer n.mu.Unlock()

	insight := fmt.Sprintf("[%s] ", req.Strategy)
	f := req.Facts

	switch req.Role {
	case role.Seer:
		if req.Round == 2 && f.FirstSighting != nil {
			s := f.FirstSighting
			text := fmt.Sprintf("I am the Seer. Last night I looked at %s: %s.", s.Target, verdictWord(s.Verdict))
			if s.Verdict == role.VerdictWolf {
				text += " Execute them!"
			} else {
				text += " They can be trusted."
			}
			return werewolf.Narration{
				Text:         text,
				InnerThought: fmt.Sprintf("%sTime to tell the truth about %s.", insight, s.Target),
				Claim:        role.Seer,
			}
		}
	case role.Bodyguard:
		if req.Round > 1 && f.GuardTarget != "" && n.rng.Float64() < guardAnnounceChance {
			return werewolf.Narration{
				Text:         fmt.Sprintf("I will protect %s with everything I have.", f.GuardTarget),
				InnerThought: fmt.Sprintf("%s%s is the village's hope.", insight, f.GuardTarget),
			}
		}
	case role.Medium:
		if req.Round > 1 && f.LatestMedium != nil && f.LatestMedium.Round == req.Round-1 {
			m := f.LatestMedium
			return werewolf.Narration{
				Text:         fmt.Sprintf("Medium report: %s, executed yesterday, was %s.", m.Target, verdictWord(m.Verdict)),
				InnerThought: fmt.Sprintf("%sThat much is certain. Next is %s.", insight, req.Target),
				Claim:        role.Medium,
			}
		}
	case role.Madman:
		if req.Strategy == werewolf.StrategyFakeClaim && !f.Claimed {
			return werewolf.Narration{
				Text:         fmt.Sprintf("I am the real Seer. %s came up as a wolf last night.", req.Target),
				InnerThought: fmt.Sprintf("%sA little lie about %s should stir things up.", insight, req.Target),
				Claim:        role.Seer,
			}
		}
	}

	style := n.styles.Get(req.Personality.Style())
	if style == nil {
		return werewolf.Narration{
			Text:         fmt.Sprintf("I vote for %s.", req.Target),
			InnerThought: insight + req.Target,
		}
	}
	return werewolf.Narration{
		Text:         fill(style.Lines[n.rng.Intn(len(style.Lines))], req.Target),
		InnerThought: insight + fill(style.Thoughts[n.rng.Intn(len(style.Thoughts))], req.Target),
	}
}

func verdictWord(v role.Verdict) string {
	if v == role.VerdictWolf {
		return "a wolf"
	}
	return "human"
}
