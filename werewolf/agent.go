package werewolf

import (
	"math/rand"

	"wolfsim/role"
)

// Agent is one simulated player.
type Agent struct {
	name        string
	role        role.Role
	personality role.Personality

	alive    bool
	revealed bool
	claimed  bool

	trust    map[string]float64
	innocent nameSet
	guilty   nameSet
	memory   Memory

	// per-round scratch
	strategy    Strategy
	voteTarget  string
	guardTarget string
}

// Decision is the outcome of one agent's turn in discussion.
type Decision struct {
	Agent       string
	Round       int
	Strategy    Strategy
	VoteTarget  string
	GuardTarget string
	Request     NarrationRequest
	Narration   Narration
}

func NewAgent(name string, r role.Role, p role.Personality) *Agent {
	return &Agent{
		name:        name,
		role:        r,
		personality: p,
		alive:       true,
		trust:       make(map[string]float64),
		memory:      newMemory(),
	}
}

func (a *Agent) Name() string                  { return a.name }
func (a *Agent) Role() role.Role               { return a.role }
func (a *Agent) Personality() role.Personality { return a.personality }
func (a *Agent) Alive() bool                   { return a.alive }
func (a *Agent) Revealed() bool                { return a.revealed }
func (a *Agent) Claimed() bool                 { return a.claimed }
func (a *Agent) Strategy() Strategy            { return a.strategy }
func (a *Agent) VoteTarget() string            { return a.voteTarget }
func (a *Agent) GuardTarget() string           { return a.guardTarget }
func (a *Agent) Memory() *Memory               { return &a.memory }

// Trust returns the score toward name; unknown names are neutral.
func (a *Agent) Trust(name string) float64 {
	if v, ok := a.trust[name]; ok {
		return v
	}
	return neutralTrust
}

func (a *Agent) KnownInnocent() []string { return a.innocent.list() }
func (a *Agent) KnownGuilty() []string   { return a.guilty.list() }

func (a *Agent) kill() {
	a.alive = false
	a.revealed = true
}

// InitializeTrust seeds a neutral score with small noise toward every other name.
func (a *Agent) InitializeTrust(others []string, rng *rand.Rand) {
	for _, o := range others {
		if o == a.name {
			continue
		}
		a.trust[o] = neutralTrust + (rng.Float64()*2-1)*trustJitter
	}
}

// RecordObservation stores obs. Seer and medium reports update knowledge no
// matter what role the agent holds.
func (a *Agent) RecordObservation(round int, obs Observation) {
	switch o := obs.(type) {
	case VoteObservation:
		a.memory.recordVotes(round, o.Tally)
	case RoleClaimObservation:
		a.memory.recordClaim(o.Claimant, o.Claimed)
	case SeerReport:
		a.memory.recordSeer(SeerSighting{Target: o.Target, Verdict: o.Verdict})
		a.learnVerdict(o.Target, o.Verdict)
	case MediumReport:
		a.memory.recordMedium(MediumSighting{Round: o.Round, Target: o.Target, Verdict: o.Verdict})
		a.learnVerdict(o.Target, o.Verdict)
	}
}

// learnVerdict moves target into a knowledge set and pins its trust. The first
// certainty about a name wins; a contradicting later report is remembered but
// does not move the name.
func (a *Agent) learnVerdict(target string, v role.Verdict) {
	if v == role.VerdictWolf {
		if a.innocent.has(target) {
			return
		}
		a.guilty.add(target)
		a.trust[target] = 0.0
		return
	}
	if a.guilty.has(target) {
		return
	}
	a.innocent.add(target)
	a.trust[target] = 1.0
}

// ChooseStrategy picks this round's tactic.
func (a *Agent) ChooseStrategy(round int, living []*Agent, rng *rand.Rand) Strategy {
	switch a.role {
	case role.Wolf:
		if round >= tacticFromRound && rng.Float64() < exposeSelfChance {
			a.strategy = StrategyExposeSelf
		} else {
			a.strategy = StrategyStealth
		}
	case role.Madman:
		if round >= tacticFromRound && rng.Float64() < fakeClaimChance {
			a.strategy = StrategyFakeClaim
		} else {
			a.strategy = StrategyChaos
		}
	case role.Seer:
		if a.guilty.size() > 0 {
			a.strategy = StrategyRevealTruth
		} else {
			a.strategy = StrategyWait
		}
	default:
		a.strategy = StrategyVillageThought
	}
	return a.strategy
}

// ChooseTarget computes the day-vote target and, for bodyguards, the guard
// target. Ties go to the first agent in seating order.
func (a *Agent) ChooseTarget(living []*Agent, rng *rand.Rand) (vote, guard string) {
	a.voteTarget, a.guardTarget = "", ""

	others := make([]*Agent, 0, len(living))
	for _, o := range living {
		if o.alive && o.name != a.name {
			others = append(others, o)
		}
	}
	if len(others) == 0 {
		return "", ""
	}

	a.applyKnowledge()

	if a.role == role.Bodyguard {
		best := others[0]
		for _, o := range others[1:] {
			if a.Trust(o.name) > a.Trust(best.name) {
				best = o
			}
		}
		a.guardTarget = best.name
	}

	excluded := a.exclusions(living)
	var least *Agent
	for _, o := range others {
		if _, skip := excluded[o.name]; skip {
			continue
		}
		if least == nil || a.Trust(o.name) < a.Trust(least.name) {
			least = o
		}
	}

	switch known := a.livingGuilty(others); {
	case known != "":
		a.voteTarget = known
	case least != nil:
		a.voteTarget = least.name
	default:
		a.voteTarget = others[rng.Intn(len(others))].name
	}
	return a.voteTarget, a.guardTarget
}

// Decide runs strategy, targeting and narration for one discussion turn.
func (a *Agent) Decide(round int, living []*Agent, rng *rand.Rand, narrator Narrator) Decision {
	if narrator == nil {
		narrator = plainNarrator{}
	}
	strategy := a.ChooseStrategy(round, living, rng)
	vote, guard := a.ChooseTarget(living, rng)

	req := NarrationRequest{
		Round:       round,
		Speaker:     a.name,
		Role:        a.role,
		Personality: a.personality,
		Strategy:    strategy,
		Target:      vote,
		Facts:       a.facts(),
	}
	n := narrator.Narrate(req)
	if n.IsClaim() {
		a.claimed = true
	}
	return Decision{
		Agent:       a.name,
		Round:       round,
		Strategy:    strategy,
		VoteTarget:  vote,
		GuardTarget: guard,
		Request:     req,
		Narration:   n,
	}
}

func (a *Agent) facts() Facts {
	f := Facts{Claimed: a.claimed}
	switch a.role {
	case role.Seer:
		if s, ok := a.memory.FirstSeerSighting(); ok {
			f.FirstSighting = &s
		}
	case role.Medium:
		if s, ok := a.memory.LatestMediumSighting(); ok {
			f.LatestMedium = &s
		}
	case role.Bodyguard:
		f.GuardTarget = a.guardTarget
	}
	return f
}

func (a *Agent) applyKnowledge() {
	for _, n := range a.guilty.order {
		a.trust[n] = 0.0
	}
	for _, n := range a.innocent.order {
		a.trust[n] = 1.0
	}
}

func (a *Agent) exclusions(living []*Agent) map[string]struct{} {
	out := make(map[string]struct{})
	switch a.role {
	case role.Wolf:
		if a.strategy == StrategyExposeSelf {
			break
		}
		for _, o := range living {
			if o.alive && o.role == role.Wolf {
				out[o.name] = struct{}{}
			}
		}
	case role.Seer:
		for _, n := range a.innocent.order {
			out[n] = struct{}{}
		}
	}
	return out
}

// livingGuilty is the seer override: the first known wolf still alive.
func (a *Agent) livingGuilty(others []*Agent) string {
	if a.role != role.Seer {
		return ""
	}
	for _, g := range a.guilty.order {
		for _, o := range others {
			if o.name == g {
				return g
			}
		}
	}
	return ""
}

func (a *Agent) clone() *Agent {
	c := *a
	c.trust = make(map[string]float64, len(a.trust))
	for k, v := range a.trust {
		c.trust[k] = v
	}
	c.innocent = a.innocent.clone()
	c.guilty = a.guilty.clone()
	c.memory = a.memory.clone()
	return &c
}
