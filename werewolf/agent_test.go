package werewolf

import (
	"math/rand"
	"testing"

	"wolfsim/role"
)

func agentsFor(cast ...castMember) []*Agent {
	out := make([]*Agent, 0, len(cast))
	names := make([]string, 0, len(cast))
	for _, c := range cast {
		out = append(out, NewAgent(c.name, c.role, role.Logical))
		names = append(names, c.name)
	}
	rng := rand.New(rand.NewSource(7))
	for _, a := range out {
		a.InitializeTrust(names, rng)
	}
	return out
}

func TestInitializeTrust_NeutralWithJitter(t *testing.T) {
	agents := agentsFor(
		castMember{"A", role.Villager},
		castMember{"B", role.Villager},
		castMember{"C", role.Wolf},
	)
	a := agents[0]
	if _, ok := a.trust["A"]; ok {
		t.Fatalf("agent should not hold trust toward itself")
	}
	for _, other := range []string{"B", "C"} {
		v := a.Trust(other)
		if v < neutralTrust-trustJitter || v > neutralTrust+trustJitter {
			t.Fatalf("trust toward %s out of range: %v", other, v)
		}
	}
}

func TestRecordObservation_SeerReportPinsTrust(t *testing.T) {
	agents := agentsFor(
		castMember{"Seer", role.Seer},
		castMember{"W", role.Wolf},
		castMember{"V", role.Villager},
	)
	seer := agents[0]

	seer.RecordObservation(1, SeerReport{Target: "W", Verdict: role.VerdictWolf})
	seer.RecordObservation(1, SeerReport{Target: "V", Verdict: role.VerdictHuman})

	if got := seer.Trust("W"); got != 0.0 {
		t.Fatalf("guilty trust: got %v, want 0", got)
	}
	if got := seer.Trust("V"); got != 1.0 {
		t.Fatalf("innocent trust: got %v, want 1", got)
	}
	if g := seer.KnownGuilty(); len(g) != 1 || g[0] != "W" {
		t.Fatalf("known guilty: %v", g)
	}
	if s, ok := seer.Memory().FirstSeerSighting(); !ok || s.Target != "W" {
		t.Fatalf("first sighting: %+v ok=%v", s, ok)
	}
}

func TestRecordObservation_ConflictingReportKeepsSetsDisjoint(t *testing.T) {
	agents := agentsFor(
		castMember{"Seer", role.Seer},
		castMember{"W", role.Wolf},
	)
	seer := agents[0]
	seer.RecordObservation(1, SeerReport{Target: "W", Verdict: role.VerdictWolf})
	seer.RecordObservation(2, MediumReport{Round: 2, Target: "W", Verdict: role.VerdictHuman})

	for _, n := range seer.KnownInnocent() {
		if n == "W" {
			t.Fatalf("W landed in both knowledge sets")
		}
	}
	if got := seer.Trust("W"); got != 0.0 {
		t.Fatalf("trust moved after conflicting report: %v", got)
	}
	if _, ok := seer.Memory().MediumSighting(2); !ok {
		t.Fatalf("conflicting report should still be remembered")
	}
}

func TestRecordObservation_AnyRoleLearnsFromReports(t *testing.T) {
	agents := agentsFor(
		castMember{"V", role.Villager},
		castMember{"W", role.Wolf},
	)
	v := agents[0]
	v.RecordObservation(3, MediumReport{Round: 3, Target: "W", Verdict: role.VerdictWolf})
	if g := v.KnownGuilty(); len(g) != 1 || g[0] != "W" {
		t.Fatalf("villager should learn from a medium report: %v", g)
	}
}

func TestChooseTarget_LowestTrustFirstOnTies(t *testing.T) {
	agents := agentsFor(
		castMember{"A", role.Villager},
		castMember{"B", role.Villager},
		castMember{"C", role.Villager},
		castMember{"D", role.Villager},
	)
	a := agents[0]
	a.trust["B"], a.trust["C"], a.trust["D"] = 0.3, 0.3, 0.6
	a.ChooseStrategy(1, agents, rand.New(rand.NewSource(1)))
	vote, guard := a.ChooseTarget(agents, rand.New(rand.NewSource(1)))
	if vote != "B" {
		t.Fatalf("vote: got %s, want B", vote)
	}
	if guard != "" {
		t.Fatalf("villager should not guard, got %s", guard)
	}
}

func TestChooseTarget_BodyguardGuardsMostTrusted(t *testing.T) {
	agents := agentsFor(
		castMember{"G", role.Bodyguard},
		castMember{"B", role.Villager},
		castMember{"C", role.Villager},
		castMember{"D", role.Villager},
	)
	g := agents[0]
	g.trust["B"], g.trust["C"], g.trust["D"] = 0.2, 0.9, 0.9
	_, guard := g.ChooseTarget(agents, rand.New(rand.NewSource(1)))
	if guard != "C" {
		t.Fatalf("guard: got %s, want C", guard)
	}
}

func TestChooseTarget_StealthWolfSparesTeammate(t *testing.T) {
	agents := agentsFor(
		castMember{"W1", role.Wolf},
		castMember{"W2", role.Wolf},
		castMember{"V", role.Villager},
	)
	w1 := agents[0]
	w1.trust["W2"], w1.trust["V"] = 0.0, 0.9
	w1.strategy = StrategyStealth
	vote, _ := w1.ChooseTarget(agents, rand.New(rand.NewSource(1)))
	if vote != "V" {
		t.Fatalf("stealth wolf vote: got %s, want V", vote)
	}

	w1.strategy = StrategyExposeSelf
	vote, _ = w1.ChooseTarget(agents, rand.New(rand.NewSource(1)))
	if vote != "W2" {
		t.Fatalf("expose-self wolf vote: got %s, want W2", vote)
	}
}

func TestChooseTarget_SeerOverridesWithKnownWolf(t *testing.T) {
	agents := agentsFor(
		castMember{"S", role.Seer},
		castMember{"W", role.Wolf},
		castMember{"V", role.Villager},
	)
	s := agents[0]
	s.RecordObservation(1, SeerReport{Target: "W", Verdict: role.VerdictWolf})
	s.trust["V"] = 0.0 // would win on trust alone if not for the override
	vote, _ := s.ChooseTarget(agents, rand.New(rand.NewSource(1)))
	if vote != "W" {
		t.Fatalf("seer vote: got %s, want W", vote)
	}
}

func TestChooseTarget_SeerExcludesInnocentsFallsBackToRandom(t *testing.T) {
	agents := agentsFor(
		castMember{"S", role.Seer},
		castMember{"V", role.Villager},
	)
	s := agents[0]
	s.RecordObservation(1, SeerReport{Target: "V", Verdict: role.VerdictHuman})
	vote, _ := s.ChooseTarget(agents, rand.New(rand.NewSource(1)))
	if vote != "V" {
		t.Fatalf("fallback should pick the only other agent, got %q", vote)
	}
}

func TestChooseStrategy_RoundGated(t *testing.T) {
	agents := agentsFor(
		castMember{"W", role.Wolf},
		castMember{"M", role.Madman},
		castMember{"S", role.Seer},
		castMember{"V", role.Villager},
	)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		if got := agents[0].ChooseStrategy(1, agents, rng); got != StrategyStealth {
			t.Fatalf("wolf round 1 strategy: %s", got)
		}
		if got := agents[1].ChooseStrategy(1, agents, rng); got != StrategyChaos {
			t.Fatalf("madman round 1 strategy: %s", got)
		}
	}
	if got := agents[2].ChooseStrategy(1, agents, rng); got != StrategyWait {
		t.Fatalf("seer without knowledge: %s", got)
	}
	agents[2].RecordObservation(1, SeerReport{Target: "W", Verdict: role.VerdictWolf})
	if got := agents[2].ChooseStrategy(2, agents, rng); got != StrategyRevealTruth {
		t.Fatalf("seer with a known wolf: %s", got)
	}
	if got := agents[3].ChooseStrategy(2, agents, rng); got != StrategyVillageThought {
		t.Fatalf("villager strategy: %s", got)
	}

	fake := 0
	for i := 0; i < 1000; i++ {
		if agents[1].ChooseStrategy(2, agents, rng) == StrategyFakeClaim {
			fake++
		}
	}
	if fake < 600 || fake > 800 {
		t.Fatalf("madman fake-claim rate off: %d/1000", fake)
	}
}

func TestDecide_PassesFactsAndMarksClaim(t *testing.T) {
	agents := agentsFor(
		castMember{"S", role.Seer},
		castMember{"W", role.Wolf},
		castMember{"V", role.Villager},
	)
	s := agents[0]
	s.RecordObservation(1, SeerReport{Target: "W", Verdict: role.VerdictWolf})

	var seen NarrationRequest
	narrator := NarratorFunc(func(req NarrationRequest) Narration {
		seen = req
		return Narration{Text: "W is a wolf", Claim: role.Seer}
	})
	d := s.Decide(2, agents, rand.New(rand.NewSource(1)), narrator)

	if d.VoteTarget != "W" || seen.Target != "W" {
		t.Fatalf("decision target %q, narrated target %q", d.VoteTarget, seen.Target)
	}
	if seen.Facts.FirstSighting == nil || seen.Facts.FirstSighting.Target != "W" {
		t.Fatalf("narrator did not receive the first sighting: %+v", seen.Facts)
	}
	if !s.Claimed() {
		t.Fatalf("claim should be remembered on the agent")
	}
}
