package werewolf

import (
	"errors"
	"reflect"
	"testing"

	"wolfsim/role"
)

func TestNewWorld_RejectsBadRoster(t *testing.T) {
	cases := map[string]Config{
		"empty": {},
		"length mismatch": {
			Seats: []Seat{{Name: "A", Personality: role.Timid}},
			Roles: []role.Role{role.Wolf, role.Villager},
		},
		"duplicate name": {
			Seats: []Seat{{Name: "A", Personality: role.Timid}, {Name: "A", Personality: role.Timid}},
			Roles: []role.Role{role.Wolf, role.Villager},
		},
		"invalid role": {
			Seats: []Seat{{Name: "A", Personality: role.Timid}},
			Roles: []role.Role{role.Invalid},
		},
	}
	for name, cfg := range cases {
		if _, err := NewWorld(cfg); err == nil {
			t.Fatalf("%s: expected construction error", name)
		}
	}
}

// Wolf + 3 villagers; the village lynches Y on day 1 and the wolf takes one
// more at night, leaving 1 vs 1 on the second morning.
func TestScenario_WolfWinsOnParity(t *testing.T) {
	w := newTestWorld(t, 11,
		castMember{"W", role.Wolf},
		castMember{"X", role.Villager},
		castMember{"Y", role.Villager},
		castMember{"Z", role.Villager},
	)
	pinDistrust(w, "Y")

	r1 := mustAdvance(t, w)
	if r1.Resolution.Executed != "Y" {
		t.Fatalf("round 1 executed %q, want Y", r1.Resolution.Executed)
	}
	attacked := r1.Resolution.Attacked
	if attacked != "X" && attacked != "Z" {
		t.Fatalf("round 1 attack target %q", attacked)
	}
	if w.IsTerminal() {
		t.Fatalf("game should continue after round 1")
	}

	r2 := mustAdvance(t, w)
	deaths := eventsOf(r2, EventDeath)
	if len(deaths) != 1 || deaths[0].Actor != attacked {
		t.Fatalf("round 2 deaths: %+v", deaths)
	}
	if len(w.LivingAgents()) != 2 {
		t.Fatalf("living after round 2 morning: %d", len(w.LivingAgents()))
	}
	if !w.IsTerminal() || w.WinningTeam() != role.TeamWolf {
		t.Fatalf("expected wolf win, terminal=%v winner=%s", w.IsTerminal(), w.WinningTeam())
	}
	if len(eventsOf(r2, EventChat)) != 0 {
		t.Fatalf("no discussion should happen after a morning win")
	}
	if _, err := w.AdvanceRound(); !errors.Is(err, ErrGameOver) {
		t.Fatalf("advance on terminal world: %v", err)
	}
	if len(w.Log()) != 2 {
		t.Fatalf("terminal advance must not log, have %d records", len(w.Log()))
	}
}

// The seer's night-1 look at the lone wolf decides its day-2 vote.
func TestScenario_SeerVotesKnownWolf(t *testing.T) {
	for seed := int64(1); seed <= 400; seed++ {
		w := newTestWorld(t, seed,
			castMember{"S", role.Seer},
			castMember{"W", role.Wolf},
			castMember{"V1", role.Villager},
			castMember{"V2", role.Villager},
			castMember{"V3", role.Villager},
		)
		pinDistrust(w, "V3")
		r1 := mustAdvance(t, w)
		if r1.Resolution.Executed != "V3" {
			t.Fatalf("seed %d: round 1 executed %q, want V3", seed, r1.Resolution.Executed)
		}
		seer := w.byName["S"]
		if len(seer.KnownGuilty()) == 0 || r1.Resolution.Attacked == "S" {
			continue
		}
		if seer.KnownGuilty()[0] != "W" {
			t.Fatalf("seed %d: seer knows %v as guilty", seed, seer.KnownGuilty())
		}

		r2 := mustAdvance(t, w)
		if len(r2.Chats()) == 0 {
			t.Fatalf("seed %d: round 2 had no discussion: %+v", seed, r2.Events)
		}
		vote, ok := voteOf(r2, "S")
		if !ok || vote != "W" {
			t.Fatalf("seed %d: seer voted %q, want W", seed, vote)
		}
		if seer.Strategy() != StrategyRevealTruth {
			t.Fatalf("seed %d: seer strategy %s", seed, seer.Strategy())
		}
		return
	}
	t.Fatalf("no seed had the seer investigate the wolf")
}

// A guard on the attacked agent leaves the next morning without a death.
func TestScenario_BodyguardBlocksAttack(t *testing.T) {
	for seed := int64(1); seed <= 400; seed++ {
		w := newTestWorld(t, seed,
			castMember{"G", role.Bodyguard},
			castMember{"W", role.Wolf},
			castMember{"V1", role.Villager},
			castMember{"V2", role.Villager},
			castMember{"V3", role.Villager},
		)
		pinDistrust(w, "V3")
		r1 := mustAdvance(t, w)
		res := r1.Resolution
		if res.Attacked == "" || res.Attacked != res.Guarded {
			continue
		}

		r2 := mustAdvance(t, w)
		if d := eventsOf(r2, EventDeath); len(d) != 0 {
			t.Fatalf("seed %d: blocked attack still killed: %+v", seed, d)
		}
		if r2.Resolution.MorningVictim != "" {
			t.Fatalf("seed %d: morning victim %q", seed, r2.Resolution.MorningVictim)
		}
		if !w.byName[res.Attacked].Alive() {
			t.Fatalf("seed %d: guarded agent died", seed)
		}
		sys := eventsOf(r2, EventSystem)
		if len(sys) == 0 {
			t.Fatalf("seed %d: missing no-victim event", seed)
		}

		g, err := w.Relations(1, false)
		if err != nil {
			t.Fatalf("Relations err: %v", err)
		}
		blocked := false
		for _, e := range g.Edges {
			if e.Kind == EdgeGuard && e.Success {
				blocked = true
			}
		}
		if !blocked {
			t.Fatalf("seed %d: relations graph lacks the successful guard edge", seed)
		}
		return
	}
	t.Fatalf("no seed produced a guarded attack")
}

func TestScenario_WolvesAlreadyWinAtConstruction(t *testing.T) {
	w := newTestWorld(t, 5,
		castMember{"W1", role.Wolf},
		castMember{"W2", role.Wolf},
		castMember{"W3", role.Wolf},
		castMember{"V1", role.Villager},
		castMember{"V2", role.Villager},
	)
	o := w.CheckWin()
	if o.Winner != role.TeamWolf || o.WolfTeam != 3 || o.Others != 2 {
		t.Fatalf("pre-round check: %+v", o)
	}

	rec := mustAdvance(t, w)
	if !w.IsTerminal() || w.WinningTeam() != role.TeamWolf {
		t.Fatalf("expected wolf win on the first morning")
	}
	if len(eventsOf(rec, EventChat)) != 0 || rec.Executions() != 0 {
		t.Fatalf("discussion ran before the win check: %+v", rec.Events)
	}
	if len(eventsOf(rec, EventWin)) != 1 {
		t.Fatalf("expected one win event")
	}
}

func TestCheckWin_Idempotent(t *testing.T) {
	w := newTestWorld(t, 9,
		castMember{"W", role.Wolf},
		castMember{"M", role.Madman},
		castMember{"V1", role.Villager},
		castMember{"V2", role.Villager},
		castMember{"V3", role.Villager},
	)
	first := w.CheckWin()
	second := w.CheckWin()
	if first != second {
		t.Fatalf("CheckWin not idempotent: %+v vs %+v", first, second)
	}
	if first.Decided() {
		t.Fatalf("2 vs 3 should be undecided: %+v", first)
	}

	w.byName["V1"].kill()
	if o := w.CheckWin(); o.Winner != role.TeamWolf {
		t.Fatalf("madman counts toward the wolf side: %+v", o)
	}
	w.byName["W"].kill()
	w.byName["M"].kill()
	if o := w.CheckWin(); o.Winner != role.TeamVillage {
		t.Fatalf("no wolf-team left: %+v", o)
	}
}

func TestAdvanceRound_RollsBackOnInvalidState(t *testing.T) {
	w := newTestWorld(t, 3,
		castMember{"W", role.Wolf},
		castMember{"V1", role.Villager},
		castMember{"V2", role.Villager},
		castMember{"V3", role.Villager},
	)
	pinDistrust(w, "V3")
	mustAdvance(t, w)
	before := w.Agents()
	w.pendingAttack = "nobody"

	_, err := w.AdvanceRound()
	if !IsInvalidState(err) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
	if w.Round() != 1 || len(w.Log()) != 1 {
		t.Fatalf("round=%d log=%d after abort", w.Round(), len(w.Log()))
	}
	if !reflect.DeepEqual(before, w.Agents()) {
		t.Fatalf("agent state changed by aborted round")
	}
}

func TestClaimsReachOtherLivingAgents(t *testing.T) {
	narrator := NarratorFunc(func(req NarrationRequest) Narration {
		n := Narration{Text: "I vote " + req.Target}
		if req.Role == role.Seer {
			n.Claim = role.Seer
		}
		return n
	})
	cfg := Config{
		Seed:     4,
		Narrator: narrator,
		Seats: []Seat{
			{Name: "S", Personality: role.Logical},
			{Name: "W", Personality: role.Psycho},
			{Name: "V1", Personality: role.Timid},
			{Name: "V2", Personality: role.Aggressive},
			{Name: "V3", Personality: role.Intuitive},
		},
		Roles: []role.Role{role.Seer, role.Wolf, role.Villager, role.Villager, role.Villager},
	}
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld err: %v", err)
	}
	mustAdvance(t, w)

	if _, ok := w.byName["S"].Memory().ClaimOf("S"); ok {
		t.Fatalf("claimant should not observe its own claim")
	}
	for _, name := range []string{"W", "V1", "V2", "V3"} {
		got, ok := w.byName[name].Memory().ClaimOf("S")
		if !ok || got != role.Seer {
			t.Fatalf("%s did not hear the seer claim", name)
		}
	}
}

func fullCastWorld(t *testing.T, seed int64) *World {
	return newTestWorld(t, seed,
		castMember{"Ann", role.Wolf},
		castMember{"Ben", role.Villager},
		castMember{"Cid", role.Seer},
		castMember{"Dee", role.Wolf},
		castMember{"Eve", role.Medium},
		castMember{"Fay", role.Madman},
		castMember{"Gus", role.Bodyguard},
		castMember{"Hal", role.Villager},
		castMember{"Ivy", role.Villager},
	)
}

func TestRunToEnd_Invariants(t *testing.T) {
	for seed := int64(1); seed <= 60; seed++ {
		w := fullCastWorld(t, seed)
		if err := w.RunToEnd(50); err != nil {
			t.Fatalf("seed %d: RunToEnd err: %v", seed, err)
		}
		if !w.IsTerminal() || w.WinningTeam() == role.TeamNone {
			t.Fatalf("seed %d: finished without a winner", seed)
		}
		for i, rec := range w.Log() {
			if rec.Round != i+1 {
				t.Fatalf("seed %d: record %d has round %d", seed, i, rec.Round)
			}
			discussed := len(rec.Chats()) > 0
			if discussed && rec.Executions() != 1 {
				t.Fatalf("seed %d round %d: %d executions", seed, rec.Round, rec.Executions())
			}
			if !discussed && rec.Executions() != 0 {
				t.Fatalf("seed %d round %d: execution without discussion", seed, rec.Round)
			}
		}
		for _, a := range w.Agents() {
			innocent := make(map[string]bool)
			for _, n := range a.KnownInnocent {
				innocent[n] = true
				if a.Trust[n] != 1.0 {
					t.Fatalf("seed %d: %s trusts innocent %s at %v", seed, a.Name, n, a.Trust[n])
				}
			}
			for _, n := range a.KnownGuilty {
				if innocent[n] {
					t.Fatalf("seed %d: %s holds %s in both sets", seed, a.Name, n)
				}
				if a.Trust[n] != 0.0 {
					t.Fatalf("seed %d: %s trusts guilty %s at %v", seed, a.Name, n, a.Trust[n])
				}
			}
		}
	}
}

func TestSeededGamesAreDeterministic(t *testing.T) {
	a := fullCastWorld(t, 42)
	b := fullCastWorld(t, 42)
	if err := a.RunToEnd(50); err != nil {
		t.Fatalf("RunToEnd a err: %v", err)
	}
	if err := b.RunToEnd(50); err != nil {
		t.Fatalf("RunToEnd b err: %v", err)
	}
	if !reflect.DeepEqual(a.Log(), b.Log()) {
		t.Fatalf("same seed produced different logs")
	}
	if !reflect.DeepEqual(a.Agents(), b.Agents()) {
		t.Fatalf("same seed produced different final agents")
	}
}

func TestLogIsACopy(t *testing.T) {
	w := fullCastWorld(t, 8)
	mustAdvance(t, w)
	l := w.Log()
	l[0].Events[0].Text = "tampered"
	if w.Log()[0].Events[0].Text == "tampered" {
		t.Fatalf("Log exposed internal storage")
	}
}

// pointVote makes from trust every other agent fully except to.
func pointVote(w *World, from, to string) {
	a := w.byName[from]
	for _, o := range w.agents {
		if o.name != from {
			a.trust[o.name] = 1.0
		}
	}
	a.trust[to] = 0.0
}

func TestEvening_TieBreakPicksAmongLeaders(t *testing.T) {
	executed := map[string]int{}
	for seed := int64(1); seed <= 200; seed++ {
		w := newTestWorld(t, seed,
			castMember{"W", role.Wolf},
			castMember{"A", role.Villager},
			castMember{"B", role.Villager},
			castMember{"C", role.Villager},
		)
		pointVote(w, "A", "B")
		pointVote(w, "B", "A")
		pointVote(w, "C", "A")
		pointVote(w, "W", "B")

		rec := mustAdvance(t, w)
		tally, ok := w.byName["C"].Memory().Votes(1)
		if !ok || tally.Count("A") != 2 || tally.Count("B") != 2 {
			t.Fatalf("seed %d: tally %v, want A:2 B:2", seed, tally.Map())
		}
		ex := rec.Resolution.Executed
		if ex != "A" && ex != "B" {
			t.Fatalf("seed %d: executed %q outside the tied leaders", seed, ex)
		}
		executed[ex]++
	}
	if executed["A"] == 0 || executed["B"] == 0 {
		t.Fatalf("tie-break never varied over seeds: %v", executed)
	}
}

func TestEvening_EveryVoterRecordsTally(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		w := fullCastWorld(t, seed)
		rec := mustAdvance(t, w)

		want := map[string]int{}
		for _, v := range rec.Resolution.Votes {
			want[v.Target]++
		}
		if len(rec.Resolution.Votes) != len(w.agents) {
			t.Fatalf("seed %d: %d votes cast, want %d", seed, len(rec.Resolution.Votes), len(w.agents))
		}
		// The executed agent voted too, so it holds the tally as well.
		for _, a := range w.agents {
			tally, ok := a.Memory().Votes(1)
			if !ok {
				t.Fatalf("seed %d: %s has no tally for round 1", seed, a.name)
			}
			if !reflect.DeepEqual(tally.Map(), want) {
				t.Fatalf("seed %d: %s tally %v, want %v", seed, a.name, tally.Map(), want)
			}
		}
	}
}

func TestNight_MediumLearnsExecutedVerdict(t *testing.T) {
	cases := []struct {
		lynched string
		want    role.Verdict
	}{
		{"V3", role.VerdictHuman},
		// Only the Wolf role reads as wolf; a Madman reads human.
		{"Mad", role.VerdictHuman},
	}
	for _, tc := range cases {
		w := newTestWorld(t, 5,
			castMember{"W", role.Wolf},
			castMember{"Med", role.Medium},
			castMember{"Mad", role.Madman},
			castMember{"V1", role.Villager},
			castMember{"V2", role.Villager},
			castMember{"V3", role.Villager},
		)
		pinDistrust(w, tc.lynched)

		rec := mustAdvance(t, w)
		if rec.Resolution.Executed != tc.lynched {
			t.Fatalf("executed %q, want %s", rec.Resolution.Executed, tc.lynched)
		}
		got, ok := w.byName["Med"].Memory().MediumSighting(1)
		if !ok {
			t.Fatalf("medium recorded nothing after executing %s", tc.lynched)
		}
		if got.Target != tc.lynched || got.Verdict != tc.want || got.Round != 1 {
			t.Fatalf("medium sighting %+v, want %s/%s", got, tc.lynched, tc.want)
		}
		found := false
		for _, s := range rec.Resolution.Sightings {
			if s.Medium && s.Observer == "Med" && s.Target == tc.lynched && s.Verdict == tc.want {
				found = true
			}
		}
		if !found {
			t.Fatalf("round record lacks the medium sighting: %+v", rec.Resolution.Sightings)
		}
	}
}
