package werewolf

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"wolfsim/role"
)

// World drives the day/night state machine. It is not safe for concurrent
// use; callers sharing a World serialize access themselves.
type World struct {
	cfg      Config
	rng      *rand.Rand
	logger   Logger
	narrator Narrator

	agents []*Agent
	byName map[string]*Agent

	round    int
	phase    Phase
	terminal bool
	winner   role.Team

	log []RoundRecord

	// night choices carried from NightSetup of round N into Morning of N+1
	pendingAttack string
	pendingGuard  string
}

func NewWorld(cfg Config) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	rng := cfg.Rand
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	narrator := cfg.Narrator
	if narrator == nil {
		narrator = plainNarrator{}
	}

	w := &World{
		cfg:      cfg,
		rng:      rng,
		logger:   cfg.Logger,
		narrator: narrator,
		agents:   make([]*Agent, 0, len(cfg.Seats)),
		byName:   make(map[string]*Agent, len(cfg.Seats)),
		phase:    PhaseSetup,
	}
	names := make([]string, 0, len(cfg.Seats))
	for i, s := range cfg.Seats {
		a := NewAgent(s.Name, cfg.Roles[i], s.Personality)
		w.agents = append(w.agents, a)
		w.byName[a.name] = a
		names = append(names, a.name)
	}
	for _, a := range w.agents {
		a.InitializeTrust(names, w.rng)
	}
	return w, nil
}

// AdvanceRound plays exactly one round. On a terminal world it changes
// nothing and returns ErrGameOver. If the round hits an InvalidStateError
// the world is restored to its pre-round state and nothing is logged.
func (w *World) AdvanceRound() (RoundRecord, error) {
	if w.terminal {
		return RoundRecord{}, ErrGameOver
	}
	cp := w.checkpoint()
	rec, err := w.playRound()
	if err != nil {
		w.restore(cp)
		w.logf("[World] round %d aborted: %v", cp.round+1, err)
		return RoundRecord{}, err
	}
	w.log = append(w.log, rec)
	if w.terminal {
		w.logf("[World] game over after round %d: %s win", rec.Round, w.winner)
	}
	return rec.clone(), nil
}

// RunToEnd advances until terminal or until maxRounds rounds have been
// played in total (maxRounds <= 0 means no limit).
func (w *World) RunToEnd(maxRounds int) error {
	for !w.terminal {
		if maxRounds > 0 && w.round >= maxRounds {
			return fmt.Errorf("no winner after %d rounds", w.round)
		}
		if _, err := w.AdvanceRound(); err != nil {
			return err
		}
	}
	return nil
}

type roundBuilder struct {
	rec RoundRecord
}

func (b *roundBuilder) emit(e Event) {
	b.rec.Events = append(b.rec.Events, e)
}

func (b *roundBuilder) system(text string) {
	b.emit(Event{Kind: EventSystem, Text: text})
}

func (b *roundBuilder) phase(text string) {
	b.emit(Event{Kind: EventPhase, Text: text})
}

func (w *World) playRound() (RoundRecord, error) {
	w.round++
	w.logf("[World] round %d begins, %d alive", w.round, len(w.living()))
	b := &roundBuilder{rec: RoundRecord{Round: w.round}}

	if err := w.morning(b); err != nil {
		return RoundRecord{}, err
	}
	if w.settle(b) {
		return b.rec, nil
	}
	if err := w.discussion(b); err != nil {
		return RoundRecord{}, err
	}
	if err := w.evening(b); err != nil {
		return RoundRecord{}, err
	}
	if w.settle(b) {
		return b.rec, nil
	}
	if err := w.night(b); err != nil {
		return RoundRecord{}, err
	}
	return b.rec, nil
}

func (w *World) morning(b *roundBuilder) error {
	w.phase = PhaseMorning
	if w.round == 1 {
		b.system("Day 1: the first morning comes to the village.")
		return nil
	}

	attacked, guarded := w.pendingAttack, w.pendingGuard
	w.pendingAttack, w.pendingGuard = "", ""
	b.rec.Resolution.Attacked = attacked
	b.rec.Resolution.Guarded = guarded

	if attacked == "" || attacked == guarded {
		b.system(fmt.Sprintf("Day %d: no one died last night. A peaceful morning.", w.round))
		return nil
	}
	victim, ok := w.byName[attacked]
	if !ok {
		return ErrInvalidState(fmt.Sprintf("attack target %q not on roster", attacked))
	}
	if !victim.alive {
		return ErrInvalidState(fmt.Sprintf("attack target %q already dead", attacked))
	}
	victim.kill()
	b.rec.Resolution.MorningVictim = victim.name
	b.emit(Event{
		Kind:  EventDeath,
		Text:  fmt.Sprintf("%s was found dead this morning. They were %s %s.", victim.name, victim.role.Icon(), victim.role.Title()),
		Actor: victim.name,
		Role:  victim.role,
	})
	return nil
}

func (w *World) discussion(b *roundBuilder) error {
	w.phase = PhaseDiscussion
	b.phase(fmt.Sprintf("Day %d: discussion", w.round))

	living := w.living()
	for _, a := range living {
		d := a.Decide(w.round, living, w.rng, w.narrator)
		if d.VoteTarget == "" {
			return ErrInvalidState(fmt.Sprintf("%s has no vote target", a.name))
		}
		if d.Narration.IsClaim() {
			for _, o := range living {
				if o != a {
					o.RecordObservation(w.round, RoleClaimObservation{Claimant: a.name, Claimed: d.Narration.Claim})
				}
			}
		}
		b.emit(Event{
			Kind:         EventChat,
			Text:         d.Narration.Text,
			Actor:        a.name,
			InnerThought: d.Narration.InnerThought,
			Role:         a.role,
			Strategy:     d.Strategy,
			Target:       d.VoteTarget,
		})
	}
	return nil
}

func (w *World) evening(b *roundBuilder) error {
	w.phase = PhaseEvening
	b.phase(fmt.Sprintf("Day %d: evening vote", w.round))

	living := w.living()
	tally := NewVoteTally()
	votes := make([]Vote, 0, len(living))
	for _, a := range living {
		t, ok := w.byName[a.voteTarget]
		if !ok || !t.alive {
			return ErrInvalidState(fmt.Sprintf("%s voted for %q who cannot be executed", a.name, a.voteTarget))
		}
		tally.Add(a.voteTarget)
		votes = append(votes, Vote{Voter: a.name, Target: a.voteTarget})
	}
	for _, a := range living {
		a.RecordObservation(w.round, VoteObservation{Tally: tally})
	}

	top, leaders := tally.Leaders()
	if len(leaders) == 0 {
		return ErrInvalidState("empty vote tally")
	}
	executed := w.byName[leaders[w.rng.Intn(len(leaders))]]
	executed.kill()

	b.rec.Resolution.Executed = executed.name
	b.rec.Resolution.Votes = votes
	b.emit(Event{
		Kind:  EventExecution,
		Text:  fmt.Sprintf("%s was executed with %d votes. They were %s %s.", executed.name, top, executed.role.Icon(), executed.role.Title()),
		Actor: executed.name,
		Role:  executed.role,
	})
	return nil
}

func (w *World) night(b *roundBuilder) error {
	w.phase = PhaseNight
	b.phase(fmt.Sprintf("Night %d falls", w.round))

	living := w.living()
	res := &b.rec.Resolution

	attack := ""
	if w.firstLiving(role.Wolf) != nil {
		var prey []*Agent
		for _, a := range living {
			if a.role != role.Wolf && a.role != role.Madman {
				prey = append(prey, a)
			}
		}
		if len(prey) == 0 {
			return ErrInvalidState("wolves alive but no one to attack")
		}
		attack = prey[w.rng.Intn(len(prey))].name
	}

	guard := ""
	if bg := w.firstLiving(role.Bodyguard); bg != nil {
		_, guard = bg.ChooseTarget(living, w.rng)
		if guard == "" {
			return ErrInvalidState(fmt.Sprintf("bodyguard %s found no one to guard", bg.name))
		}
	}

	if w.round == 1 {
		if seer := w.firstLiving(role.Seer); seer != nil {
			others := othersOf(seer, living)
			if len(others) == 0 {
				return ErrInvalidState("seer has no one to investigate")
			}
			t := others[w.rng.Intn(len(others))]
			v := role.VerdictOf(t.role)
			seer.RecordObservation(w.round, SeerReport{Target: t.name, Verdict: v})
			res.Sightings = append(res.Sightings, Sighting{Observer: seer.name, Target: t.name, Verdict: v})
		}
	}

	if medium := w.firstLiving(role.Medium); medium != nil && res.Executed != "" {
		ex := w.byName[res.Executed]
		// Same rule as the seer: only the Wolf role reads as wolf, a Madman reads human.
		v := role.VerdictOf(ex.role)
		medium.RecordObservation(w.round, MediumReport{Round: w.round, Target: ex.name, Verdict: v})
		res.Sightings = append(res.Sightings, Sighting{Observer: medium.name, Target: ex.name, Verdict: v, Medium: true})
	}

	w.pendingAttack, w.pendingGuard = attack, guard
	res.Attacked, res.Guarded = attack, guard
	return nil
}

// settle runs the win check and, on a verdict, logs it and ends the game.
func (w *World) settle(b *roundBuilder) bool {
	o := Judge(w.agents)
	if !o.Decided() {
		return false
	}
	w.terminal = true
	w.winner = o.Winner
	w.phase = PhaseTerminal
	b.emit(Event{Kind: EventWin, Text: o.Announcement()})
	return true
}

func (w *World) living() []*Agent {
	out := make([]*Agent, 0, len(w.agents))
	for _, a := range w.agents {
		if a.alive {
			out = append(out, a)
		}
	}
	return out
}

func (w *World) firstLiving(r role.Role) *Agent {
	for _, a := range w.agents {
		if a.alive && a.role == r {
			return a
		}
	}
	return nil
}

func othersOf(self *Agent, living []*Agent) []*Agent {
	out := make([]*Agent, 0, len(living))
	for _, a := range living {
		if a != self {
			out = append(out, a)
		}
	}
	return out
}

func (w *World) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}

type checkpoint struct {
	agents        []*Agent
	round         int
	phase         Phase
	terminal      bool
	winner        role.Team
	pendingAttack string
	pendingGuard  string
}

func (w *World) checkpoint() checkpoint {
	cp := checkpoint{
		agents:        make([]*Agent, len(w.agents)),
		round:         w.round,
		phase:         w.phase,
		terminal:      w.terminal,
		winner:        w.winner,
		pendingAttack: w.pendingAttack,
		pendingGuard:  w.pendingGuard,
	}
	for i, a := range w.agents {
		cp.agents[i] = a.clone()
	}
	return cp
}

// restore puts back agent state and world scalars. RNG draws are not rewound.
func (w *World) restore(cp checkpoint) {
	for i, a := range cp.agents {
		w.agents[i] = a
		w.byName[a.name] = a
	}
	w.round = cp.round
	w.phase = cp.phase
	w.terminal = cp.terminal
	w.winner = cp.winner
	w.pendingAttack = cp.pendingAttack
	w.pendingGuard = cp.pendingGuard
}

// IsInvalidState reports whether err came from a broken engine invariant.
func IsInvalidState(err error) bool {
	var ise InvalidStateError
	return errors.As(err, &ise)
}
