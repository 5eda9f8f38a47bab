package chronicle

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"wolfsim/narrate"
	"wolfsim/werewolf"
)

// GenerateChronicle plays a whole game from spec and records it as a tape.
// The same spec always yields the same tape.
func GenerateChronicle(spec GameSpec) (*Tape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	w, err := werewolf.NewWorld(ns.config())
	if err != nil {
		return nil, &ChronicleError{StepIndex: -1, Reason: ReasonEngineInitFailed, Message: err.Error()}
	}

	b := newTapeBuilder(ns.gameID)
	if err := b.push(TypeGameStart, GameStartPayload(ns.seed, w.Agents(), ns.godView)); err != nil {
		return nil, &ChronicleError{StepIndex: -1, Reason: ReasonEngineInitFailed, Message: err.Error()}
	}

	for !w.IsTerminal() {
		if w.Round() >= ns.maxRounds {
			return nil, &ChronicleError{
				StepIndex: int32(w.Round()),
				Reason:    ReasonNoWinner,
				Message:   fmt.Sprintf("no winner after %d rounds", w.Round()),
			}
		}
		rec, err := w.AdvanceRound()
		if err != nil {
			return nil, &ChronicleError{StepIndex: int32(w.Round() + 1), Reason: ReasonRoundFailed, Message: err.Error()}
		}
		if err := b.push(TypeRound, RoundPayload(rec, ns.godView)); err != nil {
			return nil, &ChronicleError{StepIndex: int32(rec.Round), Reason: ReasonRoundFailed, Message: err.Error()}
		}
	}

	if err := b.push(TypeGameEnd, GameEndPayload(w)); err != nil {
		return nil, &ChronicleError{StepIndex: int32(w.Round()), Reason: ReasonRoundFailed, Message: err.Error()}
	}

	return &Tape{
		TapeVersion: 1,
		GameID:      ns.gameID,
		Seed:        ns.seed,
		Events:      b.events,
	}, nil
}

type tapeBuilder struct {
	gameID string
	seq    uint64
	events []TapeEvent
}

func newTapeBuilder(gameID string) *tapeBuilder {
	return &tapeBuilder{
		gameID: gameID,
		events: make([]TapeEvent, 0, 16),
	}
}

func (b *tapeBuilder) push(typ string, payload map[string]any) error {
	b.seq++
	env, err := NewEnvelope(b.gameID, b.seq, typ, payload)
	if err != nil {
		return fmt.Errorf("build %s envelope: %w", typ, err)
	}
	b64, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}
	b.events = append(b.events, TapeEvent{
		Type:        typ,
		Seq:         b.seq,
		Value:       env,
		EnvelopeB64: b64,
	})
	return nil
}

// Prepared is a validated spec ready to seat a live world.
type Prepared struct {
	GameID    string
	Seed      int64
	MaxRounds int
	GodView   bool
	Config    werewolf.Config
}

// Prepare validates spec the way GenerateChronicle does and returns the
// engine config without playing any rounds.
func Prepare(spec GameSpec) (Prepared, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return Prepared{}, err
	}
	return Prepared{
		GameID:    ns.gameID,
		Seed:      ns.seed,
		MaxRounds: ns.maxRounds,
		GodView:   ns.godView,
		Config:    ns.config(),
	}, nil
}

func (ns normalizedSpec) config() werewolf.Config {
	return werewolf.Config{
		Seats:    ns.seats,
		Roles:    ns.roles,
		Seed:     ns.seed,
		Narrator: narrate.NewRuleNarrator(nil, ns.seed),
	}
}

// PayloadOf extracts the payload struct from an envelope.
func PayloadOf(env *structpb.Struct) *structpb.Struct {
	if env == nil {
		return nil
	}
	return env.GetFields()["payload"].GetStructValue()
}
