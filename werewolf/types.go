package werewolf

import "fmt"

// Phase 回合阶段
type Phase byte

const (
	PhaseSetup      Phase = 0
	PhaseMorning    Phase = 1
	PhaseDiscussion Phase = 2
	PhaseEvening    Phase = 3
	PhaseNight      Phase = 4
	PhaseTerminal   Phase = 5
)

var PhaseDictionary = map[Phase]string{
	PhaseSetup:      "setup",
	PhaseMorning:    "morning",
	PhaseDiscussion: "discussion",
	PhaseEvening:    "evening",
	PhaseNight:      "night",
	PhaseTerminal:   "terminal",
}

func (p Phase) String() string {
	if s, ok := PhaseDictionary[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", byte(p))
}

// Strategy is the per-round tactic an agent settles on before talking.
type Strategy byte

const (
	StrategyNone           Strategy = 0
	StrategyStealth        Strategy = 1 // wolf: blend in, never vote a teammate
	StrategyExposeSelf     Strategy = 2 // wolf: willing to vote out a teammate for tempo
	StrategyChaos          Strategy = 3 // madman: random noise
	StrategyFakeClaim      Strategy = 4 // madman: fabricate an investigative claim
	StrategyRevealTruth    Strategy = 5 // seer holding a known wolf
	StrategyWait           Strategy = 6 // seer with nothing to reveal yet
	StrategyVillageThought Strategy = 7
)

var StrategyDictionary = map[Strategy]string{
	StrategyNone:           "none",
	StrategyStealth:        "stealth",
	StrategyExposeSelf:     "expose_self",
	StrategyChaos:          "chaos",
	StrategyFakeClaim:      "fake_claim",
	StrategyRevealTruth:    "reveal_truth",
	StrategyWait:           "wait",
	StrategyVillageThought: "village_thought",
}

func (s Strategy) String() string {
	if v, ok := StrategyDictionary[s]; ok {
		return v
	}
	return fmt.Sprintf("strategy(%d)", byte(s))
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Strategy) UnmarshalText(b []byte) error {
	for k, v := range StrategyDictionary {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown strategy %q", string(b))
}

// EventKind tags a round log entry.
type EventKind byte

const (
	EventSystem    EventKind = 1
	EventPhase     EventKind = 2
	EventDeath     EventKind = 3
	EventExecution EventKind = 4
	EventChat      EventKind = 5
	EventWin       EventKind = 6
)

var EventKindDictionary = map[EventKind]string{
	EventSystem:    "system",
	EventPhase:     "phase",
	EventDeath:     "death",
	EventExecution: "execution",
	EventChat:      "chat",
	EventWin:       "win",
}

func (k EventKind) String() string {
	if v, ok := EventKindDictionary[k]; ok {
		return v
	}
	return fmt.Sprintf("event(%d)", byte(k))
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EventKind) UnmarshalText(b []byte) error {
	for kind, v := range EventKindDictionary {
		if v == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", string(b))
}

const (
	neutralTrust = 0.5
	trustJitter  = 0.1

	exposeSelfChance = 0.2
	fakeClaimChance  = 0.7
	tacticFromRound  = 2
)
