package werewolf

import "wolfsim/role"

// Event is one entry in a round's log. Actor, InnerThought and the tactical
// fields are set only where they apply.
type Event struct {
	Kind         EventKind `json:"kind"`
	Text         string    `json:"text"`
	Actor        string    `json:"actor,omitempty"`
	InnerThought string    `json:"innerThought,omitempty"`
	Role         role.Role `json:"role,omitempty"`
	Strategy     Strategy  `json:"strategy,omitempty"`
	Target       string    `json:"target,omitempty"`
}

// Vote is one ballot cast in the evening.
type Vote struct {
	Voter  string `json:"voter"`
	Target string `json:"target"`
}

// Sighting is a seer or medium result produced on a given night.
type Sighting struct {
	Observer string       `json:"observer"`
	Target   string       `json:"target"`
	Verdict  role.Verdict `json:"verdict"`
	Medium   bool         `json:"medium,omitempty"`
}

// Resolution summarises a round for relationship reconstruction.
//
// Attacked and Guarded normally hold the pending night choices carried into
// the next morning. When the game ends in the morning they hold the values
// resolved that morning instead, since no night follows.
type Resolution struct {
	Executed      string     `json:"executed,omitempty"`
	Attacked      string     `json:"attacked,omitempty"`
	Guarded       string     `json:"guarded,omitempty"`
	MorningVictim string     `json:"morningVictim,omitempty"`
	Votes         []Vote     `json:"votes,omitempty"`
	Sightings     []Sighting `json:"sightings,omitempty"`
}

// RoundRecord is immutable once appended to the world log.
type RoundRecord struct {
	Round      int        `json:"round"`
	Events     []Event    `json:"events"`
	Resolution Resolution `json:"resolution"`
}

func (r RoundRecord) clone() RoundRecord {
	out := r
	out.Events = append([]Event(nil), r.Events...)
	out.Resolution.Votes = append([]Vote(nil), r.Resolution.Votes...)
	out.Resolution.Sightings = append([]Sighting(nil), r.Resolution.Sightings...)
	return out
}

// Executions counts execution events in the record.
func (r RoundRecord) Executions() int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == EventExecution {
			n++
		}
	}
	return n
}

// Chats returns the chat events in speaking order.
func (r RoundRecord) Chats() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == EventChat {
			out = append(out, e)
		}
	}
	return out
}

// Public strips inner thoughts and seer sightings for spectators without
// god view.
func (r RoundRecord) Public() RoundRecord {
	out := r.clone()
	for i := range out.Events {
		out.Events[i].InnerThought = ""
		out.Events[i].Strategy = StrategyNone
		if out.Events[i].Kind == EventChat {
			out.Events[i].Role = role.Invalid
		}
	}
	out.Resolution.Sightings = nil
	out.Resolution.Attacked = ""
	out.Resolution.Guarded = ""
	return out
}
