package werewolf

import "wolfsim/role"

// AgentView is a read-only copy of one agent.
type AgentView struct {
	Name          string             `json:"name"`
	Role          role.Role          `json:"role,omitempty"`
	Personality   role.Personality   `json:"personality"`
	Alive         bool               `json:"alive"`
	Revealed      bool               `json:"revealed"`
	Claimed       bool               `json:"claimed"`
	Trust         map[string]float64 `json:"trust,omitempty"`
	KnownInnocent []string           `json:"knownInnocent,omitempty"`
	KnownGuilty   []string           `json:"knownGuilty,omitempty"`
}

func (a *Agent) View() AgentView {
	trust := make(map[string]float64, len(a.trust))
	for k, v := range a.trust {
		trust[k] = v
	}
	return AgentView{
		Name:          a.name,
		Role:          a.role,
		Personality:   a.personality,
		Alive:         a.alive,
		Revealed:      a.revealed,
		Claimed:       a.claimed,
		Trust:         trust,
		KnownInnocent: a.innocent.list(),
		KnownGuilty:   a.guilty.list(),
	}
}

// Public hides what spectators cannot know: roles of living agents, trust
// and knowledge.
func (v AgentView) Public() AgentView {
	out := AgentView{
		Name:        v.Name,
		Personality: v.Personality,
		Alive:       v.Alive,
		Revealed:    v.Revealed,
		Claimed:     v.Claimed,
	}
	if v.Revealed {
		out.Role = v.Role
	}
	return out
}

// Agents returns every agent in seating order.
func (w *World) Agents() []AgentView {
	out := make([]AgentView, 0, len(w.agents))
	for _, a := range w.agents {
		out = append(out, a.View())
	}
	return out
}

func (w *World) LivingAgents() []AgentView {
	out := make([]AgentView, 0, len(w.agents))
	for _, a := range w.agents {
		if a.alive {
			out = append(out, a.View())
		}
	}
	return out
}

func (w *World) Agent(name string) (AgentView, error) {
	a, ok := w.byName[name]
	if !ok {
		return AgentView{}, ErrUnknownAgent
	}
	return a.View(), nil
}

func (w *World) IsTerminal() bool { return w.terminal }

// WinningTeam is role.TeamNone until the game ends.
func (w *World) WinningTeam() role.Team { return w.winner }

func (w *World) Round() int   { return w.round }
func (w *World) Phase() Phase { return w.phase }

// Log returns a copy of every appended round record.
func (w *World) Log() []RoundRecord {
	out := make([]RoundRecord, len(w.log))
	for i, r := range w.log {
		out[i] = r.clone()
	}
	return out
}

// Record returns the record for one round.
func (w *World) Record(round int) (RoundRecord, error) {
	if round < 1 || round > len(w.log) {
		return RoundRecord{}, ErrUnknownRound
	}
	return w.log[round-1].clone(), nil
}
