package werewolf

import "wolfsim/role"

// Outcome is a win-check verdict over one set of agents.
type Outcome struct {
	Winner   role.Team `json:"winner"`
	WolfTeam int       `json:"wolfTeam"`
	Others   int       `json:"others"`
}

// Judge counts living agents by team. Village wins with no living wolf-team
// member; wolves win once they are at least as many as everyone else.
func Judge(agents []*Agent) Outcome {
	var o Outcome
	for _, a := range agents {
		if !a.alive {
			continue
		}
		if a.role.Team() == role.TeamWolf {
			o.WolfTeam++
		} else {
			o.Others++
		}
	}
	switch {
	case o.WolfTeam == 0:
		o.Winner = role.TeamVillage
	case o.WolfTeam >= o.Others:
		o.Winner = role.TeamWolf
	}
	return o
}

func (o Outcome) Decided() bool { return o.Winner != role.TeamNone }

func (o Outcome) Announcement() string {
	switch o.Winner {
	case role.TeamVillage:
		return "Village wins: every wolf has been removed."
	case role.TeamWolf:
		return "Wolves win: the village has fallen under their control."
	}
	return ""
}

// CheckWin evaluates the current living roster without changing anything.
func (w *World) CheckWin() Outcome { return Judge(w.agents) }
