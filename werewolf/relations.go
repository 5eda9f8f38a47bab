package werewolf

import (
	"fmt"
	"strings"

	"wolfsim/role"
)

type NodeState byte

const (
	NodeAlive  NodeState = 1
	NodeDead   NodeState = 2
	NodeVictim NodeState = 3 // died during this round
)

var NodeStateDictionary = map[NodeState]string{
	NodeAlive:  "alive",
	NodeDead:   "dead",
	NodeVictim: "victim",
}

func (s NodeState) String() string { return NodeStateDictionary[s] }

func (s NodeState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type EdgeKind byte

const (
	EdgeSuspect EdgeKind = 1 // day vote
	EdgeAttack  EdgeKind = 2
	EdgeGuard   EdgeKind = 3
	EdgeSight   EdgeKind = 4 // seer result, god view only
)

var EdgeKindDictionary = map[EdgeKind]string{
	EdgeSuspect: "suspect",
	EdgeAttack:  "attack",
	EdgeGuard:   "guard",
	EdgeSight:   "sight",
}

func (k EdgeKind) String() string { return EdgeKindDictionary[k] }

func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

type Node struct {
	Name        string           `json:"name"`
	Role        role.Role        `json:"role,omitempty"`
	Personality role.Personality `json:"personality"`
	State       NodeState        `json:"state"`
}

type Edge struct {
	From    string       `json:"from"`
	To      string       `json:"to"`
	Kind    EdgeKind     `json:"kind"`
	Verdict role.Verdict `json:"verdict,omitempty"`
	// guard edges: the attack was blocked
	Success bool `json:"success,omitempty"`
}

// Graph is the relationship picture at the end of one round.
type Graph struct {
	Round int    `json:"round"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Relations rebuilds the relationship graph for a logged round. Without god
// view, roles of living agents and seer results stay hidden.
func (w *World) Relations(round int, godView bool) (Graph, error) {
	if round < 1 || round > len(w.log) {
		return Graph{}, ErrUnknownRound
	}
	diedBefore := make(map[string]bool)
	for _, r := range w.log[:round-1] {
		markDeaths(diedBefore, r.Resolution)
	}
	rec := w.log[round-1]
	diedNow := make(map[string]bool)
	markDeaths(diedNow, rec.Resolution)

	g := Graph{Round: round}
	for _, a := range w.agents {
		n := Node{Name: a.name, Personality: a.personality, State: NodeAlive}
		switch {
		case diedBefore[a.name]:
			n.State = NodeDead
		case diedNow[a.name]:
			n.State = NodeVictim
		}
		if godView || n.State != NodeAlive {
			n.Role = a.role
		}
		g.Nodes = append(g.Nodes, n)
	}

	res := rec.Resolution
	for _, v := range res.Votes {
		g.Edges = append(g.Edges, Edge{From: v.Voter, To: v.Target, Kind: EdgeSuspect})
	}
	standing := func(a *Agent) bool { return !diedBefore[a.name] && !diedNow[a.name] }
	for _, a := range w.agents {
		if !standing(a) {
			continue
		}
		if a.role == role.Wolf && res.Attacked != "" {
			g.Edges = append(g.Edges, Edge{From: a.name, To: res.Attacked, Kind: EdgeAttack})
		}
		if a.role == role.Bodyguard && res.Guarded != "" {
			g.Edges = append(g.Edges, Edge{
				From:    a.name,
				To:      res.Guarded,
				Kind:    EdgeGuard,
				Success: res.Guarded == res.Attacked,
			})
		}
	}
	if godView {
		for _, r := range w.log[:round] {
			for _, s := range r.Resolution.Sightings {
				if s.Medium {
					continue
				}
				g.Edges = append(g.Edges, Edge{From: s.Observer, To: s.Target, Kind: EdgeSight, Verdict: s.Verdict})
			}
		}
	}
	return g, nil
}

func markDeaths(m map[string]bool, res Resolution) {
	if res.Executed != "" {
		m[res.Executed] = true
	}
	if res.MorningVictim != "" {
		m[res.MorningVictim] = true
	}
}

// DOT renders the graph in Graphviz format.
func (g Graph) DOT() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "digraph round%d {\n", g.Round)
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=9];\n")
	for _, n := range g.Nodes {
		label := n.Name
		if n.Role.Valid() {
			label += fmt.Sprintf("\\n(%s %s)", n.Role.Icon(), n.Role.Title())
		}
		switch n.State {
		case NodeVictim:
			fmt.Fprintf(&sb, "  %q [label=%q, fillcolor=\"#ffeeee\", color=red, penwidth=2];\n", n.Name, label)
		case NodeDead:
			fmt.Fprintf(&sb, "  %q [label=%q, fillcolor=\"#d3d3d3\", fontcolor=\"#666666\"];\n", n.Name, "x "+label)
		default:
			fmt.Fprintf(&sb, "  %q [label=%q, fillcolor=\"#ffffff\"];\n", n.Name, label+"\\n"+n.Personality.String())
		}
	}
	for _, e := range g.Edges {
		var attrs string
		switch e.Kind {
		case EdgeSuspect:
			attrs = `color=black, label="?", fontcolor="#999999"`
		case EdgeAttack:
			attrs = `color=red, label="attack", fontcolor=red, penwidth=3`
		case EdgeGuard:
			if e.Success {
				attrs = `color=green, label="GJ", fontcolor=green, penwidth=3, style=bold`
			} else {
				attrs = `color=green, label="guard", fontcolor=green, style=bold`
			}
		case EdgeSight:
			if e.Verdict == role.VerdictWolf {
				attrs = `color=purple, label="black", fontcolor=purple, penwidth=3, style=bold`
			} else {
				attrs = `color=cyan, label="white", fontcolor=cyan, style=dashed`
			}
		}
		fmt.Fprintf(&sb, "  %q -> %q [%s];\n", e.From, e.To, attrs)
	}
	sb.WriteString("}\n")
	return sb.String()
}
