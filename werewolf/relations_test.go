package werewolf

import (
	"strings"
	"testing"

	"wolfsim/role"
)

func TestRelations_GodViewControlsRolesAndSightings(t *testing.T) {
	w := fullCastWorld(t, 21)
	mustAdvance(t, w)

	pub, err := w.Relations(1, false)
	if err != nil {
		t.Fatalf("Relations err: %v", err)
	}
	god, err := w.Relations(1, true)
	if err != nil {
		t.Fatalf("Relations god err: %v", err)
	}
	if len(pub.Nodes) != 9 || len(god.Nodes) != 9 {
		t.Fatalf("node count pub=%d god=%d", len(pub.Nodes), len(god.Nodes))
	}
	for _, n := range pub.Nodes {
		if n.State == NodeAlive && n.Role != role.Invalid {
			t.Fatalf("public graph leaked role of %s", n.Name)
		}
	}
	for _, n := range god.Nodes {
		if !n.Role.Valid() {
			t.Fatalf("god graph missing role of %s", n.Name)
		}
	}

	count := func(g Graph, k EdgeKind) int {
		c := 0
		for _, e := range g.Edges {
			if e.Kind == k {
				c++
			}
		}
		return c
	}
	if count(pub, EdgeSight) != 0 {
		t.Fatalf("public graph shows seer results")
	}
	rec, _ := w.Record(1)
	if rec.Executions() == 1 && count(pub, EdgeSuspect) != len(rec.Resolution.Votes) {
		t.Fatalf("suspect edges %d, votes %d", count(pub, EdgeSuspect), len(rec.Resolution.Votes))
	}
	if !w.IsTerminal() && w.byName["Cid"].Alive() && count(god, EdgeSight) != 1 {
		t.Fatalf("god graph should show the night-1 sighting")
	}

	dot := god.DOT()
	if !strings.HasPrefix(dot, "digraph round1 {") || !strings.Contains(dot, `"Ann"`) {
		t.Fatalf("unexpected DOT output:\n%s", dot)
	}
}

func TestRelations_UnknownRound(t *testing.T) {
	w := fullCastWorld(t, 2)
	if _, err := w.Relations(1, false); err != ErrUnknownRound {
		t.Fatalf("expected ErrUnknownRound, got %v", err)
	}
}
