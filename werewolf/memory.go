package werewolf

import (
	"sort"

	"wolfsim/role"
)

// Observation is anything an agent can learn. The set of variants is closed:
// VoteObservation, RoleClaimObservation, SeerReport, MediumReport.
type Observation interface {
	observation()
}

// VoteObservation is the full public tally of one evening's vote.
type VoteObservation struct {
	Tally VoteTally
}

// RoleClaimObservation is a public claim heard during discussion.
type RoleClaimObservation struct {
	Claimant string
	Claimed  role.Role
}

// SeerReport is a night investigation result.
type SeerReport struct {
	Target  string
	Verdict role.Verdict
}

// MediumReport is what a medium sees of the agent executed on Round.
type MediumReport struct {
	Round   int
	Target  string
	Verdict role.Verdict
}

func (VoteObservation) observation()      {}
func (RoleClaimObservation) observation() {}
func (SeerReport) observation()           {}
func (MediumReport) observation()         {}

// VoteTally is an insertion-ordered name -> count map.
type VoteTally struct {
	order  []string
	counts map[string]int
}

func NewVoteTally() VoteTally {
	return VoteTally{counts: make(map[string]int)}
}

func (t *VoteTally) Add(name string) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

func (t VoteTally) Count(name string) int { return t.counts[name] }

func (t VoteTally) Len() int { return len(t.order) }

// Names returns voted-for names in first-vote order.
func (t VoteTally) Names() []string {
	return append([]string(nil), t.order...)
}

// Leaders returns the top count and every name that reached it, in first-vote order.
func (t VoteTally) Leaders() (int, []string) {
	top := 0
	var names []string
	for _, n := range t.order {
		c := t.counts[n]
		switch {
		case c > top:
			top = c
			names = []string{n}
		case c == top:
			names = append(names, n)
		}
	}
	return top, names
}

func (t VoteTally) Map() map[string]int {
	out := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

func (t VoteTally) Clone() VoteTally {
	return VoteTally{order: t.Names(), counts: t.Map()}
}

// SeerSighting is one stored seer result.
type SeerSighting struct {
	Target  string       `json:"target"`
	Verdict role.Verdict `json:"verdict"`
}

// MediumSighting is one stored medium result.
type MediumSighting struct {
	Round   int          `json:"round"`
	Target  string       `json:"target"`
	Verdict role.Verdict `json:"verdict"`
}

// RoleClaim is a remembered public claim.
type RoleClaim struct {
	Claimant string
	Claimed  role.Role
}

// Memory keeps each observation kind in its own ordered store.
type Memory struct {
	votes map[int]VoteTally

	claimOrder []string
	claims     map[string]role.Role

	seer      []SeerSighting
	seerIndex map[string]int

	medium map[int]MediumSighting
}

func newMemory() Memory {
	return Memory{
		votes:     make(map[int]VoteTally),
		claims:    make(map[string]role.Role),
		seerIndex: make(map[string]int),
		medium:    make(map[int]MediumSighting),
	}
}

func (m *Memory) recordVotes(round int, t VoteTally) {
	m.votes[round] = t.Clone()
}

func (m *Memory) recordClaim(claimant string, claimed role.Role) {
	if _, ok := m.claims[claimant]; !ok {
		m.claimOrder = append(m.claimOrder, claimant)
	}
	m.claims[claimant] = claimed
}

// recordSeer overwrites an earlier result for the same target in place.
func (m *Memory) recordSeer(s SeerSighting) {
	if i, ok := m.seerIndex[s.Target]; ok {
		m.seer[i] = s
		return
	}
	m.seerIndex[s.Target] = len(m.seer)
	m.seer = append(m.seer, s)
}

func (m *Memory) recordMedium(s MediumSighting) {
	m.medium[s.Round] = s
}

// Votes returns the tally observed on round.
func (m *Memory) Votes(round int) (VoteTally, bool) {
	t, ok := m.votes[round]
	if !ok {
		return VoteTally{}, false
	}
	return t.Clone(), true
}

// VoteRounds lists rounds with a stored tally, ascending.
func (m *Memory) VoteRounds() []int {
	out := make([]int, 0, len(m.votes))
	for r := range m.votes {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

func (m *Memory) Claims() []RoleClaim {
	out := make([]RoleClaim, 0, len(m.claimOrder))
	for _, c := range m.claimOrder {
		out = append(out, RoleClaim{Claimant: c, Claimed: m.claims[c]})
	}
	return out
}

func (m *Memory) ClaimOf(name string) (role.Role, bool) {
	r, ok := m.claims[name]
	return r, ok
}

func (m *Memory) SeerSightings() []SeerSighting {
	return append([]SeerSighting(nil), m.seer...)
}

// FirstSeerSighting is the earliest investigation still on record.
func (m *Memory) FirstSeerSighting() (SeerSighting, bool) {
	if len(m.seer) == 0 {
		return SeerSighting{}, false
	}
	return m.seer[0], true
}

func (m *Memory) MediumSighting(round int) (MediumSighting, bool) {
	s, ok := m.medium[round]
	return s, ok
}

// LatestMediumSighting is the sighting with the highest round.
func (m *Memory) LatestMediumSighting() (MediumSighting, bool) {
	var (
		best  MediumSighting
		found bool
	)
	for r, s := range m.medium {
		if !found || r > best.Round {
			best = s
			found = true
		}
	}
	return best, found
}

func (m *Memory) clone() Memory {
	out := newMemory()
	for r, t := range m.votes {
		out.votes[r] = t.Clone()
	}
	out.claimOrder = append([]string(nil), m.claimOrder...)
	for k, v := range m.claims {
		out.claims[k] = v
	}
	out.seer = append([]SeerSighting(nil), m.seer...)
	for k, v := range m.seerIndex {
		out.seerIndex[k] = v
	}
	for k, v := range m.medium {
		out.medium[k] = v
	}
	return out
}

// nameSet is an insertion-ordered string set.
type nameSet struct {
	order []string
	set   map[string]struct{}
}

func (s *nameSet) add(name string) {
	if s.set == nil {
		s.set = make(map[string]struct{})
	}
	if _, ok := s.set[name]; ok {
		return
	}
	s.set[name] = struct{}{}
	s.order = append(s.order, name)
}

func (s nameSet) has(name string) bool {
	_, ok := s.set[name]
	return ok
}

func (s nameSet) list() []string {
	return append([]string(nil), s.order...)
}

func (s nameSet) size() int { return len(s.order) }

func (s nameSet) clone() nameSet {
	out := nameSet{set: make(map[string]struct{}, len(s.set))}
	for _, n := range s.order {
		out.add(n)
	}
	return out
}
