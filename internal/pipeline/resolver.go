package pipeline

import (
	"sort"
	"strings"

	"github.com/phasegate/phasegate/internal/registry"
)

// Phase is a named ordering bucket holding its entries in registration
// order.
type Phase struct {
	Name    string
	Entries []*registry.Entry
}

// OrderConfig returns a copy of the caller-supplied phase order with the
// reserved ERROR and FINAL phases appended. Caller occurrences of the
// reserved names are dropped first so the two always occupy the last two
// positions, in that relative order.
func OrderConfig(names []string) []string {
	out := make([]string, 0, len(names)+2)
	for _, n := range names {
		if n == registry.PhaseError || n == registry.PhaseFinal {
			continue
		}
		out = append(out, n)
	}
	return append(out, registry.PhaseError, registry.PhaseFinal)
}

// ResolvePhases groups entries by phase tag and sorts the groups against
// the configured order.
//
// A phase named in the order sorts by its index. A phase absent from the
// order sorts before every named phase; two absent phases compare
// lexicographically. Entries keep registration order within their phase.
func ResolvePhases(entries []*registry.Entry, order []string) []Phase {
	groups := make(map[string]int)
	phases := make([]Phase, 0, len(order))

	for _, e := range entries {
		i, ok := groups[e.Phase]
		if !ok {
			i = len(phases)
			groups[e.Phase] = i
			phases = append(phases, Phase{Name: e.Phase})
		}
		phases[i].Entries = append(phases[i].Entries, e)
	}

	sort.SliceStable(phases, func(a, b int) bool {
		return comparePhases(phases[a].Name, phases[b].Name, order) < 0
	})

	return phases
}

// comparePhases orders two phase names against the configured order list.
// An absent phase carries index -1, which numerically sorts before every
// configured index.
func comparePhases(p1, p2 string, order []string) int {
	i1 := indexOf(order, p1)
	i2 := indexOf(order, p2)
	if i1 != -1 || i2 != -1 {
		return i1 - i2
	}
	return strings.Compare(p1, p2)
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}
