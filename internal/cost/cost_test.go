package cost

import (
	"math"
	"testing"

	"github.com/skeindb/skein/internal/graph"
)

func testModel() Model {
	return Model{SupernodeWeight: 1, SuperedgeWeight: 1, CorrectionWeight: 1}
}

// buildStore creates a store with every node in its own supernode and the
// given edges in place.
func buildStore(t *testing.T, edges [][2]graph.NodeID) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	for _, e := range edges {
		s.EnsureNode(e[0])
		s.EnsureNode(e[1])
		if err := s.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", e[0], e[1], err)
		}
	}
	return s
}

// mergeInto moves every member of b into a.
func mergeInto(s *graph.Store, a, b graph.SupernodeID) {
	members := make([]graph.NodeID, 0, s.SupernodeSize(b))
	for n := range s.Members(b) {
		members = append(members, n)
	}
	for _, n := range members {
		s.MoveNode(n, a)
	}
}

func snOf(t *testing.T, s *graph.Store, n graph.NodeID) graph.SupernodeID {
	t.Helper()
	sn, ok := s.SupernodeOf(n)
	if !ok {
		t.Fatalf("node %d has no supernode", n)
	}
	return sn
}

func TestPairCost(t *testing.T) {
	m := testModel()
	cases := []struct {
		name            string
		edges, capacity int
		want            float64
		dense           bool
	}{
		{"empty pair", 0, 45, 0, false},
		{"single edge", 1, 45, 1, false},
		{"complete pair", 45, 45, 1, true},
		{"near complete", 40, 45, 6, true},
		{"tie goes sparse", 2, 3, 2, false},
		{"sparse wins", 3, 100, 3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.PairCost(tc.edges, tc.capacity); got != tc.want {
				t.Errorf("PairCost(%d, %d) = %v, want %v", tc.edges, tc.capacity, got, tc.want)
			}
			if got := m.UseSuperedge(tc.edges, tc.capacity); got != tc.dense {
				t.Errorf("UseSuperedge(%d, %d) = %v, want %v", tc.edges, tc.capacity, got, tc.dense)
			}
		})
	}
}

func TestPairCapacity(t *testing.T) {
	s := buildStore(t, [][2]graph.NodeID{{1, 2}, {3, 4}, {5, 6}})
	a := snOf(t, s, 1)
	mergeInto(s, a, snOf(t, s, 2))
	mergeInto(s, a, snOf(t, s, 3))
	b := snOf(t, s, 4)
	mergeInto(s, b, snOf(t, s, 5))

	if got := PairCapacity(s, a, a); got != 3 {
		t.Errorf("self capacity of size 3 = %d, want 3", got)
	}
	if got := PairCapacity(s, a, b); got != 6 {
		t.Errorf("cross capacity 3x2 = %d, want 6", got)
	}
}

// TestMergeDeltaMatchesTotal verifies the local delta against a full before
// and after recomputation on the same store.
func TestMergeDeltaMatchesTotal(t *testing.T) {
	m := testModel()
	s := buildStore(t, [][2]graph.NodeID{
		{1, 2}, {1, 3}, {2, 3}, {3, 4}, {4, 5}, {5, 6}, {2, 5},
	})

	// Grow one supernode a few steps, checking the delta at each merge.
	steps := [][2]graph.NodeID{{1, 2}, {1, 3}, {4, 5}, {1, 4}}
	for _, step := range steps {
		a, b := snOf(t, s, step[0]), snOf(t, s, step[1])
		before := m.Total(s)
		delta := m.MergeDelta(s, a, b)
		mergeInto(s, a, b)
		after := m.Total(s)
		if diff := after - before; math.Abs(diff-delta) > 1e-9 {
			t.Fatalf("merge %v: MergeDelta = %v, actual change = %v", step, delta, diff)
		}
	}
}

func TestMergeDeltaSelf(t *testing.T) {
	m := testModel()
	s := buildStore(t, [][2]graph.NodeID{{1, 2}})
	a := snOf(t, s, 1)
	if d := m.MergeDelta(s, a, a); !math.IsInf(d, 1) {
		t.Errorf("merging a supernode with itself should cost +Inf, got %v", d)
	}
}

// TestSplitDeltaMatchesTotal verifies the split delta against a full before
// and after recomputation.
func TestSplitDeltaMatchesTotal(t *testing.T) {
	m := testModel()
	s := buildStore(t, [][2]graph.NodeID{
		{1, 2}, {2, 3}, {1, 3}, {1, 4}, {3, 5}, {4, 5},
	})
	a := snOf(t, s, 1)
	mergeInto(s, a, snOf(t, s, 2))
	mergeInto(s, a, snOf(t, s, 3))

	for _, n := range []graph.NodeID{2, 1} {
		before := m.Total(s)
		delta := m.SplitDelta(s, n)
		fresh := s.NewSupernode()
		s.MoveNode(n, fresh)
		after := m.Total(s)
		if diff := after - before; math.Abs(diff-delta) > 1e-9 {
			t.Fatalf("split %d: SplitDelta = %v, actual change = %v", n, delta, diff)
		}
	}
}

func TestSplitDeltaSingleton(t *testing.T) {
	m := testModel()
	s := buildStore(t, [][2]graph.NodeID{{1, 2}})
	if d := m.SplitDelta(s, 1); !math.IsInf(d, 1) {
		t.Errorf("splitting out of a singleton should cost +Inf, got %v", d)
	}
}

func TestTotalCliqueVersusSingletons(t *testing.T) {
	m := testModel()
	edges := make([][2]graph.NodeID, 0, 10)
	for u := graph.NodeID(1); u <= 5; u++ {
		for v := u + 1; v <= 5; v++ {
			edges = append(edges, [2]graph.NodeID{u, v})
		}
	}
	s := buildStore(t, edges)

	// All singletons: one supernode and one correction per edge.
	if got := m.Total(s); got != 5+10 {
		t.Fatalf("singleton total = %v, want 15", got)
	}

	// Fully merged clique: one supernode, one self superedge, no corrections.
	a := snOf(t, s, 1)
	for n := graph.NodeID(2); n <= 5; n++ {
		mergeInto(s, a, snOf(t, s, n))
	}
	if got := m.Total(s); got != 1+1 {
		t.Fatalf("merged clique total = %v, want 2", got)
	}
}
