package graph

import (
	"errors"
	"testing"
)

func TestEdgeLifecycle(t *testing.T) {
	s := NewStore()
	s.EnsureNode(1)
	s.EnsureNode(2)

	if err := s.AddEdge(1, 2); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
	if !s.HasEdge(1, 2) || !s.HasEdge(2, 1) {
		t.Error("edge should be visible from both endpoints")
	}
	if s.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", s.EdgeCount())
	}

	// Duplicate insert must be rejected without mutation.
	if err := s.AddEdge(2, 1); !errors.Is(err, ErrDuplicateEdge) {
		t.Errorf("expected ErrDuplicateEdge, got %v", err)
	}
	if s.EdgeCount() != 1 {
		t.Errorf("rejected insert mutated the store: %d edges", s.EdgeCount())
	}

	if err := s.RemoveEdge(1, 2); err != nil {
		t.Fatalf("RemoveEdge failed: %v", err)
	}
	if err := s.RemoveEdge(1, 2); !errors.Is(err, ErrMissingEdge) {
		t.Errorf("expected ErrMissingEdge, got %v", err)
	}
	if s.EdgeCount() != 0 {
		t.Errorf("expected 0 edges, got %d", s.EdgeCount())
	}
}

func TestSingletonSupernodes(t *testing.T) {
	s := NewStore()
	snA, created := s.EnsureNode(7)
	if !created {
		t.Fatal("first sight of node 7 should create a supernode")
	}
	snB, created := s.EnsureNode(7)
	if created || snA != snB {
		t.Errorf("EnsureNode not idempotent: %d vs %d (created=%v)", snA, snB, created)
	}
	if got := s.SupernodeSize(snA); got != 1 {
		t.Errorf("singleton size = %d", got)
	}
}

func TestPairCountBookkeeping(t *testing.T) {
	s := NewStore()
	// Four nodes, each in its own supernode, path 1-2-3-4.
	for n := NodeID(1); n <= 4; n++ {
		s.EnsureNode(n)
	}
	mustAdd := func(u, v NodeID) {
		t.Helper()
		if err := s.AddEdge(u, v); err != nil {
			t.Fatal(err)
		}
	}
	mustAdd(1, 2)
	mustAdd(2, 3)
	mustAdd(3, 4)

	s1, _ := s.SupernodeOf(1)
	s2, _ := s.SupernodeOf(2)
	s3, _ := s.SupernodeOf(3)
	s4, _ := s.SupernodeOf(4)

	if got := s.PairEdgeCount(s1, s2); got != 1 {
		t.Errorf("pair (s1, s2) count = %d", got)
	}

	// Merge node 2 into node 1's supernode: the (s1, s2) crossing edge
	// becomes internal, and (s2, s3) is rehomed to (s1, s3).
	if destroyed := s.MoveNode(2, s1); !destroyed {
		t.Error("supernode of node 2 should be destroyed when emptied")
	}
	if got := s.PairEdgeCount(s1, s1); got != 1 {
		t.Errorf("internal count after move = %d", got)
	}
	if got := s.PairEdgeCount(s1, s3); got != 1 {
		t.Errorf("rehomed pair count = %d", got)
	}
	if got := s.PairEdgeCount(s3, s4); got != 1 {
		t.Errorf("untouched pair count = %d", got)
	}
	if s.SupernodeCount() != 3 {
		t.Errorf("expected 3 supernodes, got %d", s.SupernodeCount())
	}

	// Removing the internal edge clears the self entry.
	if err := s.RemoveEdge(1, 2); err != nil {
		t.Fatal(err)
	}
	if got := s.PairEdgeCount(s1, s1); got != 0 {
		t.Errorf("self count after removal = %d", got)
	}
}

func TestSuperedges(t *testing.T) {
	s := NewStore()
	s.EnsureNode(1)
	s.EnsureNode(2)
	a, _ := s.SupernodeOf(1)
	b, _ := s.SupernodeOf(2)

	s.SetSuperedge(a, b)
	s.SetSuperedge(b, a) // idempotent, unordered
	if s.SuperedgeCount() != 1 {
		t.Errorf("superedge count = %d", s.SuperedgeCount())
	}
	if !s.HasSuperedge(b, a) {
		t.Error("superedge should be visible from both endpoints")
	}

	s.SetSuperedge(a, a)
	if s.SuperedgeCount() != 2 {
		t.Errorf("self superedge not counted: %d", s.SuperedgeCount())
	}

	s.UnsetSuperedge(a, b)
	s.UnsetSuperedge(a, b)
	if s.SuperedgeCount() != 1 || s.HasSuperedge(a, b) {
		t.Error("unset did not remove the superedge exactly once")
	}
}

func TestCorrections(t *testing.T) {
	s := NewStore()
	s.SetCorrection(5, 3, SignAdd)

	// Keyed by the unordered pair: both orders see the same entry.
	if sign, ok := s.CorrectionFor(3, 5); !ok || sign != SignAdd {
		t.Errorf("CorrectionFor(3, 5) = %v, %v", sign, ok)
	}
	s.SetCorrection(3, 5, SignDelete) // overwrite, not multiset
	if s.CorrectionCount() != 1 {
		t.Errorf("correction count = %d", s.CorrectionCount())
	}

	s.SetCorrection(1, 2, SignAdd)
	var order []Correction
	s.AscendCorrections(func(c Correction) bool {
		order = append(order, c)
		return true
	})
	if len(order) != 2 || order[0].U != 1 || order[1].U != 3 {
		t.Errorf("unexpected iteration order: %+v", order)
	}

	s.DeleteCorrection(5, 3)
	if s.CorrectionCount() != 1 {
		t.Errorf("delete left count = %d", s.CorrectionCount())
	}
}

func TestSeedSupernode(t *testing.T) {
	s := NewStore()
	if err := s.SeedSupernode(10, []NodeID{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.SeedSupernode(10, []NodeID{4}); err == nil {
		t.Error("duplicate supernode id should fail")
	}
	if err := s.SeedSupernode(11, []NodeID{2}); err == nil {
		t.Error("re-owning a node should fail")
	}
	// Fresh ids must not collide with seeded ones.
	if sn := s.NewSupernode(); sn <= 10 {
		t.Errorf("allocated id %d collides with seeded range", sn)
	}
}
