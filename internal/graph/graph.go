// Package graph holds the ground-truth adjacency and the summary structures
// (supernode partition, superedges, corrections) for the summarization engine.
//
// All cross references are id based: a node records only its owning supernode
// id, a supernode records only member ids. The store performs no cost-model
// logic; it is pure bookkeeping with O(degree) neighbor access.
package graph

import (
	"fmt"
	"sort"

	"github.com/tidwall/btree"
)

// NodeID identifies an original graph vertex.
type NodeID uint32

// SupernodeID identifies a group of original nodes in the summary graph.
type SupernodeID uint32

// Sign marks a correction as an addition or a deletion exception.
type Sign uint8

const (
	// SignAdd records an original edge that the superedges do not imply.
	SignAdd Sign = 1
	// SignDelete records a missing edge that a superedge wrongly implies.
	SignDelete Sign = 2
)

func (s Sign) String() string {
	switch s {
	case SignAdd:
		return "ADD"
	case SignDelete:
		return "DELETE"
	default:
		return "?"
	}
}

// Correction is an exception for one node pair. U < V always holds.
type Correction struct {
	U    NodeID
	V    NodeID
	Sign Sign
}

// PackPair maps an unordered id pair to a single comparable key.
func PackPair(a, b uint32) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

func correctionLess(a, b Correction) bool {
	return PackPair(uint32(a.U), uint32(a.V)) < PackPair(uint32(b.U), uint32(b.V))
}

// Store is the single-writer container for the original graph and its summary.
// It is not safe for concurrent use; the owning engine serializes access.
type Store struct {
	adj     map[NodeID]map[NodeID]struct{}
	owner   map[NodeID]SupernodeID
	members map[SupernodeID]map[NodeID]struct{}

	// sadj is the superedge adjacency. A self loop is stored as sadj[s][s].
	sadj map[SupernodeID]map[SupernodeID]struct{}

	// spairs[a][b] counts the original edges crossing supernodes a and b
	// (the a==b entry counts edges internal to a). Entries are removed when
	// the count drops to zero, so the key set is exactly the supernode pairs
	// with at least one crossing edge.
	spairs map[SupernodeID]map[SupernodeID]int

	corrections *btree.BTreeG[Correction]

	nextSupernode SupernodeID
	edgeCount     int
	superedges    int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		adj:           make(map[NodeID]map[NodeID]struct{}),
		owner:         make(map[NodeID]SupernodeID),
		members:       make(map[SupernodeID]map[NodeID]struct{}),
		sadj:          make(map[SupernodeID]map[SupernodeID]struct{}),
		spairs:        make(map[SupernodeID]map[SupernodeID]int),
		corrections:   btree.NewBTreeG[Correction](correctionLess),
		nextSupernode: 1,
	}
}

// --- Nodes and partition ---

// HasNode reports whether the node id has been seen.
func (s *Store) HasNode(n NodeID) bool {
	_, ok := s.owner[n]
	return ok
}

// NodeCount returns the number of seen nodes.
func (s *Store) NodeCount() int { return len(s.owner) }

// EdgeCount returns the number of current original edges.
func (s *Store) EdgeCount() int { return s.edgeCount }

// Nodes returns all seen node ids in ascending order.
func (s *Store) Nodes() []NodeID {
	out := make([]NodeID, 0, len(s.owner))
	for n := range s.owner {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EnsureNode registers a node on first sight, placing it in a fresh singleton
// supernode. It returns the owning supernode id and whether a supernode was
// created.
func (s *Store) EnsureNode(n NodeID) (SupernodeID, bool) {
	if sn, ok := s.owner[n]; ok {
		return sn, false
	}
	sn := s.NewSupernode()
	s.owner[n] = sn
	s.members[sn][n] = struct{}{}
	if s.adj[n] == nil {
		s.adj[n] = make(map[NodeID]struct{})
	}
	return sn, true
}

// SeedSupernode installs a supernode with the given id and members, used
// when loading an exported summary. The id must be unused and every member
// unowned.
func (s *Store) SeedSupernode(id SupernodeID, members []NodeID) error {
	if _, ok := s.members[id]; ok {
		return fmt.Errorf("supernode %d already exists", id)
	}
	set := make(map[NodeID]struct{}, len(members))
	for _, n := range members {
		if _, ok := s.owner[n]; ok {
			return fmt.Errorf("node %d already owned", n)
		}
		s.owner[n] = id
		set[n] = struct{}{}
		if s.adj[n] == nil {
			s.adj[n] = make(map[NodeID]struct{})
		}
	}
	if len(set) == 0 {
		return fmt.Errorf("supernode %d has no members", id)
	}
	s.members[id] = set
	if id >= s.nextSupernode {
		s.nextSupernode = id + 1
	}
	return nil
}

// SupernodeOf returns the supernode owning n.
func (s *Store) SupernodeOf(n NodeID) (SupernodeID, bool) {
	sn, ok := s.owner[n]
	return sn, ok
}

// --- Original edges ---

// HasEdge reports whether the original edge (u, v) currently exists.
func (s *Store) HasEdge(u, v NodeID) bool {
	_, ok := s.adj[u][v]
	return ok
}

// AddEdge inserts an original edge. Both endpoints must already be registered.
// Returns ErrDuplicateEdge without mutating if the edge is present.
func (s *Store) AddEdge(u, v NodeID) error {
	if u == v {
		return fmt.Errorf("self loop (%d): %w", u, ErrDuplicateEdge)
	}
	if s.HasEdge(u, v) {
		return fmt.Errorf("edge (%d, %d): %w", u, v, ErrDuplicateEdge)
	}
	s.adj[u][v] = struct{}{}
	s.adj[v][u] = struct{}{}
	s.edgeCount++
	s.addPairCount(s.owner[u], s.owner[v], 1)
	return nil
}

// RemoveEdge deletes an original edge. Returns ErrMissingEdge without
// mutating if the edge is absent.
func (s *Store) RemoveEdge(u, v NodeID) error {
	if !s.HasEdge(u, v) {
		return fmt.Errorf("edge (%d, %d): %w", u, v, ErrMissingEdge)
	}
	delete(s.adj[u], v)
	delete(s.adj[v], u)
	s.edgeCount--
	s.addPairCount(s.owner[u], s.owner[v], -1)
	return nil
}

// NodeNeighbors returns the neighbor set of n. The returned map is the
// store's own; callers must treat it as read only.
func (s *Store) NodeNeighbors(n NodeID) map[NodeID]struct{} {
	return s.adj[n]
}

// NodeDegree returns the current degree of n.
func (s *Store) NodeDegree(n NodeID) int { return len(s.adj[n]) }

// --- Supernodes ---

// NewSupernode allocates an empty supernode and returns its id.
func (s *Store) NewSupernode() SupernodeID {
	sn := s.nextSupernode
	s.nextSupernode++
	s.members[sn] = make(map[NodeID]struct{})
	return sn
}

// SupernodeCount returns the number of live supernodes.
func (s *Store) SupernodeCount() int { return len(s.members) }

// SupernodeSize returns the member count of sn.
func (s *Store) SupernodeSize(sn SupernodeID) int { return len(s.members[sn]) }

// Members returns the member set of sn. Read only for callers.
func (s *Store) Members(sn SupernodeID) map[NodeID]struct{} {
	return s.members[sn]
}

// Supernodes returns all live supernode ids in ascending order.
func (s *Store) Supernodes() []SupernodeID {
	out := make([]SupernodeID, 0, len(s.members))
	for sn := range s.members {
		out = append(out, sn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SupernodePairs returns the crossing-edge counts from sn to every adjacent
// supernode, including the sn entry for internal edges. Read only.
func (s *Store) SupernodePairs(sn SupernodeID) map[SupernodeID]int {
	return s.spairs[sn]
}

// PairEdgeCount returns the number of original edges crossing a and b
// (or internal to a when a == b).
func (s *Store) PairEdgeCount(a, b SupernodeID) int {
	return s.spairs[a][b]
}

// SupernodeNeighbors returns the supernodes sharing at least one original
// edge with sn, excluding sn itself.
func (s *Store) SupernodeNeighbors(sn SupernodeID) []SupernodeID {
	pairs := s.spairs[sn]
	out := make([]SupernodeID, 0, len(pairs))
	for t := range pairs {
		if t != sn {
			out = append(out, t)
		}
	}
	return out
}

// MoveNode transfers n into supernode `to`, keeping the crossing-edge counts
// exact. If the source supernode becomes empty it is destroyed (its remaining
// superedges are dropped; the caller re-derives affected encodings). Returns
// true if the source supernode was destroyed.
func (s *Store) MoveNode(n NodeID, to SupernodeID) bool {
	from := s.owner[n]
	if from == to {
		return false
	}
	for w := range s.adj[n] {
		t := s.owner[w]
		s.addPairCount(from, t, -1)
		s.addPairCount(to, t, 1)
	}
	delete(s.members[from], n)
	s.members[to][n] = struct{}{}
	s.owner[n] = to
	if len(s.members[from]) == 0 {
		s.destroySupernode(from)
		return true
	}
	return false
}

func (s *Store) destroySupernode(sn SupernodeID) {
	for t := range s.sadj[sn] {
		s.UnsetSuperedge(sn, t)
	}
	delete(s.sadj, sn)
	delete(s.spairs, sn)
	delete(s.members, sn)
}

// --- Superedges ---

// HasSuperedge reports whether a superedge connects a and b.
func (s *Store) HasSuperedge(a, b SupernodeID) bool {
	_, ok := s.sadj[a][b]
	return ok
}

// SetSuperedge records the superedge (a, b). Idempotent.
func (s *Store) SetSuperedge(a, b SupernodeID) {
	if s.HasSuperedge(a, b) {
		return
	}
	if s.sadj[a] == nil {
		s.sadj[a] = make(map[SupernodeID]struct{})
	}
	s.sadj[a][b] = struct{}{}
	if a != b {
		if s.sadj[b] == nil {
			s.sadj[b] = make(map[SupernodeID]struct{})
		}
		s.sadj[b][a] = struct{}{}
	}
	s.superedges++
}

// UnsetSuperedge removes the superedge (a, b). Idempotent.
func (s *Store) UnsetSuperedge(a, b SupernodeID) {
	if !s.HasSuperedge(a, b) {
		return
	}
	delete(s.sadj[a], b)
	if a != b {
		delete(s.sadj[b], a)
	}
	s.superedges--
}

// SuperedgeCount returns the number of superedges (self loops count once).
func (s *Store) SuperedgeCount() int { return s.superedges }

// Superedges returns every superedge as an ordered (low, high) pair, sorted.
func (s *Store) Superedges() [][2]SupernodeID {
	out := make([][2]SupernodeID, 0, s.superedges)
	for a, ts := range s.sadj {
		for b := range ts {
			if a <= b {
				out = append(out, [2]SupernodeID{a, b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// --- Corrections ---

func normalizePair(u, v NodeID) (NodeID, NodeID) {
	if u > v {
		return v, u
	}
	return u, v
}

// CorrectionFor returns the sign recorded for the pair, if any.
func (s *Store) CorrectionFor(u, v NodeID) (Sign, bool) {
	u, v = normalizePair(u, v)
	c, ok := s.corrections.Get(Correction{U: u, V: v})
	if !ok {
		return 0, false
	}
	return c.Sign, true
}

// SetCorrection records (or overwrites) the correction for the pair.
func (s *Store) SetCorrection(u, v NodeID, sign Sign) {
	u, v = normalizePair(u, v)
	s.corrections.Set(Correction{U: u, V: v, Sign: sign})
}

// DeleteCorrection removes the correction for the pair, if present.
func (s *Store) DeleteCorrection(u, v NodeID) {
	u, v = normalizePair(u, v)
	s.corrections.Delete(Correction{U: u, V: v})
}

// CorrectionCount returns the number of recorded corrections.
func (s *Store) CorrectionCount() int { return s.corrections.Len() }

// AscendCorrections visits every correction in ascending pair order.
func (s *Store) AscendCorrections(fn func(Correction) bool) {
	s.corrections.Scan(fn)
}

// --- internal ---

func (s *Store) addPairCount(a, b SupernodeID, delta int) {
	s.bumpPair(a, b, delta)
	if a != b {
		s.bumpPair(b, a, delta)
	}
}

func (s *Store) bumpPair(a, b SupernodeID, delta int) {
	m := s.spairs[a]
	if m == nil {
		m = make(map[SupernodeID]int)
		s.spairs[a] = m
	}
	m[b] += delta
	if m[b] == 0 {
		delete(m, b)
		if len(m) == 0 {
			delete(s.spairs, a)
		}
	}
}
