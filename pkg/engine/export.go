package engine

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/skeindb/skein/internal/graph"
	"github.com/skeindb/skein/pkg/persistence"
)

// snapshotVersion is bumped on any change to the record payload layout.
const snapshotVersion = 1

// WriteSnapshot serializes the current summary (supernode membership,
// superedges, corrections) as CRC-framed records. The record order is fully
// deterministic, so re-exporting a reloaded engine yields identical bytes.
func (e *Engine) WriteSnapshot(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	bw := bufio.NewWriter(w)
	fw := persistence.NewFrameWriter(bw)

	header := make([]byte, 14)
	binary.LittleEndian.PutUint16(header[0:2], snapshotVersion)
	binary.LittleEndian.PutUint32(header[2:6], uint32(e.store.SupernodeCount()))
	binary.LittleEndian.PutUint32(header[6:10], uint32(e.store.SuperedgeCount()))
	binary.LittleEndian.PutUint32(header[10:14], uint32(e.store.CorrectionCount()))
	if err := fw.WriteFrame(persistence.OpCodeHeader, header); err != nil {
		return err
	}

	for _, sn := range e.store.Supernodes() {
		members := make([]graph.NodeID, 0, e.store.SupernodeSize(sn))
		for n := range e.store.Members(sn) {
			members = append(members, n)
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

		payload := make([]byte, 8+4*len(members))
		binary.LittleEndian.PutUint32(payload[0:4], uint32(sn))
		binary.LittleEndian.PutUint32(payload[4:8], uint32(len(members)))
		for i, n := range members {
			binary.LittleEndian.PutUint32(payload[8+4*i:], uint32(n))
		}
		if err := fw.WriteFrame(persistence.OpCodeSupernode, payload); err != nil {
			return err
		}
	}

	for _, se := range e.store.Superedges() {
		payload := make([]byte, 8)
		binary.LittleEndian.PutUint32(payload[0:4], uint32(se[0]))
		binary.LittleEndian.PutUint32(payload[4:8], uint32(se[1]))
		if err := fw.WriteFrame(persistence.OpCodeSuperedge, payload); err != nil {
			return err
		}
	}

	var corrErr error
	e.store.AscendCorrections(func(c graph.Correction) bool {
		payload := make([]byte, 9)
		binary.LittleEndian.PutUint32(payload[0:4], uint32(c.U))
		binary.LittleEndian.PutUint32(payload[4:8], uint32(c.V))
		payload[8] = byte(c.Sign)
		corrErr = fw.WriteFrame(persistence.OpCodeCorrection, payload)
		return corrErr == nil
	})
	if corrErr != nil {
		return corrErr
	}

	return bw.Flush()
}

// ReadSnapshot reconstructs an engine from an exported summary. The original
// adjacency is rebuilt by decoding the summary, and the cost account is
// recomputed from scratch (the one place a full recomputation is allowed).
func ReadSnapshot(r io.Reader, opts Options) (*Engine, error) {
	eng, err := New(opts)
	if err != nil {
		return nil, err
	}

	op, payload, err := persistence.ReadFrame(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	if op != persistence.OpCodeHeader || len(payload) != 14 {
		return nil, fmt.Errorf("snapshot header: unexpected record")
	}
	if v := binary.LittleEndian.Uint16(payload[0:2]); v != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d not supported", v)
	}
	snCount := binary.LittleEndian.Uint32(payload[2:6])
	seCount := binary.LittleEndian.Uint32(payload[6:10])
	corrCount := binary.LittleEndian.Uint32(payload[10:14])

	for i := uint32(0); i < snCount; i++ {
		op, payload, err := persistence.ReadFrame(r)
		if err != nil || op != persistence.OpCodeSupernode || len(payload) < 8 {
			return nil, fmt.Errorf("supernode record %d: %w", i, recordErr(op, err))
		}
		id := graph.SupernodeID(binary.LittleEndian.Uint32(payload[0:4]))
		count := binary.LittleEndian.Uint32(payload[4:8])
		if uint32(len(payload)) != 8+4*count {
			return nil, fmt.Errorf("supernode record %d: truncated member list", i)
		}
		members := make([]graph.NodeID, count)
		for j := range members {
			members[j] = graph.NodeID(binary.LittleEndian.Uint32(payload[8+4*j:]))
		}
		if err := eng.store.SeedSupernode(id, members); err != nil {
			return nil, fmt.Errorf("supernode record %d: %w", i, err)
		}
	}

	for i := uint32(0); i < seCount; i++ {
		op, payload, err := persistence.ReadFrame(r)
		if err != nil || op != persistence.OpCodeSuperedge || len(payload) != 8 {
			return nil, fmt.Errorf("superedge record %d: %w", i, recordErr(op, err))
		}
		a := graph.SupernodeID(binary.LittleEndian.Uint32(payload[0:4]))
		b := graph.SupernodeID(binary.LittleEndian.Uint32(payload[4:8]))
		if eng.store.SupernodeSize(a) == 0 || eng.store.SupernodeSize(b) == 0 {
			return nil, fmt.Errorf("superedge (%d, %d) references unknown supernode", a, b)
		}
		eng.store.SetSuperedge(a, b)
	}

	for i := uint32(0); i < corrCount; i++ {
		op, payload, err := persistence.ReadFrame(r)
		if err != nil || op != persistence.OpCodeCorrection || len(payload) != 9 {
			return nil, fmt.Errorf("correction record %d: %w", i, recordErr(op, err))
		}
		u := graph.NodeID(binary.LittleEndian.Uint32(payload[0:4]))
		v := graph.NodeID(binary.LittleEndian.Uint32(payload[4:8]))
		sign := graph.Sign(payload[8])
		if sign != graph.SignAdd && sign != graph.SignDelete {
			return nil, fmt.Errorf("correction record %d: bad sign %d", i, payload[8])
		}
		if !eng.store.HasNode(u) || !eng.store.HasNode(v) {
			return nil, fmt.Errorf("correction (%d, %d) references unknown node", u, v)
		}
		eng.store.SetCorrection(u, v, sign)
	}

	// Decode the summary back into the original adjacency.
	for k := range eng.reconstructLocked() {
		u, v := graph.NodeID(k>>32), graph.NodeID(k&0xffffffff)
		if err := eng.store.AddEdge(u, v); err != nil {
			return nil, fmt.Errorf("decode edge (%d, %d): %w", u, v, err)
		}
	}

	eng.totalCost = eng.model.Total(eng.store)
	return eng, nil
}

func recordErr(op byte, err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("unexpected record opcode 0x%02x", op)
}
