// Package stream provides the event sources and the driver loop that feed
// the summarization engine one edge event at a time, in order.
package stream

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/skeindb/skein/internal/graph"
)

// Op is the kind of an edge event.
type Op uint8

const (
	// OpInsert adds an original edge.
	OpInsert Op = iota
	// OpDelete removes an original edge.
	OpDelete
)

func (o Op) String() string {
	if o == OpDelete {
		return "DELETE"
	}
	return "INSERT"
}

// Event is one edge insertion or deletion. U != V always holds for events
// produced by the sources in this package.
type Event struct {
	Op Op
	U  graph.NodeID
	V  graph.NodeID
}

// Source produces an ordered sequence of events. Next returns io.EOF when
// the stream is exhausted. No look-ahead beyond one event is required.
type Source interface {
	Next() (Event, error)
}

// Sink consumes one event at a time. Process must either fully commit the
// event or reject it with no partial state change.
type Sink interface {
	Process(Event) error
}

// Observer, when non-nil, is called after every event with its processing
// latency and outcome. Used by the benchmark CLI to sample timings.
type Observer func(ev Event, elapsed time.Duration, err error)

// SliceSource replays a fixed event slice. Used in tests.
type SliceSource struct {
	events []Event
	pos    int
}

// NewSliceSource returns a source over the given events.
func NewSliceSource(events []Event) *SliceSource {
	return &SliceSource{events: events}
}

// Next implements Source.
func (s *SliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

// Drive pulls events from src and feeds them to sink strictly one at a time.
// Malformed events (duplicate insert, missing delete) are logged and skipped;
// a capacity error or a source error stops the drive. Returns the number of
// committed events.
func Drive(src Source, sink Sink, obs Observer) (int, error) {
	committed := 0
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return committed, nil
		}
		if err != nil {
			return committed, fmt.Errorf("stream source: %w", err)
		}

		start := time.Now()
		err = sink.Process(ev)
		if obs != nil {
			obs(ev, time.Since(start), err)
		}
		switch {
		case err == nil:
			committed++
		case errors.Is(err, graph.ErrDuplicateEdge), errors.Is(err, graph.ErrMissingEdge):
			slog.Warn("rejected malformed event", "op", ev.Op.String(), "u", ev.U, "v", ev.V, "error", err)
		default:
			return committed, err
		}
	}
}
