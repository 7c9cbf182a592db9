package stream

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skeindb/skein/internal/graph"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line    string
		want    Event
		wantErr bool
	}{
		{"1 2", Event{Op: OpInsert, U: 1, V: 2}, false},
		{"+ 3 4", Event{Op: OpInsert, U: 3, V: 4}, false},
		{"- 1 2", Event{Op: OpDelete, U: 1, V: 2}, false},
		{"7 7", Event{}, true},     // self loop
		{"1", Event{}, true},       // too few fields
		{"1 2 3", Event{}, true},   // unknown prefix
		{"* 1 2", Event{}, true},   // unknown op
		{"1 abc", Event{}, true},   // bad node id
		{"-1 2", Event{}, true},    // negative id
		{"1 4294967296", Event{}, true}, // overflows uint32
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			ev, err := parseLine(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseLine(%q) succeeded, want error", tc.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLine(%q): %v", tc.line, err)
			}
			if ev != tc.want {
				t.Errorf("parseLine(%q) = %+v, want %+v", tc.line, ev, tc.want)
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.txt")
	content := "% MatrixMarket style header\n" +
		"# a comment\n" +
		"\n" +
		"1 2\n" +
		"+ 2 3\n" +
		"- 1 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	want := []Event{
		{Op: OpInsert, U: 1, V: 2},
		{Op: OpInsert, U: 2, V: 3},
		{Op: OpDelete, U: 1, V: 2},
	}
	for i, w := range want {
		ev, err := src.Next()
		if err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		if ev != w {
			t.Errorf("event %d = %+v, want %+v", i, ev, w)
		}
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF at end of file, got %v", err)
	}
}

func TestFileSourceMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("1 2\nnot an event\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if _, err := src.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(); err == nil {
		t.Fatal("expected an error for the malformed line")
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]Event{{Op: OpInsert, U: 1, V: 2}})
	if ev, err := src.Next(); err != nil || ev.U != 1 {
		t.Fatalf("Next = %+v, %v", ev, err)
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// fakeSink rejects or fails specific events by index.
type fakeSink struct {
	seen int
	errs map[int]error
}

func (f *fakeSink) Process(Event) error {
	err := f.errs[f.seen]
	f.seen++
	return err
}

func TestDriveSkipsRejectedEvents(t *testing.T) {
	events := []Event{
		{Op: OpInsert, U: 1, V: 2},
		{Op: OpInsert, U: 1, V: 2},
		{Op: OpDelete, U: 3, V: 4},
		{Op: OpInsert, U: 2, V: 3},
	}
	sink := &fakeSink{errs: map[int]error{
		1: fmt.Errorf("edge exists: %w", graph.ErrDuplicateEdge),
		2: fmt.Errorf("no such edge: %w", graph.ErrMissingEdge),
	}}

	var observed int
	committed, err := Drive(NewSliceSource(events), sink, func(Event, time.Duration, error) {
		observed++
	})
	if err != nil {
		t.Fatalf("Drive failed: %v", err)
	}
	if committed != 2 {
		t.Errorf("committed = %d, want 2", committed)
	}
	if sink.seen != 4 {
		t.Errorf("sink saw %d events, want 4", sink.seen)
	}
	if observed != 4 {
		t.Errorf("observer called %d times, want 4", observed)
	}
}

func TestDriveStopsOnHardError(t *testing.T) {
	events := []Event{
		{Op: OpInsert, U: 1, V: 2},
		{Op: OpInsert, U: 3, V: 4},
		{Op: OpInsert, U: 5, V: 6},
	}
	boom := errors.New("boom")
	sink := &fakeSink{errs: map[int]error{1: boom}}

	committed, err := Drive(NewSliceSource(events), sink, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the sink error, got %v", err)
	}
	if committed != 1 {
		t.Errorf("committed = %d, want 1", committed)
	}
	if sink.seen != 2 {
		t.Errorf("sink saw %d events, want 2 (drive must stop)", sink.seen)
	}
}
