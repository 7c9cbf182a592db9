package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/skeindb/skein/internal/graph"
)

// FileSource reads edge events from a text file, one event per line:
//
//	u v        insert edge (u, v)
//	+ u v      insert edge (u, v)
//	- u v      delete edge (u, v)
//
// Blank lines and lines starting with '#' or '%' are skipped (the latter for
// Matrix Market style headers found in common graph datasets).
type FileSource struct {
	f    *os.File
	sc   *bufio.Scanner
	line int
}

// OpenFile opens a dataset file as an event source.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &FileSource{f: f, sc: sc}, nil
}

// Next implements Source.
func (fs *FileSource) Next() (Event, error) {
	for fs.sc.Scan() {
		fs.line++
		line := strings.TrimSpace(fs.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}
		ev, err := parseLine(line)
		if err != nil {
			return Event{}, fmt.Errorf("line %d: %w", fs.line, err)
		}
		return ev, nil
	}
	if err := fs.sc.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// Close releases the underlying file.
func (fs *FileSource) Close() error { return fs.f.Close() }

func parseLine(line string) (Event, error) {
	fields := strings.Fields(line)
	op := OpInsert
	switch {
	case len(fields) == 3 && fields[0] == "+":
		fields = fields[1:]
	case len(fields) == 3 && fields[0] == "-":
		op = OpDelete
		fields = fields[1:]
	case len(fields) == 2:
	default:
		return Event{}, fmt.Errorf("malformed event %q", line)
	}

	u, err := parseNode(fields[0])
	if err != nil {
		return Event{}, err
	}
	v, err := parseNode(fields[1])
	if err != nil {
		return Event{}, err
	}
	if u == v {
		return Event{}, fmt.Errorf("self loop on node %d", u)
	}
	return Event{Op: op, U: u, V: v}, nil
}

func parseNode(s string) (graph.NodeID, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return graph.NodeID(id), nil
}
