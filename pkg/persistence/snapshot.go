package persistence

import (
	"bufio"
	"fmt"
	"os"
)

// SnapshotFile is a buffered, fsync-on-close file target for snapshot
// frames. It implements io.Writer.
type SnapshotFile struct {
	file *os.File
	buf  *bufio.Writer
}

// CreateSnapshotFile opens path for writing, truncating any previous content.
func CreateSnapshotFile(path string) (*SnapshotFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	return &SnapshotFile{
		file: file,
		buf:  bufio.NewWriter(file),
	}, nil
}

// Write appends to the buffered file.
func (s *SnapshotFile) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Close flushes buffered frames and syncs the file to disk.
func (s *SnapshotFile) Close() error {
	if err := s.buf.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	if err := s.file.Sync(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// OpenSnapshotFile opens an existing snapshot for reading.
func OpenSnapshotFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	return f, nil
}
