package query

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"FlowTagger/internal/model"
	"FlowTagger/internal/writer"
)

// ErrNotFound is returned when no snapshot exists for the requested id.
var ErrNotFound = errors.New("snapshot not found")

// Querier defines the interface for reading stored reports.
type Querier interface {
	// List returns the ids of all stored reports, oldest first.
	List() ([]string, error)
	// Get returns the report stored under id.
	Get(id string) (*model.Report, error)
	// Latest returns the most recent report.
	Latest() (*model.Report, error)
}

// snapshotQuerier implements the Querier interface over gob snapshot directories.
type snapshotQuerier struct {
	root string
}

// NewSnapshotQuerier creates a querier over the snapshot directories under root.
func NewSnapshotQuerier(root string) Querier {
	return &snapshotQuerier{root: root}
}

func (q *snapshotQuerier) List() ([]string, error) {
	entries, err := os.ReadDir(q.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(q.root, e.Name(), writer.SnapshotFile)); err != nil {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

func (q *snapshotQuerier) Get(id string) (*model.Report, error) {
	if id == "" || id != filepath.Base(id) || id == "." || id == ".." {
		return nil, ErrNotFound
	}
	r, err := writer.ReadSnapshot(filepath.Join(q.root, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return r, err
}

func (q *snapshotQuerier) Latest() (*model.Report, error) {
	ids, err := q.List()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return q.Get(ids[len(ids)-1])
}
