package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FlowTagger/internal/model"
	"FlowTagger/internal/writer"

	"gotest.tools/v3/assert"
)

func writeSnapshot(t *testing.T, root, runID string, at time.Time) {
	t.Helper()
	r := &model.Report{RunID: runID, GeneratedAt: at, Tags: []model.TagCount{{Tag: runID, Count: 1}}}
	assert.NilError(t, writer.NewGobWriter(root).Write(context.Background(), r))
}

func TestSnapshotQuerier(t *testing.T) {
	root := t.TempDir()
	writeSnapshot(t, root, "bbbbbbbb", time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC))
	writeSnapshot(t, root, "aaaaaaaa", time.Date(2024, 5, 5, 9, 0, 0, 0, time.UTC))
	assert.NilError(t, os.Mkdir(filepath.Join(root, "not-a-snapshot"), 0755))
	assert.NilError(t, os.WriteFile(filepath.Join(root, "stray.txt"), nil, 0644))

	q := NewSnapshotQuerier(root)

	ids, err := q.List()
	assert.NilError(t, err)
	assert.DeepEqual(t, ids, []string{"2024-05-04_12-00-00_bbbbbbbb", "2024-05-05_09-00-00_aaaaaaaa"})

	latest, err := q.Latest()
	assert.NilError(t, err)
	assert.Equal(t, latest.RunID, "aaaaaaaa")

	r, err := q.Get(ids[0])
	assert.NilError(t, err)
	assert.Equal(t, r.RunID, "bbbbbbbb")

	for _, id := range []string{"missing", "../etc", "", ".."} {
		_, err = q.Get(id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
}

func TestSnapshotQuerier_EmptyRoot(t *testing.T) {
	q := NewSnapshotQuerier(filepath.Join(t.TempDir(), "missing"))

	ids, err := q.List()
	assert.NilError(t, err)
	assert.Equal(t, len(ids), 0)

	_, err = q.Latest()
	assert.ErrorIs(t, err, ErrNotFound)
}
