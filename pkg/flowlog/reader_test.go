package flowlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func TestReader_ReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.log")
	content := "first line\r\nsecond line\n\nlast line without newline"
	assert.NilError(t, os.WriteFile(path, []byte(content), 0644))

	reader, err := NewReader(path)
	assert.NilError(t, err)
	defer reader.Close()

	var got []string
	n, err := reader.ReadLines(func(line string) { got = append(got, line) })
	assert.NilError(t, err)
	assert.Equal(t, n, 4)
	assert.DeepEqual(t, got, []string{"first line", "second line", "", "last line without newline"})
}

func TestReader_LongLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.log")
	long := strings.Repeat("x", 3*1024*1024)
	assert.NilError(t, os.WriteFile(path, []byte("ok\n"+long+"\r\nlast\n"), 0644))

	reader, err := NewReader(path)
	assert.NilError(t, err)
	defer reader.Close()

	var lengths []int
	n, err := reader.ReadLines(func(line string) { lengths = append(lengths, len(line)) })
	assert.NilError(t, err)
	assert.Equal(t, n, 3)
	assert.DeepEqual(t, lengths, []int{2, len(long), 4})
}

func TestNewReader_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.log"))
	assert.ErrorContains(t, err, "failed to open flow log")
}
