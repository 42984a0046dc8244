package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom_testutil "github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.ObserveLookup(10, 2, 1)
	m.ObserveScan(7, 3, 2)
	m.MarkRun(time.Unix(1700000000, 0))

	assert.Equal(t, prom_testutil.ToFloat64(m.lookupRows.WithLabelValues("loaded")), 10.0)
	assert.Equal(t, prom_testutil.ToFloat64(m.lookupRows.WithLabelValues("skipped")), 2.0)
	assert.Equal(t, prom_testutil.ToFloat64(m.lookupDuplicates), 1.0)
	assert.Equal(t, prom_testutil.ToFloat64(m.flowLogLines.WithLabelValues("classified")), 7.0)
	assert.Equal(t, prom_testutil.ToFloat64(m.flowLogLines.WithLabelValues("discarded")), 3.0)
	assert.Equal(t, prom_testutil.ToFloat64(m.records.WithLabelValues("true")), 5.0)
	assert.Equal(t, prom_testutil.ToFloat64(m.records.WithLabelValues("false")), 2.0)
	assert.Equal(t, prom_testutil.ToFloat64(m.lastRun), 1700000000.0)
	assert.Equal(t, prom_testutil.CollectAndCount(m.Registry(), "flowtagger_records_total"), 2)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveScan(1, 0, 1)

	path := filepath.Join(t.TempDir(), "flowtagger.prom")
	assert.NilError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Check(t, strings.Contains(string(data), `flowtagger_records_total{tagged="false"} 1`), string(data))
}
