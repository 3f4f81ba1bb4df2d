package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCounters(t *testing.T) {
	m := NewManager()

	m.SourceProcessed(KindFile, 20*time.Millisecond)
	m.SourceProcessed(KindFile, 30*time.Millisecond)
	m.SourceProcessed(KindJob, time.Millisecond)
	m.SourceFailed(KindFile, "extraction")
	m.SourceFailed(KindDataset, "")
	m.Ranked(81.5, 40, 12.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sourcesProcessed.WithLabelValues(KindFile)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourcesProcessed.WithLabelValues(KindJob)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourcesFailed.WithLabelValues(KindFile, "extraction")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourcesFailed.WithLabelValues(KindDataset, "other")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.candidatesRanked))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fitScore))
}

func TestManagersDoNotShareState(t *testing.T) {
	a, b := NewManager(), NewManager()

	a.Ranked(50)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.candidatesRanked))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.candidatesRanked))
}

func TestNilManagerIsNoop(t *testing.T) {
	var m *Manager

	m.SourceProcessed(KindFile, time.Second)
	m.SourceFailed(KindFile, "extraction")
	m.Ranked(10)

	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewManager(WithNamespace("test"), WithDurationBuckets([]float64{0.01, 0.1, 1}))
	m.SourceProcessed(KindDataset, 5*time.Millisecond)
	m.Ranked(90)

	path := filepath.Join(t.TempDir(), "resume_matcher.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `test_sources_processed_total{kind="dataset"} 1`)
	assert.Contains(t, text, "test_candidates_ranked_total 1")
	assert.True(t, strings.Contains(text, "test_fit_score_bucket"), "missing fit score histogram")
	assert.Contains(t, text, `test_extraction_duration_seconds_bucket{kind="dataset",le="0.01"} 1`)
}

func TestWriteTextfileBadPath(t *testing.T) {
	m := NewManager()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing-dir", "out.prom"))
	require.Error(t, err)
}
