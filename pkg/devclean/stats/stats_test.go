package stats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAccumulates(t *testing.T) {
	s := &MemoryStore{}
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, RecordScan(s, t1))
	require.NoError(t, RecordScan(s, t2))
	require.NoError(t, RecordClean(s, 1000, t2))
	require.NoError(t, RecordClean(s, 500, t2))

	st := s.Load()
	assert.Equal(t, int64(2), st.TotalScans)
	assert.Equal(t, int64(2), st.TotalCleans)
	assert.Equal(t, int64(1500), st.TotalSpaceFreed)
	require.NotNil(t, st.LastScan)
	assert.True(t, st.LastScan.Equal(t2))
	require.NotNil(t, st.LastClean)
}

func TestRecordCleanIgnoresNegative(t *testing.T) {
	s := &MemoryStore{}
	require.NoError(t, RecordClean(s, -5, time.Now()))
	assert.Zero(t, s.Load().TotalSpaceFreed)
	assert.Equal(t, int64(1), s.Load().TotalCleans)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stats.json")
	s := NewFileStore(path)

	assert.Equal(t, Stats{}, s.Load(), "missing file yields defaults")

	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, RecordScan(s, now))
	require.NoError(t, RecordClean(s, 2048, now))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{"totalScans", "totalCleans", "totalSpaceFreed", "lastScan", "lastClean"} {
		assert.True(t, strings.Contains(string(data), `"`+key+`"`), "missing key %s", key)
	}

	reloaded := NewFileStore(path).Load()
	assert.Equal(t, int64(1), reloaded.TotalScans)
	assert.Equal(t, int64(2048), reloaded.TotalSpaceFreed)
	require.NotNil(t, reloaded.LastClean)
	assert.True(t, reloaded.LastClean.Equal(now))
}

func TestFileStoreCorruptResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(path)
	assert.Equal(t, Stats{}, s.Load())

	require.NoError(t, RecordScan(s, time.Now()))
	assert.Equal(t, int64(1), s.Load().TotalScans)
}

func TestFileStoreReadsNullTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	legacy := `{"totalScans": 4, "totalCleans": 1, "totalSpaceFreed": 99, "lastScan": null, "lastClean": null}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	st := NewFileStore(path).Load()
	assert.Equal(t, int64(4), st.TotalScans)
	assert.Nil(t, st.LastScan)
}
