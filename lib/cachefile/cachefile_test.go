package cachefile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Current float64 `json:"current"`
}

func TestGetWithinTtl(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := New[payload](path, time.Hour)

	err := cache.Set("testland:unemployment", payload{Current: 4.4})
	require.NoError(t, err)

	got, hit := cache.Get("testland:unemployment")
	require.True(t, hit)
	require.Equal(t, payload{Current: 4.4}, got)

	_, hit = cache.Get("testland:ppi")
	require.False(t, hit)
}

func TestGetAfterTtlExpires(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := New[payload](path, time.Hour)

	err := cache.Set("testland:unemployment", payload{Current: 4.4})
	require.NoError(t, err)

	cache.now = func() time.Time {
		return time.Now().UTC().Add(time.Hour + time.Minute)
	}
	_, hit := cache.Get("testland:unemployment")
	require.False(t, hit)
}

func TestPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	first := New[payload](path, time.Hour)
	err := first.Set("testland:unemployment", payload{Current: 4.4})
	require.NoError(t, err)

	second := New[payload](path, time.Hour)
	got, hit := second.Get("testland:unemployment")
	require.True(t, hit)
	require.Equal(t, payload{Current: 4.4}, got)
}

func TestCorruptFileYieldsEmptyCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	err := os.WriteFile(path, []byte("{not json"), 0600)
	require.NoError(t, err)

	cache := New[payload](path, time.Hour)
	_, hit := cache.Get("anything")
	require.False(t, hit)

	// the cache still works after discarding the corrupt file
	err = cache.Set("testland:unemployment", payload{Current: 4.4})
	require.NoError(t, err)
	_, hit = cache.Get("testland:unemployment")
	require.True(t, hit)
}
