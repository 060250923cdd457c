package agent

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadProducer(payload string, calls *int) func() (json.RawMessage, error) {
	return func() (json.RawMessage, error) {
		*calls++
		return json.RawMessage(payload), nil
	}
}

func TestGetOrFetch_FreshEntrySkipsProducer(t *testing.T) {
	cache, err := NewSectionCache(t.TempDir(), false)
	require.NoError(t, err)

	calls := 0
	producer := payloadProducer(`["a"]`, &calls)

	first, err := cache.GetOrFetch("jobs", 5*time.Minute, producer)
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(first))
	assert.Equal(t, 1, calls)

	second, err := cache.GetOrFetch("jobs", 5*time.Minute, producer)
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(second))
	assert.Equal(t, 1, calls, "fresh entry must not invoke the producer")
}

func TestGetOrFetch_StaleEntryInvokesProducer(t *testing.T) {
	dir := t.TempDir()

	// Simulate a write from a prior run that is already past its TTL: with
	// TTL 300s and a write 400s ago the entry must read as absent.
	stale := map[string]diskItem{
		"jobs": {
			Payload:   json.RawMessage(`["old"]`),
			WrittenAt: time.Now().Add(-400 * time.Second).UnixNano(),
		},
	}
	writeCacheFile(t, dir, stale)

	cache, err := NewSectionCache(dir, false)
	require.NoError(t, err)

	calls := 0
	payload, err := cache.GetOrFetch("jobs", 300*time.Second, payloadProducer(`["new"]`, &calls))
	require.NoError(t, err)
	assert.JSONEq(t, `["new"]`, string(payload))
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_RecentDiskEntrySurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	// A write 100s ago with TTL 300s is still fresh for a new process over
	// the same cache file.
	fresh := map[string]diskItem{
		"jobs": {
			Payload:   json.RawMessage(`["cached"]`),
			WrittenAt: time.Now().Add(-100 * time.Second).UnixNano(),
		},
	}
	writeCacheFile(t, dir, fresh)

	cache, err := NewSectionCache(dir, false)
	require.NoError(t, err)

	calls := 0
	payload, err := cache.GetOrFetch("jobs", 300*time.Second, payloadProducer(`["live"]`, &calls))
	require.NoError(t, err)
	assert.JSONEq(t, `["cached"]`, string(payload))
	assert.Zero(t, calls)
}

func TestGetOrFetch_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSectionCache(dir, false)
	require.NoError(t, err)

	calls := 0
	_, err = first.GetOrFetch("license", time.Hour, payloadProducer(`{"status":"Valid"}`, &calls))
	require.NoError(t, err)

	// A second instance over the same directory stands in for the next
	// process invocation.
	second, err := NewSectionCache(dir, false)
	require.NoError(t, err)

	payload, err := second.GetOrFetch("license", time.Hour, payloadProducer(`{"status":"Other"}`, &calls))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Valid"}`, string(payload))
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_PerKeyTTLs(t *testing.T) {
	cache, err := NewSectionCache(t.TempDir(), false)
	require.NoError(t, err)

	calls := 0
	_, err = cache.GetOrFetch("proxies", 30*time.Millisecond, payloadProducer(`["p"]`, &calls))
	require.NoError(t, err)
	_, err = cache.GetOrFetch("license", time.Hour, payloadProducer(`["l"]`, &calls))
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	time.Sleep(60 * time.Millisecond)

	// The short-TTL key expired, the long-TTL key did not.
	_, err = cache.GetOrFetch("proxies", 30*time.Millisecond, payloadProducer(`["p"]`, &calls))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	_, err = cache.GetOrFetch("license", time.Hour, payloadProducer(`["l"]`, &calls))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGetOrFetch_ShortenedTTLAppliesToExistingEntry(t *testing.T) {
	dir := t.TempDir()

	// Both written 10 minutes ago. Under the old interval of an hour they are
	// fresh; a run with the interval shortened to 5 minutes must refetch
	// immediately, not wait for the hour to pass.
	written := time.Now().Add(-10 * time.Minute).UnixNano()
	writeCacheFile(t, dir, map[string]diskItem{
		"jobs":    {Payload: json.RawMessage(`["old"]`), WrittenAt: written},
		"proxies": {Payload: json.RawMessage(`["p"]`), WrittenAt: written},
	})

	cache, err := NewSectionCache(dir, false)
	require.NoError(t, err)

	calls := 0
	payload, err := cache.GetOrFetch("jobs", 5*time.Minute, payloadProducer(`["new"]`, &calls))
	require.NoError(t, err)
	assert.JSONEq(t, `["new"]`, string(payload))
	assert.Equal(t, 1, calls)

	// An entry of the same age read with the original interval is still a
	// hit: freshness follows the interval passed in, not one fixed at write
	// time.
	payload, err = cache.GetOrFetch("proxies", time.Hour, payloadProducer(`["live"]`, &calls))
	require.NoError(t, err)
	assert.JSONEq(t, `["p"]`, string(payload))
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_DisabledAlwaysInvokesProducer(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewSectionCache(dir, true)
	require.NoError(t, err)

	calls := 0
	for i := 0; i < 3; i++ {
		_, err := cache.GetOrFetch("jobs", time.Hour, payloadProducer(`["x"]`, &calls))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)

	// Nothing is ever persisted.
	_, statErr := os.Stat(filepath.Join(dir, cacheFileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGetOrFetch_ProducerErrorNotCached(t *testing.T) {
	cache, err := NewSectionCache(t.TempDir(), false)
	require.NoError(t, err)

	boom := errors.New("endpoint down")
	calls := 0
	_, err = cache.GetOrFetch("jobs", time.Hour, func() (json.RawMessage, error) {
		calls++
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	// The failure was not stored as a false success: the next call runs the
	// producer again.
	payload, err := cache.GetOrFetch("jobs", time.Hour, payloadProducer(`["ok"]`, &calls))
	require.NoError(t, err)
	assert.JSONEq(t, `["ok"]`, string(payload))
	assert.Equal(t, 2, calls)
}

func TestNewSectionCache_CorruptFileIsColdCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), []byte("{not json"), 0o644))

	cache, err := NewSectionCache(dir, false)
	require.NoError(t, err)

	calls := 0
	_, err = cache.GetOrFetch("jobs", time.Hour, payloadProducer(`["x"]`, &calls))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func writeCacheFile(t *testing.T, dir string, items map[string]diskItem) {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), data, 0o644))
}
