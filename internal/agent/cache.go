package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

const cacheFileName = "veeam_agent_cache.json"

// diskItem is the stored form of one cached section payload. The write
// timestamp, not a fixed expiry, is persisted: freshness is judged against
// the TTL in effect at read time, so a changed per-section cache interval
// applies immediately instead of after the old entry ages out.
type diskItem struct {
	Payload   json.RawMessage `json:"payload"`
	WrittenAt int64           `json:"writtenAt"`
}

// SectionCache provides per-section TTL caching of serialized payloads.
// go-cache is the in-memory store; the item map is persisted to a JSON file
// so cached sections survive across process invocations.
//
// The file is the only resource shared across runs. There is no cross-process
// locking: concurrent writers race and the last write wins, which is
// acceptable because a stale entry is never worse than a cache miss and
// corrects itself at the next TTL expiry.
type SectionCache struct {
	mu       sync.Mutex
	mem      *cache.Cache
	path     string
	disabled bool
}

// NewSectionCache opens the cache backed by a file under dir, loading any
// entries a previous run left behind. With disabled set, every GetOrFetch
// call invokes its producer and nothing is ever stored.
func NewSectionCache(dir string, disabled bool) (*SectionCache, error) {
	if disabled {
		return &SectionCache{disabled: true}, nil
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	path := filepath.Join(dir, cacheFileName)
	items := loadItems(path)
	return &SectionCache{
		mem:  cache.NewFrom(cache.NoExpiration, 0, items),
		path: path,
	}, nil
}

// GetOrFetch returns the cached payload for key when its last write is
// younger than ttl, otherwise invokes producer, stores the fresh payload,
// and returns it. Producer errors propagate uncached: a failed collection is
// never stored as a false success.
func (sc *SectionCache) GetOrFetch(key string, ttl time.Duration, producer func() (json.RawMessage, error)) (json.RawMessage, error) {
	if sc.disabled || ttl <= 0 {
		return producer()
	}

	sc.mu.Lock()
	if v, found := sc.mem.Get(key); found {
		if item, ok := v.(diskItem); ok && time.Since(time.Unix(0, item.WrittenAt)) < ttl {
			sc.mu.Unlock()
			log.Debugf("Cache hit for section %s", key)
			return item.Payload, nil
		}
	}
	sc.mu.Unlock()

	payload, err := producer()
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	sc.mem.Set(key, diskItem{Payload: payload, WrittenAt: time.Now().UnixNano()}, cache.NoExpiration)
	sc.persistLocked()
	sc.mu.Unlock()
	return payload, nil
}

// persistLocked writes the live item map to disk, atomically via a temp file
// rename. Persistence failures are logged, not fatal: the cache degrades to
// a per-run store.
func (sc *SectionCache) persistLocked() {
	out := make(map[string]diskItem)
	for key, item := range sc.mem.Items() {
		stored, ok := item.Object.(diskItem)
		if !ok {
			continue
		}
		out[key] = stored
	}

	data, err := json.Marshal(out)
	if err != nil {
		log.Errorf("Failed to encode cache: %v", err)
		return
	}
	tmp := sc.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Errorf("Failed to write cache file: %v", err)
		return
	}
	if err := os.Rename(tmp, sc.path); err != nil {
		log.Errorf("Failed to replace cache file: %v", err)
	}
}

// loadItems reads the persisted item map. A missing or unreadable file is a
// cold cache, not an error. Entries are kept regardless of age; staleness is
// decided per read against the TTL then in effect.
func loadItems(path string) map[string]cache.Item {
	items := make(map[string]cache.Item)

	data, err := os.ReadFile(path)
	if err != nil {
		return items
	}
	var stored map[string]diskItem
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Warnf("Discarding unreadable cache file %s: %v", path, err)
		return items
	}

	for key, item := range stored {
		items[key] = cache.Item{Object: item}
	}
	return items
}
