package core

import (
	"sync"
	"time"
)

// settingsTTL is how long a cached setting stays fresh before the next read
// goes back to the store.
const settingsTTL = 5 * time.Minute

type settingEntry struct {
	value     string
	fetchedAt time.Time
}

// SettingsCache is a read-through cache over the settings table with
// time-based expiry and explicit invalidation on write.
type SettingsCache struct {
	mu      sync.Mutex
	store   Storage
	ttl     time.Duration
	entries map[string]settingEntry
	now     func() time.Time
}

// NewSettingsCache creates a settings cache. A zero ttl uses the default.
func NewSettingsCache(store Storage, ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		ttl = settingsTTL
	}
	return &SettingsCache{
		store:   store,
		ttl:     ttl,
		entries: make(map[string]settingEntry),
		now:     time.Now,
	}
}

// Get returns the setting value, reading through to the store when the
// cached entry is missing or stale.
func (c *SettingsCache) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.value, nil
	}

	value, err := c.store.GetSetting(key)
	if err != nil {
		return "", err
	}
	c.entries[key] = settingEntry{value: value, fetchedAt: c.now()}

	return value, nil
}

// GetDefault returns the setting value or fallback when unset.
func (c *SettingsCache) GetDefault(key, fallback string) string {
	value, err := c.Get(key)
	if err != nil {
		return fallback
	}
	return value
}

// Invalidate drops the cached entry for a key. Called by the update path so
// writes are visible immediately.
func (c *SettingsCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
