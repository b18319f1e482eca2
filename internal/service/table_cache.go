package service

import (
	"context"
	"sync"
	"time"

	"filetable-gateway/internal/table"
)

// tableCache caches resolved file tables so repeated schema requests do not
// re-run discovery. Each FileTable memoizes its own resolution; the cache
// bounds how long a discovery snapshot (file listing, partition schema)
// stays live.
type tableCache struct {
	cache      map[string]*cachedTable
	mutex      sync.RWMutex
	ttl        time.Duration
	cleanupInt time.Duration
	stopChan   chan struct{}
}

type cachedTable struct {
	tableID   string
	table     *table.FileTable
	cachedAt  time.Time
	expiresAt time.Time
}

// newTableCache creates a resolved-table cache
func newTableCache(ttl time.Duration) *tableCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute // Default TTL
	}

	return &tableCache{
		cache:      make(map[string]*cachedTable),
		ttl:        ttl,
		cleanupInt: 10 * time.Minute,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the background cleanup process
func (tc *tableCache) Start(ctx context.Context) {
	ticker := time.NewTicker(tc.cleanupInt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tc.stopChan:
			return
		case <-ticker.C:
			tc.cleanupExpired()
		}
	}
}

// Stop stops the background cleanup process
func (tc *tableCache) Stop() {
	close(tc.stopChan)
}

// Get retrieves a cached table if present and fresh
func (tc *tableCache) Get(tableID string) (*table.FileTable, bool) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	cached, exists := tc.cache[tableID]
	if !exists {
		return nil, false
	}
	if time.Now().After(cached.expiresAt) {
		return nil, false
	}
	return cached.table, true
}

// Set stores a resolved table
func (tc *tableCache) Set(tableID string, t *table.FileTable) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	tc.cache[tableID] = &cachedTable{
		tableID:   tableID,
		table:     t,
		cachedAt:  time.Now(),
		expiresAt: time.Now().Add(tc.ttl),
	}
}

// Invalidate removes a table from the cache
func (tc *tableCache) Invalidate(tableID string) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	delete(tc.cache, tableID)
}

func (tc *tableCache) cleanupExpired() {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	now := time.Now()
	for id, cached := range tc.cache {
		if now.After(cached.expiresAt) {
			delete(tc.cache, id)
		}
	}
}
