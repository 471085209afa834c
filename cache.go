package discordmcp

import (
	"strings"
	"sync"
)

// ScopeGlobal keys cache entries for lookups that were not qualified by a
// server scope.
const ScopeGlobal = "global"

type cacheKey struct {
	scope string
	name  string // lowercased
}

// ResolutionCache maps (kind, scope, lowercase name) to a snowflake ID for
// the lifetime of the process. Entries are advisory: every hit is
// re-validated against the live session by the resolver, and stale entries
// are dropped. Entries are idempotent (re-deriving a key yields the same or
// a strictly fresher value), so concurrent overlapping inserts are safe.
type ResolutionCache struct {
	mu     sync.RWMutex
	byKind map[EntityKind]map[cacheKey]string
}

// NewResolutionCache creates an empty cache with a namespace per entity
// kind, preserving per-kind ID isolation.
func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{
		byKind: map[EntityKind]map[cacheKey]string{
			KindServer:  {},
			KindChannel: {},
			KindUser:    {},
		},
	}
}

// Get returns the cached ID for (kind, scope, name), if any. Name matching
// is case-insensitive.
func (c *ResolutionCache) Get(kind EntityKind, scope, name string) (string, bool) {
	key := cacheKey{scope: scope, name: strings.ToLower(name)}
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byKind[kind][key]
	return id, ok
}

// Put records a successful resolution.
func (c *ResolutionCache) Put(kind EntityKind, scope, name, id string) {
	key := cacheKey{scope: scope, name: strings.ToLower(name)}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.byKind[kind]
	if !ok {
		m = make(map[cacheKey]string)
		c.byKind[kind] = m
	}
	m[key] = id
}

// Drop removes a stale entry.
func (c *ResolutionCache) Drop(kind EntityKind, scope, name string) {
	key := cacheKey{scope: scope, name: strings.ToLower(name)}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byKind[kind], key)
}
