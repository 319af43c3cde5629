package statecodes

import (
	"context"
	"strings"

	"github.com/acisops/acispy/internal/monitoring"
)

// Key identifies a field by type ("msids", "states", ...) and name.
type Key struct {
	Type string
	Name string
}

type cached struct {
	table Table
	ok    bool
}

// Cache memoises state-code tables per field. Fixed tables (for instance
// CommandedStateCodes) can be registered up front; every other msids field
// is resolved through the Lookup once and the result, including "not
// available", is kept for the life of the cache.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	lookup  Lookup
	logf    monitoring.Logger
	entries map[Key]cached
}

// NewCache returns a cache that resolves msids fields through lookup, which
// may be nil.
func NewCache(lookup Lookup, logf monitoring.Logger) *Cache {
	return &Cache{
		lookup:  lookup,
		logf:    monitoring.OrDefault(logf),
		entries: make(map[Key]cached),
	}
}

// Set registers a fixed table for a field, replacing any cached result.
func (c *Cache) Set(k Key, t Table) {
	c.entries[normalize(k)] = cached{table: t, ok: true}
}

// Get returns the table for a field. Only "msids" fields are looked up in
// the telemetry database; other field types are only known through Set.
func (c *Cache) Get(ctx context.Context, k Key) (Table, bool) {
	k = normalize(k)
	if e, ok := c.entries[k]; ok {
		return e.table, e.ok
	}
	var e cached
	if k.Type == "msids" {
		e.table, e.ok = GetStateCodes(ctx, c.lookup, strings.ToUpper(k.Name), c.logf)
	}
	c.entries[k] = e
	return e.table, e.ok
}

// Keys returns the fields that currently have a table.
func (c *Cache) Keys() []Key {
	out := make([]Key, 0, len(c.entries))
	for k, e := range c.entries {
		if e.ok {
			out = append(out, k)
		}
	}
	return out
}

func normalize(k Key) Key {
	return Key{Type: strings.ToLower(k.Type), Name: strings.ToLower(k.Name)}
}
