// Package timetable is the time-bucketed store of plan documents keyed by
// (station, civil date, hour). Concurrent requesters for one key observe a
// single underlying fetch; successful documents stay cached until their hour
// has receded past the staleness window.
package timetable

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/denizpo/smart-train-finder/dbapi"
	"github.com/denizpo/smart-train-finder/dbtime"
)

// PlanSource fetches one plan document. Implemented by *dbapi.Client.
type PlanSource interface {
	Plan(ctx context.Context, eva string, slot dbtime.Civil, prio dbapi.Priority) (*dbapi.Timetable, error)
}

type entry struct {
	doc   *dbapi.Timetable
	start time.Time // slot start instant, for eviction
}

// Cache holds fetched timetable slots. Safe for concurrent use.
type Cache struct {
	source PlanSource
	window time.Duration

	mu    sync.RWMutex
	slots map[string]entry
	group singleflight.Group
}

// NewCache builds a cache evicting entries once their slot start is more
// than window before now.
func NewCache(source PlanSource, window time.Duration) *Cache {
	return &Cache{source: source, window: window, slots: make(map[string]entry)}
}

// Slot returns the timetable document for one station and civil hour, or nil
// when no data is available. Fetch and parse failures are logged and
// swallowed here; they are never cached, so a later call can retry.
func (c *Cache) Slot(ctx context.Context, eva string, slot dbtime.Civil, prio dbapi.Priority) *dbapi.Timetable {
	key := slot.Key(eva)

	c.mu.RLock()
	e, ok := c.slots[key]
	c.mu.RUnlock()
	if ok {
		return e.doc
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		e, ok := c.slots[key]
		c.mu.RUnlock()
		if ok {
			return e.doc, nil
		}
		doc, err := c.source.Plan(ctx, eva, slot, prio)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.slots[key] = entry{doc: doc, start: slot.Start()}
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		log.Printf("timetable: no data for %s: %v", key, err)
		return nil
	}
	return v.(*dbapi.Timetable)
}

// EvictStale drops every slot whose civil start time is more than the
// staleness window before now and returns how many were removed. Planned
// data never changes, so only age makes an entry useless.
func (c *Cache) EvictStale(now time.Time) int {
	threshold := now.Add(-c.window)
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key, e := range c.slots {
		if e.start.Before(threshold) {
			delete(c.slots, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of cached slots.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}
