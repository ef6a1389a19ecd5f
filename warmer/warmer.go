// Package warmer pre-populates and prunes the timetable cache ahead of user
// demand. It owns no algorithm of its own; every sweep is a background
// priority run of the journey search engine.
package warmer

import (
	"context"
	"log"
	"time"

	"github.com/denizpo/smart-train-finder/dbapi"
	"github.com/denizpo/smart-train-finder/journey"
	"github.com/denizpo/smart-train-finder/stations"
	"github.com/denizpo/smart-train-finder/timetable"
)

// Warmer sweeps the corridor across a rolling hour window.
type Warmer struct {
	engine   *journey.Engine
	cache    *timetable.Cache
	resolver *stations.Resolver

	origin      journey.Station
	destination journey.Station
	opts        journey.Options

	behind time.Duration
	ahead  time.Duration
}

func New(engine *journey.Engine, cache *timetable.Cache, resolver *stations.Resolver,
	origin, destination journey.Station, opts journey.Options, behind, ahead time.Duration) *Warmer {
	opts.Priority = dbapi.Background
	return &Warmer{
		engine:      engine,
		cache:       cache,
		resolver:    resolver,
		origin:      origin,
		destination: destination,
		opts:        opts,
		behind:      behind,
		ahead:       ahead,
	}
}

// Run performs the startup sweep, then revises the cache on every hour
// boundary and resets the station resolver once a day. Blocks until ctx is
// done.
func (w *Warmer) Run(ctx context.Context) {
	started := time.Now()
	w.sweep(ctx, started)
	log.Printf("warmer: initial sweep done in %s, %d slots cached", time.Since(started).Round(time.Second), w.cache.Len())

	hourly := time.NewTimer(untilNextHour(time.Now()))
	defer hourly.Stop()
	daily := time.NewTicker(24 * time.Hour)
	defer daily.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hourly.C:
			w.revise(ctx, time.Now())
			hourly.Reset(untilNextHour(time.Now()))
		case <-daily.C:
			w.resolver.Reset()
			log.Printf("warmer: station resolver cache cleared")
		}
	}
}

// sweep runs one background search per hour across the rolling window.
func (w *Warmer) sweep(ctx context.Context, now time.Time) {
	for _, at := range w.sweepTimes(now) {
		if ctx.Err() != nil {
			return
		}
		w.search(ctx, at)
	}
}

// sweepTimes enumerates the hour marks from now-behind to now+ahead.
func (w *Warmer) sweepTimes(now time.Time) []time.Time {
	first := now.Add(-w.behind).Truncate(time.Hour)
	last := now.Add(w.ahead)
	var times []time.Time
	for at := first; !at.After(last); at = at.Add(time.Hour) {
		times = append(times, at)
	}
	return times
}

// revise evicts stale slots and warms the newest hour entering the window.
func (w *Warmer) revise(ctx context.Context, now time.Time) {
	evicted := w.cache.EvictStale(now)
	w.search(ctx, now.Add(w.ahead).Truncate(time.Hour))
	log.Printf("warmer: revised cache, evicted %d slots, %d remain", evicted, w.cache.Len())
}

func (w *Warmer) search(ctx context.Context, at time.Time) {
	res := w.engine.FindJourneys(ctx, w.origin, w.destination, at, w.opts)
	if res == nil {
		// A nil result is not cache-worthy confirmation; the hour may
		// still fill in on a later sweep.
		log.Printf("warmer: no journeys for sweep hour %s", at.Format(time.RFC3339))
		return
	}
	log.Printf("warmer: %s: %d journeys, first %s", at.Format(time.RFC3339), len(res), res[0].Describe())
}

func untilNextHour(now time.Time) time.Duration {
	return now.Truncate(time.Hour).Add(time.Hour).Sub(now)
}
