// Package journey explores the reachable-station graph hour-by-hour and
// assembles ranked multi-leg itineraries between a fixed station pair.
package journey

import (
	"context"
	"fmt"
	"time"

	"github.com/denizpo/smart-train-finder/dbapi"
	"github.com/denizpo/smart-train-finder/dbtime"
)

// SlotSource provides timetable documents. A nil document means no data for
// that slot; provider failures never surface here as errors.
type SlotSource interface {
	Slot(ctx context.Context, eva string, slot dbtime.Civil, prio dbapi.Priority) *dbapi.Timetable
}

// IDResolver resolves a station name to its EVA id. ok is false when the
// name does not resolve; the branch using it is pruned.
type IDResolver interface {
	Resolve(ctx context.Context, name string, prio dbapi.Priority) (string, bool)
}

// Options bound one search. All limits are caller-supplied; the zero value
// is not usable.
type Options struct {
	MaxTransfers           int
	MaxStops               int
	MaxDurationMinutes     int
	MaxLookaheadHours      int
	MaxTransferWaitMinutes int
	MaxResults             int
	Priority               dbapi.Priority
}

// Engine is the journey search engine. The transfer station list is the
// permitted-direction allow-list: a routing path must touch one of these
// names (or the destination itself) to still count as heading the right way.
type Engine struct {
	slots            SlotSource
	resolver         IDResolver
	transferStations []string
}

func NewEngine(slots SlotSource, resolver IDResolver, transferStations []string) *Engine {
	return &Engine{slots: slots, resolver: resolver, transferStations: transferStations}
}

// FindJourneys runs a breadth-first search from the origin at the given
// start instant and returns the itineraries found, capped at
// opts.MaxResults. It returns nil — not an empty slice — when the search
// completed without finding any journey, so callers can tell "no journeys"
// apart from a populated result.
func (e *Engine) FindJourneys(ctx context.Context, from, to Station, start time.Time, opts Options) []Itinerary {
	allowed := make(map[string]bool, len(e.transferStations)+1)
	for _, name := range e.transferStations {
		allowed[name] = true
	}
	allowed[to.Name] = true

	type visitKey struct {
		eva     string
		train   string
		arrival int64
	}
	visited := make(map[visitKey]bool)
	queue := []*node{{station: from}}
	var results []Itinerary

	for len(queue) > 0 {
		if len(results) >= opts.MaxResults {
			return results
		}
		if ctx.Err() != nil {
			break
		}
		n := queue[0]
		queue = queue[1:]

		if len(n.path) > opts.MaxStops {
			continue
		}
		if !n.start.IsZero() && !n.arrival.IsZero() &&
			minutesBetween(n.start, n.arrival) > float64(opts.MaxDurationMinutes) {
			continue
		}

		k := visitKey{eva: n.station.EVA, train: n.train, arrival: n.arrival.UnixNano()}
		if visited[k] {
			continue
		}
		visited[k] = true

		if n.station.EVA == to.EVA {
			results = append(results, e.finish(ctx, n, start, opts))
			continue
		}

		if n.transfers > opts.MaxTransfers {
			continue
		}

		slot := e.slotFor(ctx, n, start, opts)
		if slot == nil {
			continue
		}
		queue = append(queue, e.expand(ctx, n, slot, allowed, opts)...)
	}

	if len(results) == 0 {
		return nil
	}
	return results
}

// slotFor fetches the timetable to expand a node from. A node riding a train
// advances hour-by-hour until the document mentions that run id, giving up
// once the lookahead bound is exceeded.
func (e *Engine) slotFor(ctx context.Context, n *node, start time.Time, opts Options) *dbapi.Timetable {
	ref := n.arrival
	if ref.IsZero() {
		ref = start
	}
	slot := dbtime.At(ref)

	if n.train == "" {
		return e.slots.Slot(ctx, n.station.EVA, slot, opts.Priority)
	}
	for h := 0; h <= opts.MaxLookaheadHours; h++ {
		doc := e.slots.Slot(ctx, n.station.EVA, slot, opts.Priority)
		if doc != nil && doc.Contains(n.train) {
			return doc
		}
		slot = slot.AddHours(1)
	}
	return nil
}

// expand enumerates the stop events a node can board and returns the next
// search nodes, in the order the events appear in the document.
func (e *Engine) expand(ctx context.Context, n *node, slot *dbapi.Timetable, allowed map[string]bool, opts Options) []*node {
	visitedNames := n.visitedNames()

	// Resolved arrival of the train the node rode in on, if the document
	// carries it. Needed to validate connections at this station.
	var currentArrival time.Time
	if cur := slot.Find(n.train); cur != nil {
		if t, ok := cur.Arrival.Time(); ok {
			currentArrival = t
		}
	}

	var next []*node
	for i := range slot.Stops {
		ev := &slot.Stops[i]
		departure, ok := ev.Departure.Time()
		if !ok {
			continue
		}
		routing := ev.Departure.StationPath()
		if len(routing) == 0 {
			continue
		}
		if touchesAny(routing, visitedNames) {
			continue
		}
		if !touchesAny(routing, allowed) {
			continue
		}

		runID := ev.RunID()
		transfers := n.transfers
		if n.train != "" && runID != n.train {
			// Boarding a different train: the connection must be
			// verifiable against the current train's arrival here.
			if currentArrival.IsZero() {
				continue
			}
			if !departure.After(currentArrival) {
				continue
			}
			if departure.Sub(currentArrival) > time.Duration(opts.MaxTransferWaitMinutes)*time.Minute {
				continue
			}
			transfers++
			if transfers > opts.MaxTransfers {
				continue
			}
		} else if n.train != "" && runID == n.train {
			if !currentArrival.IsZero() && departure.Before(currentArrival) {
				continue
			}
		}

		for _, name := range routing {
			eva, ok := e.resolver.Resolve(ctx, name, opts.Priority)
			if !ok {
				continue
			}
			leg := Leg{
				From:      n.station,
				To:        Station{EVA: eva, Name: name},
				TrainID:   runID,
				TrainType: ev.Label.Category,
				Departure: departure,
			}
			path := make([]Leg, len(n.path), len(n.path)+1)
			copy(path, n.path)
			start := n.start
			if start.IsZero() {
				start = departure
			}
			next = append(next, &node{
				station:   leg.To,
				train:     runID,
				transfers: transfers,
				arrival:   departure,
				start:     start,
				path:      append(path, leg),
			})
		}
	}
	return next
}

// finish resolves the final arrival instant at the destination with one last
// timetable lookup for the current train, then emits the itinerary.
func (e *Engine) finish(ctx context.Context, n *node, start time.Time, opts Options) Itinerary {
	if n.train != "" {
		if doc := e.slotFor(ctx, n, start, opts); doc != nil {
			if ev := doc.Find(n.train); ev != nil {
				if t, ok := ev.Arrival.Time(); ok && len(n.path) > 0 {
					n.path[len(n.path)-1].Arrival = t
				}
			}
		}
	}

	it := Itinerary{
		Legs:      n.path,
		Transfers: n.transfers,
		Start:     n.start,
	}
	if it.Start.IsZero() && len(n.path) > 0 {
		it.Start = n.path[0].Departure
	}
	if len(n.path) > 0 {
		it.Arrival = n.path[len(n.path)-1].Arrival
	}
	return it
}

func touchesAny(names []string, set map[string]bool) bool {
	for _, name := range names {
		if set[name] {
			return true
		}
	}
	return false
}

// Describe renders a one-line summary for logs.
func (it Itinerary) Describe() string {
	if len(it.Legs) == 0 {
		return "empty itinerary"
	}
	return fmt.Sprintf("%s -> %s, %d legs, %d transfers",
		it.Legs[0].From.Name, it.Legs[len(it.Legs)-1].To.Name, len(it.Legs), it.Transfers)
}
