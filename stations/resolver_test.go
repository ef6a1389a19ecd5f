package stations

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/denizpo/smart-train-finder/dbapi"
)

type stubLookup struct {
	calls int32
	delay time.Duration
	list  *dbapi.StationList
	err   error
}

func (s *stubLookup) Stations(ctx context.Context, name string, prio dbapi.Priority) (*dbapi.StationList, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.list, s.err
}

func TestResolveExactMatchWins(t *testing.T) {
	src := &stubLookup{list: &dbapi.StationList{Stations: []dbapi.StationEntry{
		{Name: "Amsterdam Zuid", EVA: "8400061"},
		{Name: "Amsterdam Centraal", EVA: "8400058"},
	}}}
	r := NewResolver(src)

	eva, ok := r.Resolve(context.Background(), "amsterdam centraal", dbapi.Interactive)
	if !ok || eva != "8400058" {
		t.Errorf("Resolve = (%q, %v), want (8400058, true)", eva, ok)
	}
}

func TestResolveFallsBackToFirstCandidate(t *testing.T) {
	src := &stubLookup{list: &dbapi.StationList{Stations: []dbapi.StationEntry{
		{Name: "Utrecht Centraal", EVA: "8400621"},
		{Name: "Utrecht Zuilen", EVA: "8400622"},
	}}}
	r := NewResolver(src)

	eva, ok := r.Resolve(context.Background(), "Utrecht", dbapi.Background)
	if !ok || eva != "8400621" {
		t.Errorf("Resolve = (%q, %v), want first candidate", eva, ok)
	}
}

func TestResolveCachesPerName(t *testing.T) {
	src := &stubLookup{list: &dbapi.StationList{Stations: []dbapi.StationEntry{
		{Name: "Osnabrück Hbf", EVA: "8000294"},
	}}}
	r := NewResolver(src)

	for i := 0; i < 3; i++ {
		// Different casings share the same cache entry.
		name := []string{"Osnabrück Hbf", "osnabrück hbf", "OSNABRÜCK HBF"}[i]
		if _, ok := r.Resolve(context.Background(), name, dbapi.Interactive); !ok {
			t.Fatal("expected resolution")
		}
	}
	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Errorf("outbound calls = %d, want 1", got)
	}
}

func TestResolveNegativeCaching(t *testing.T) {
	src := &stubLookup{err: errors.New("boom")}
	r := NewResolver(src)

	if _, ok := r.Resolve(context.Background(), "Nowhere", dbapi.Interactive); ok {
		t.Error("failed lookup should not resolve")
	}
	// The failure is cached: no second outbound call.
	if _, ok := r.Resolve(context.Background(), "Nowhere", dbapi.Interactive); ok {
		t.Error("negative entry should stay negative")
	}
	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Errorf("outbound calls = %d, want 1", got)
	}

	// Reset opens a new epoch and admits a retry.
	src.err = nil
	src.list = &dbapi.StationList{Stations: []dbapi.StationEntry{{Name: "Nowhere", EVA: "42"}}}
	r.Reset()
	if eva, ok := r.Resolve(context.Background(), "Nowhere", dbapi.Interactive); !ok || eva != "42" {
		t.Errorf("Resolve after reset = (%q, %v)", eva, ok)
	}
	if got := atomic.LoadInt32(&src.calls); got != 2 {
		t.Errorf("outbound calls = %d, want 2", got)
	}
}

func TestResolveCoalescesConcurrentCallers(t *testing.T) {
	src := &stubLookup{
		delay: 20 * time.Millisecond,
		list:  &dbapi.StationList{Stations: []dbapi.StationEntry{{Name: "Duisburg Hbf", EVA: "8000086"}}},
	}
	r := NewResolver(src)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if eva, ok := r.Resolve(context.Background(), "Duisburg Hbf", dbapi.Background); !ok || eva != "8000086" {
				t.Errorf("Resolve = (%q, %v)", eva, ok)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Errorf("outbound calls = %d, want exactly 1", got)
	}
}

func TestResolveEmptyName(t *testing.T) {
	r := NewResolver(&stubLookup{})
	if _, ok := r.Resolve(context.Background(), "", dbapi.Interactive); ok {
		t.Error("empty name must not resolve")
	}
}
