package timetable

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/denizpo/smart-train-finder/dbapi"
	"github.com/denizpo/smart-train-finder/dbtime"
)

// stubSource counts outbound calls and can be told to fail.
type stubSource struct {
	calls int32
	delay time.Duration
	fail  atomic.Bool
}

func (s *stubSource) Plan(ctx context.Context, eva string, slot dbtime.Civil, prio dbapi.Priority) (*dbapi.Timetable, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail.Load() {
		return nil, errors.New("boom")
	}
	return &dbapi.Timetable{Station: eva}, nil
}

func TestCacheCoalescesConcurrentFetches(t *testing.T) {
	src := &stubSource{delay: 20 * time.Millisecond}
	c := NewCache(src, 13*time.Hour)
	slot := dbtime.Civil{Year: 2025, Month: time.June, Day: 7, Hour: 10}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if doc := c.Slot(context.Background(), "8002549", slot, dbapi.Interactive); doc == nil {
				t.Error("expected a document")
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Errorf("outbound calls = %d, want exactly 1", got)
	}
}

func TestCacheHitSkipsFetch(t *testing.T) {
	src := &stubSource{}
	c := NewCache(src, 13*time.Hour)
	slot := dbtime.Civil{Year: 2025, Month: time.June, Day: 7, Hour: 10}

	for i := 0; i < 3; i++ {
		if c.Slot(context.Background(), "8002549", slot, dbapi.Background) == nil {
			t.Fatal("expected a document")
		}
	}
	if got := atomic.LoadInt32(&src.calls); got != 1 {
		t.Errorf("outbound calls = %d, want 1", got)
	}
}

func TestCacheFailureNotCached(t *testing.T) {
	src := &stubSource{}
	src.fail.Store(true)
	c := NewCache(src, 13*time.Hour)
	slot := dbtime.Civil{Year: 2025, Month: time.June, Day: 7, Hour: 10}

	if doc := c.Slot(context.Background(), "8002549", slot, dbapi.Interactive); doc != nil {
		t.Error("failed fetch should yield nil")
	}
	if c.Len() != 0 {
		t.Error("failure must not be cached")
	}

	// The provider recovers; a retry on the same key must go out again and
	// succeed.
	src.fail.Store(false)
	if doc := c.Slot(context.Background(), "8002549", slot, dbapi.Interactive); doc == nil {
		t.Error("retry should succeed")
	}
	if got := atomic.LoadInt32(&src.calls); got != 2 {
		t.Errorf("outbound calls = %d, want 2", got)
	}
}

func TestCacheEvictStale(t *testing.T) {
	src := &stubSource{}
	c := NewCache(src, 13*time.Hour)
	now := time.Now()

	old := dbtime.At(now.Add(-20 * time.Hour))
	fresh := dbtime.At(now)
	c.Slot(context.Background(), "8002549", old, dbapi.Background)
	c.Slot(context.Background(), "8002549", fresh, dbapi.Background)
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}

	if removed := c.EvictStale(now); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("len after eviction = %d, want 1", c.Len())
	}

	// The fresh slot must still be served from cache.
	before := atomic.LoadInt32(&src.calls)
	c.Slot(context.Background(), "8002549", fresh, dbapi.Background)
	if atomic.LoadInt32(&src.calls) != before {
		t.Error("fresh slot should have stayed cached")
	}
}
