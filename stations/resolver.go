// Package stations resolves free-text station names to provider EVA
// identifiers. Results, including failures, are cached so each distinct name
// costs at most one outbound call per cache epoch.
package stations

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/denizpo/smart-train-finder/dbapi"
)

// LookupSource performs the station lookup call. Implemented by *dbapi.Client.
type LookupSource interface {
	Stations(ctx context.Context, name string, prio dbapi.Priority) (*dbapi.StationList, error)
}

// Resolver caches name→EVA resolutions. An empty cached id is a negative
// entry: the name failed to resolve and will not be retried until Reset.
// Safe for concurrent use.
type Resolver struct {
	source LookupSource

	mu    sync.RWMutex
	ids   map[string]string
	group singleflight.Group
}

func NewResolver(source LookupSource) *Resolver {
	return &Resolver{source: source, ids: make(map[string]string)}
}

// Resolve returns the EVA id for a station name. Concurrent callers for the
// same name share one outbound call. The candidate whose name matches
// case-insensitively wins; otherwise the first candidate is used.
func (r *Resolver) Resolve(ctx context.Context, name string, prio dbapi.Priority) (string, bool) {
	if name == "" {
		return "", false
	}
	key := strings.ToLower(name)

	r.mu.RLock()
	id, ok := r.ids[key]
	r.mu.RUnlock()
	if ok {
		return id, id != ""
	}

	v, _, _ := r.group.Do(key, func() (any, error) {
		r.mu.RLock()
		id, ok := r.ids[key]
		r.mu.RUnlock()
		if ok {
			return id, nil
		}
		id = r.lookup(ctx, name, key, prio)
		r.mu.Lock()
		r.ids[key] = id
		r.mu.Unlock()
		return id, nil
	})
	id = v.(string)
	return id, id != ""
}

// lookup performs the outbound call and candidate selection. Any failure
// resolves to the empty id, which the caller stores as a negative entry.
func (r *Resolver) lookup(ctx context.Context, name, key string, prio dbapi.Priority) string {
	list, err := r.source.Stations(ctx, name, prio)
	if err != nil || list == nil || len(list.Stations) == 0 {
		return ""
	}
	for _, st := range list.Stations {
		if strings.ToLower(st.Name) == key {
			return st.EVA
		}
	}
	return list.Stations[0].EVA
}

// Reset clears the cache wholesale. Run on a daily cycle so provider-side
// corrections and previously failed names get another chance.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.ids = make(map[string]string)
	r.mu.Unlock()
}
