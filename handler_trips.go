package trainfinder

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/denizpo/smart-train-finder/config"
	"github.com/denizpo/smart-train-finder/dbapi"
	"github.com/denizpo/smart-train-finder/dbtime"
	"github.com/denizpo/smart-train-finder/journey"
)

// handleTrips serves GET /api/trips?is_departure=&date=&hour=. The direction
// flag picks which end of the corridor is the origin; date and hour are the
// requested civil departure slot.
func (a *App) handleTrips(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "missing 'date'")
		return
	}
	hour := 0
	if s := q.Get("hour"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 || v > 23 {
			writeError(w, http.StatusBadRequest, "invalid 'hour'")
			return
		}
		hour = v
	}
	start, err := startInstant(date, hour)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'date'")
		return
	}

	from, to := corridor(a.Cfg.Route, q.Get("is_departure") != "false")

	opts := journey.Options{
		MaxTransfers:           a.Cfg.Search.MaxTransfers,
		MaxStops:               a.Cfg.Search.MaxStops,
		MaxDurationMinutes:     a.Cfg.Search.MaxDurationMinutes,
		MaxLookaheadHours:      a.Cfg.Search.MaxLookaheadHours,
		MaxTransferWaitMinutes: a.Cfg.Search.MaxTransferWaitMinutes,
		MaxResults:             a.Cfg.Search.MaxResults,
		Priority:               dbapi.Interactive,
	}

	began := time.Now()
	journeys := a.Finder.FindJourneys(r.Context(), from, to, start, opts)
	log.Printf("trips: %s -> %s at %s: %d journeys in %s",
		from.Name, to.Name, start.Format(time.RFC3339), len(journeys), time.Since(began).Round(time.Millisecond))

	// A nil result means the search found nothing; the client sees an
	// empty list either way.
	_ = json.NewEncoder(w).Encode(tripsResponse{Journeys: journeysJSON(journeys)})
}

// corridor picks origin and destination from the fixed station table.
func corridor(route config.RouteConfig, departing bool) (journey.Station, journey.Station) {
	origin := journey.Station{EVA: route.Origin.EVA, Name: route.Origin.Name}
	destination := journey.Station{EVA: route.Destination.EVA, Name: route.Destination.Name}
	if departing {
		return origin, destination
	}
	return destination, origin
}

// startInstant builds the absolute search start from a civil date and hour.
func startInstant(date string, hour int) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, dbtime.Location)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(hour) * time.Hour), nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
