package trainfinder

import (
	"time"

	"github.com/denizpo/smart-train-finder/journey"
)

type tripsResponse struct {
	Journeys []journeyJSON `json:"journeys"`
}

type journeyJSON struct {
	DepartureDateTime *string       `json:"departure_date_time"`
	ArrivalDateTime   *string       `json:"arrival_date_time"`
	Changes           int           `json:"changes"`
	Train             string        `json:"train"`
	Sections          []sectionJSON `json:"sections"`
}

type sectionJSON struct {
	TrainID   string      `json:"train_id"`
	TrainType string      `json:"train_type"`
	From      stationJSON `json:"from"`
	To        stationJSON `json:"to"`
	Departure string      `json:"departure"`
	Arrival   *string     `json:"arrival"`
}

type stationJSON struct {
	EVA  string `json:"eva"`
	Name string `json:"name"`
}

func journeysJSON(items []journey.Itinerary) []journeyJSON {
	out := make([]journeyJSON, 0, len(items))
	for _, it := range items {
		j := journeyJSON{
			DepartureDateTime: isoOrNil(it.Start),
			ArrivalDateTime:   isoOrNil(it.Arrival),
			Changes:           it.Transfers,
			Train:             it.TrainTypes(),
			Sections:          make([]sectionJSON, 0, len(it.Legs)),
		}
		for _, leg := range it.Legs {
			j.Sections = append(j.Sections, sectionJSON{
				TrainID:   leg.TrainID,
				TrainType: leg.TrainType,
				From:      stationJSON{EVA: leg.From.EVA, Name: leg.From.Name},
				To:        stationJSON{EVA: leg.To.EVA, Name: leg.To.Name},
				Departure: leg.Departure.UTC().Format(time.RFC3339),
				Arrival:   isoOrNil(leg.Arrival),
			})
		}
		out = append(out, j)
	}
	return out
}

func isoOrNil(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
