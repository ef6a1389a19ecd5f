package journey

import (
	"strings"
	"time"
)

// Station is a resolved station: provider EVA id plus display name.
type Station struct {
	EVA  string
	Name string
}

// Leg is one continuous ride on a single train between two adjacent stations.
// Arrival stays zero until the destination timetable resolves it.
type Leg struct {
	From      Station
	To        Station
	TrainID   string
	TrainType string
	Departure time.Time
	Arrival   time.Time
}

// Itinerary is a completed journey: contiguous legs, the number of train
// changes, and the overall start and arrival instants. Arrival may be zero
// when the final timetable did not expose it.
type Itinerary struct {
	Legs      []Leg
	Transfers int
	Start     time.Time
	Arrival   time.Time
}

// TrainTypes joins the distinct train category labels across the legs with
// "+", in order of first appearance.
func (it Itinerary) TrainTypes() string {
	var labels []string
	seen := map[string]bool{}
	for _, leg := range it.Legs {
		if leg.TrainType == "" || seen[leg.TrainType] {
			continue
		}
		seen[leg.TrainType] = true
		labels = append(labels, leg.TrainType)
	}
	return strings.Join(labels, "+")
}

// node is a partial path under exploration.
type node struct {
	station   Station
	train     string // current run id, empty at the origin
	transfers int
	arrival   time.Time // at station, zero at the origin
	start     time.Time // journey start, zero until first departure
	path      []Leg
}

// visitedNames collects every station name already on the path, for cycle
// prevention.
func (n *node) visitedNames() map[string]bool {
	names := make(map[string]bool, 2*len(n.path)+1)
	for _, leg := range n.path {
		if leg.From.Name != "" {
			names[leg.From.Name] = true
		}
		if leg.To.Name != "" {
			names[leg.To.Name] = true
		}
	}
	if n.station.Name != "" {
		names[n.station.Name] = true
	}
	return names
}

// minutesBetween returns the minutes from start to end, wrapping past
// midnight when the difference comes out negative.
func minutesBetween(start, end time.Time) float64 {
	diff := end.Sub(start).Minutes()
	if diff < 0 {
		diff += 24 * 60
	}
	return diff
}
