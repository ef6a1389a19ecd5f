package dbapi

import (
	"encoding/xml"
	"regexp"
	"strings"
	"time"

	"github.com/denizpo/smart-train-finder/dbtime"
)

// runIDPattern extracts the numeric run id embedded in the provider's
// delimited stop id token, e.g. "-7878473121268957521-2506071831-1".
var runIDPattern = regexp.MustCompile(`-?(\d+)-`)

// Timetable is one plan document: the stop events scheduled at one station
// within one civil hour. The provider guarantees planned data never changes
// retroactively.
type Timetable struct {
	XMLName xml.Name    `xml:"timetable"`
	Station string      `xml:"station,attr"`
	Stops   []StopEvent `xml:"s"`
}

// StopEvent is a single train's scheduled presence at the station.
type StopEvent struct {
	ID        string    `xml:"id,attr"`
	Label     TripLabel `xml:"tl"`
	Arrival   *StopTime `xml:"ar"`
	Departure *StopTime `xml:"dp"`
}

// TripLabel carries the train's category and numbering.
type TripLabel struct {
	Category string `xml:"c,attr"`
	Number   string `xml:"n,attr"`
	Owner    string `xml:"o,attr"`
	Flags    string `xml:"f,attr"`
}

// StopTime is one half of a stop event: either the arrival or the departure
// record, with its planned time and routing path.
type StopTime struct {
	Planned string `xml:"pt,attr"`
	Path    string `xml:"ppth,attr"`
	Line    string `xml:"l,attr"`
}

// RunID returns the numeric run identifier for the event, falling back to
// the raw id when the token does not match the expected shape.
func (s *StopEvent) RunID() string {
	if m := runIDPattern.FindStringSubmatch(s.ID); m != nil {
		return m[1]
	}
	return s.ID
}

// Time resolves the planned instant. False when the record is absent or its
// encoding is malformed.
func (h *StopTime) Time() (time.Time, bool) {
	if h == nil {
		return time.Time{}, false
	}
	return dbtime.ParseCompact(h.Planned)
}

// StationPath splits the ppth attribute into the ordered station names the
// train serves on this side of the stop.
func (h *StopTime) StationPath() []string {
	if h == nil || h.Path == "" {
		return nil
	}
	parts := strings.Split(h.Path, "|")
	names := parts[:0]
	for _, p := range parts {
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Contains reports whether any stop event in the document belongs to the
// given run id.
func (t *Timetable) Contains(runID string) bool {
	return t.Find(runID) != nil
}

// Find returns the stop event for the given run id, or nil.
func (t *Timetable) Find(runID string) *StopEvent {
	if t == nil {
		return nil
	}
	for i := range t.Stops {
		if t.Stops[i].RunID() == runID {
			return &t.Stops[i]
		}
	}
	return nil
}

// StationList is the station lookup endpoint's response.
type StationList struct {
	XMLName  xml.Name       `xml:"stations"`
	Stations []StationEntry `xml:"station"`
}

// StationEntry is one candidate station with its EVA identifier.
type StationEntry struct {
	Name string `xml:"name,attr"`
	EVA  string `xml:"eva,attr"`
}
