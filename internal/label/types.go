package label

import (
	"time"
)

// WindowDays is the length of the trailing window after a sighting in which a
// tile acquisition counts as a positive.
const WindowDays = 30

type Sighting struct {
	Cell         string
	Latitude     float64
	Longitude    float64
	ObservedDate time.Time
}

type Tile struct {
	Cell            string
	AcquisitionDate time.Time
	Label           int
}

// Key identifies a tile capture.
func (t Tile) Key() string {
	return t.Cell + "_" + t.AcquisitionDate.Format("2006-01-02")
}

// Day truncates t to its calendar date at 00:00 UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
