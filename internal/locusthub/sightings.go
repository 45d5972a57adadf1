package locusthub

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/geocell"
	"github.com/forest-guardian/hopper-dataset/internal/label"
	"github.com/gocarina/gocsv"
)

// DefaultSince is the earliest observation date kept from the extract.
var DefaultSince = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

// SightingRow is the subset of a LocustHub hopper extract row the labeler uses.
type SightingRow struct {
	X         string `csv:"X"`
	Y         string `csv:"Y"`
	StartDate string `csv:"STARTDATE"`
}

type Options struct {
	Since time.Time
	// Region restricts sightings to these cells. Nil keeps every cell.
	Region []string
}

type Result struct {
	Sightings []label.Sighting
	// Skipped holds rows dropped for a missing identity field.
	Skipped []error
	// Filtered counts rows outside the date threshold or the region.
	Filtered int
}

func parseCoordinate(field, value string, row int, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, &label.ParseError{Field: field, Value: value, Row: row, Err: err}
	}
	if v < -limit || v > limit {
		return 0, &label.ParseError{Field: field, Value: value, Row: row, Err: fmt.Errorf("out of range [-%g, %g]", limit, limit)}
	}
	return v, nil
}

// Load reads the extract at path. Any malformed value aborts the load.
func Load(path string, opts Options) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open sightings extract: %w", err)
	}
	defer file.Close()

	var rows []*SightingRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return Result{}, fmt.Errorf("failed to read sightings extract %s: %w", path, err)
	}
	return FromRows(rows, opts)
}

// FromRows converts raw rows. Row numbers in errors count the CSV header as row 1.
func FromRows(rows []*SightingRow, opts Options) (Result, error) {
	since := opts.Since
	if since.IsZero() {
		since = DefaultSince
	}
	var region map[string]struct{}
	if opts.Region != nil {
		region = make(map[string]struct{}, len(opts.Region))
		for _, cell := range opts.Region {
			region[cell] = struct{}{}
		}
	}

	var result Result
	for i, row := range rows {
		n := i + 2
		if strings.TrimSpace(row.X) == "" || strings.TrimSpace(row.Y) == "" {
			result.Skipped = append(result.Skipped, &label.ValidationError{Kind: "sighting", Row: n, Field: "coordinates"})
			continue
		}
		if strings.TrimSpace(row.StartDate) == "" {
			result.Skipped = append(result.Skipped, &label.ValidationError{Kind: "sighting", Row: n, Field: "STARTDATE"})
			continue
		}

		lon, err := parseCoordinate("X", row.X, n, 180)
		if err != nil {
			return Result{}, err
		}
		lat, err := parseCoordinate("Y", row.Y, n, 90)
		if err != nil {
			return Result{}, err
		}
		date, err := label.ParseDate("STARTDATE", row.StartDate, n)
		if err != nil {
			return Result{}, err
		}

		cell := geocell.Encode(lat, lon)
		if date.Before(since) {
			result.Filtered++
			continue
		}
		if region != nil {
			if _, ok := region[cell]; !ok {
				result.Filtered++
				continue
			}
		}

		result.Sightings = append(result.Sightings, label.Sighting{
			Cell:         cell,
			Latitude:     lat,
			Longitude:    lon,
			ObservedDate: date,
		})
	}
	return result, nil
}
