package features

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/geocell"
	"github.com/forest-guardian/hopper-dataset/internal/label"
	"github.com/forest-guardian/hopper-dataset/internal/tiles"
	"github.com/gocarina/gocsv"
)

const FileName = "features.csv"

// Row is one line of features.csv.
type Row struct {
	Date    string  `csv:"date"`
	Geohash string  `csv:"geohash"`
	Lat     float64 `csv:"lat"`
	Lon     float64 `csv:"lon"`
	Hoppers int     `csv:"hoppers"`
}

func FromTiles(labeled []label.Tile) []Row {
	sorted := make([]label.Tile, len(labeled))
	copy(sorted, labeled)
	tiles.SortTiles(sorted)

	rows := make([]Row, 0, len(sorted))
	for _, tile := range sorted {
		lat, lon := geocell.Center(tile.Cell)
		rows = append(rows, Row{
			Date:    tile.AcquisitionDate.Format("2006-01-02"),
			Geohash: tile.Cell,
			Lat:     lat,
			Lon:     lon,
			Hoppers: tile.Label,
		})
	}
	return rows
}

// Write stores the labeled tiles at path, creating parent folders.
func Write(path string, labeled []label.Tile) error {
	rows := FromTiles(labeled)

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create features folder: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create features file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write features: %w", err)
	}
	return nil
}

// Read loads features.csv and checks every date.
func Read(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open features file: %w", err)
	}
	defer file.Close()

	var rows []Row
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to read features %s: %w", path, err)
	}
	for i, row := range rows {
		if row.Geohash == "" {
			return nil, &label.ValidationError{Kind: "feature", Row: i + 2, Field: "geohash"}
		}
		if _, err := row.Time(i + 2); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (r Row) Time(row int) (time.Time, error) {
	t, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, &label.ParseError{Field: "date", Value: r.Date, Row: row, Err: err}
	}
	return t, nil
}

// PositiveIDs returns the tile file ids of rows labeled 1.
func PositiveIDs(rows []Row) map[string]struct{} {
	ids := make(map[string]struct{})
	for i, row := range rows {
		if row.Hoppers != 1 {
			continue
		}
		date, err := row.Time(i + 2)
		if err != nil {
			continue
		}
		ids[tiles.FileID(row.Geohash, date)] = struct{}{}
	}
	return ids
}
