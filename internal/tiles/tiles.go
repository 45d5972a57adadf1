package tiles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/geocell"
	"github.com/forest-guardian/hopper-dataset/internal/label"
	"github.com/gocarina/gocsv"
)

const (
	dayLayout   = "2006-01-02"
	sceneLayout = "20060102T150405"
)

// Name is a parsed tile file name.
type Name struct {
	Cell    string
	Date    time.Time
	RawDate string
	Band    string
}

// FileID is the identifier shared by every band file of a tile capture.
func FileID(cell string, date time.Time) string {
	return fmt.Sprintf("%s_%sT000000", cell, date.Format("20060102"))
}

// ID returns the tile identifier of the parsed name.
func (n Name) ID() string {
	return FileID(n.Cell, n.Date)
}

// ErrUnrecognized is returned by ParseName for names outside the tile scheme.
var ErrUnrecognized = errors.New("not a tile file name")

// ParseName parses {cell}_{date}[_{band}].ext where date is YYYY-MM-DD or
// YYYYMMDDTHHMMSS. Names whose cell is not a precision 5 geohash are
// unrecognized, so only the date of a real tile name can fail to parse.
func ParseName(name string) (Name, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) != 2 && len(parts) != 3 {
		return Name{}, fmt.Errorf("%s: %w", name, ErrUnrecognized)
	}

	parsed := Name{Cell: parts[0], RawDate: parts[1]}
	if len(parts) == 3 {
		parsed.Band = parts[2]
	}
	if parsed.Cell == "" {
		return Name{}, &label.ValidationError{Kind: "tile " + name, Field: "cell"}
	}
	if err := geocell.Validate(parsed.Cell, geocell.Precision); err != nil {
		return Name{}, fmt.Errorf("%s: %w: %v", name, ErrUnrecognized, err)
	}

	for _, layout := range []string{dayLayout, sceneLayout} {
		if t, err := time.Parse(layout, parsed.RawDate); err == nil {
			parsed.Date = label.Day(t)
			return parsed, nil
		}
	}
	return Name{}, &label.ParseError{Field: "tile date", Value: parsed.RawDate, Err: fmt.Errorf("in file name %s", name)}
}

func isParseError(err error) bool {
	var parseErr *label.ParseError
	return errors.As(err, &parseErr)
}

// Listing is the set of tiles found in a directory.
type Listing struct {
	Tiles []label.Tile
	Names map[string][]string
	// Skipped names did not follow the tile scheme.
	Skipped []string
}

func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// List reads dir and returns one tile per (cell, date), sorted by date then cell.
// A recognizable name with a malformed date aborts the listing.
func List(dir string) (Listing, error) {
	names, err := regularFiles(dir)
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{Names: make(map[string][]string)}
	seen := make(map[string]label.Tile)
	for _, name := range names {
		parsed, err := ParseName(name)
		if err != nil {
			if isParseError(err) {
				return Listing{}, err
			}
			listing.Skipped = append(listing.Skipped, name)
			continue
		}
		id := parsed.ID()
		listing.Names[id] = append(listing.Names[id], name)
		if _, ok := seen[id]; !ok {
			seen[id] = label.Tile{Cell: parsed.Cell, AcquisitionDate: parsed.Date}
		}
	}

	for _, tile := range seen {
		listing.Tiles = append(listing.Tiles, tile)
	}
	SortTiles(listing.Tiles)
	return listing, nil
}

// SortTiles orders tiles by acquisition date, then cell.
func SortTiles(tiles []label.Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if !tiles[i].AcquisitionDate.Equal(tiles[j].AcquisitionDate) {
			return tiles[i].AcquisitionDate.Before(tiles[j].AcquisitionDate)
		}
		return tiles[i].Cell < tiles[j].Cell
	})
}

type MetadataRow struct {
	Geohash string `csv:"geohash"`
	Date    string `csv:"date"`
	ID      string `csv:"id"`
}

// WriteMetadata writes one metadata.csv row per recognizable file in dir.
func WriteMetadata(dir, outputPath string) ([]MetadataRow, error) {
	names, err := regularFiles(dir)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	rows := []MetadataRow{}
	for _, name := range names {
		parsed, err := ParseName(name)
		if err != nil {
			if isParseError(err) {
				return nil, err
			}
			continue
		}
		rows = append(rows, MetadataRow{Geohash: parsed.Cell, Date: parsed.RawDate, ID: name})
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create metadata folder: %w", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}
	return rows, nil
}
