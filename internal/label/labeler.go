package label

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/geocell"
	"golang.org/x/sync/errgroup"
)

// cellIndex maps a cell to positions of the labeled copy, ordered by acquisition date.
type cellIndex map[string][]int

func buildIndex(tiles []Tile) cellIndex {
	index := make(cellIndex)
	for i, tile := range tiles {
		index[tile.Cell] = append(index[tile.Cell], i)
	}
	for _, positions := range index {
		sort.SliceStable(positions, func(a, b int) bool {
			return tiles[positions[a]].AcquisitionDate.Before(tiles[positions[b]].AcquisitionDate)
		})
	}
	return index
}

func validate(tiles []Tile, sightings []Sighting, neighborExpansions int) error {
	if neighborExpansions < 0 {
		return fmt.Errorf("neighbor expansions must be non-negative, got %d", neighborExpansions)
	}
	for i, tile := range tiles {
		if tile.Cell == "" {
			return &ValidationError{Kind: "tile", Row: i, Field: "cell"}
		}
		if tile.AcquisitionDate.IsZero() {
			return &ValidationError{Kind: "tile", Row: i, Field: "date"}
		}
	}
	for i, sighting := range sightings {
		if sighting.Cell == "" {
			return &ValidationError{Kind: "sighting", Row: i, Field: "cell"}
		}
		if sighting.ObservedDate.IsZero() {
			return &ValidationError{Kind: "sighting", Row: i, Field: "date"}
		}
	}
	return nil
}

// CandidateCells returns the sighting cell grown by neighborExpansions rings.
func CandidateCells(cell string, neighborExpansions int) []string {
	return geocell.Expand([]string{cell}, neighborExpansions)
}

// markSighting sets mask[i] for every indexed tile inside the sighting's window.
func markSighting(tiles []Tile, index cellIndex, sighting Sighting, neighborExpansions int, mask []bool) {
	start, end := Window(sighting)
	for _, cell := range CandidateCells(sighting.Cell, neighborExpansions) {
		positions, ok := index[cell]
		if !ok {
			continue
		}
		first := sort.Search(len(positions), func(i int) bool {
			return !tiles[positions[i]].AcquisitionDate.Before(start)
		})
		for _, pos := range positions[first:] {
			if !tiles[pos].AcquisitionDate.Before(end) {
				break
			}
			mask[pos] = true
		}
	}
}

func prepare(tiles []Tile) []Tile {
	out := make([]Tile, len(tiles))
	for i, tile := range tiles {
		tile.AcquisitionDate = Day(tile.AcquisitionDate)
		tile.Label = 0
		out[i] = tile
	}
	return out
}

func apply(out []Tile, mask []bool) []Tile {
	for i, hit := range mask {
		if hit {
			out[i].Label = 1
		}
	}
	return out
}

// Label returns a copy of tiles where Label is 1 iff some sighting within
// neighborExpansions geohash rings of the tile's cell was observed on the
// acquisition date or less than WindowDays days before it. The input slice is
// not modified.
func Label(tiles []Tile, sightings []Sighting, neighborExpansions int) ([]Tile, error) {
	if err := validate(tiles, sightings, neighborExpansions); err != nil {
		return nil, err
	}

	out := prepare(tiles)
	index := buildIndex(out)
	mask := make([]bool, len(out))
	for _, sighting := range sightings {
		markSighting(out, index, sighting, neighborExpansions, mask)
	}
	return apply(out, mask), nil
}

// LabelParallel is Label with the sightings split across workers. Each worker
// fills a private mask and the masks are OR-merged once all workers finish.
func LabelParallel(ctx context.Context, tiles []Tile, sightings []Sighting, neighborExpansions, workers int) ([]Tile, error) {
	if err := validate(tiles, sightings, neighborExpansions); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(sightings) && len(sightings) > 0 {
		workers = len(sightings)
	}

	out := prepare(tiles)
	index := buildIndex(out)
	masks := make([][]bool, workers)

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(sightings) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(sightings))
		mask := make([]bool, len(out))
		masks[w] = mask
		if lo >= hi {
			continue
		}
		part := sightings[lo:hi]
		g.Go(func() error {
			for _, sighting := range part {
				if err := ctx.Err(); err != nil {
					return err
				}
				markSighting(out, index, sighting, neighborExpansions, mask)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]bool, len(out))
	for _, mask := range masks {
		for i, hit := range mask {
			merged[i] = merged[i] || hit
		}
	}
	return apply(out, merged), nil
}

// Positives counts tiles labeled 1.
func Positives(tiles []Tile) int {
	n := 0
	for _, tile := range tiles {
		n += tile.Label
	}
	return n
}

// Window returns the half-open acquisition window a sighting covers.
func Window(sighting Sighting) (time.Time, time.Time) {
	start := Day(sighting.ObservedDate)
	return start, start.AddDate(0, 0, WindowDays)
}
