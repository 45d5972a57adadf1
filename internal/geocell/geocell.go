package geocell

import (
	"fmt"
	"sort"

	"github.com/mmcloughlin/geohash"
)

// Precision is the geohash length used for sightings and tiles (~5km cells).
const Precision = 5

func Encode(latitude, longitude float64) string {
	return geohash.EncodeWithPrecision(latitude, longitude, Precision)
}

// Center returns the latitude and longitude of the cell center.
func Center(cell string) (float64, float64) {
	return geohash.DecodeCenter(cell)
}

func Bounds(cell string) geohash.Box {
	return geohash.BoundingBox(cell)
}

// Validate checks that cell is a well formed geohash of the given precision.
func Validate(cell string, precision int) error {
	if len(cell) != precision {
		return fmt.Errorf("geohash %q has precision %d, expected %d", cell, len(cell), precision)
	}
	return geohash.Validate(cell)
}

// Neighbors returns the 8 cells adjacent to cell at the same precision.
func Neighbors(cell string) []string {
	return geohash.Neighbors(cell)
}

// Expand grows cells by n rings of neighbors and returns the set sorted.
// With n == 0 the input cells are returned untouched.
func Expand(cells []string, n int) []string {
	set := make(map[string]struct{}, len(cells))
	for _, cell := range cells {
		set[cell] = struct{}{}
	}
	for i := 0; i < n; i++ {
		ring := make([]string, 0, len(set))
		for cell := range set {
			ring = append(ring, cell)
		}
		for _, cell := range ring {
			for _, neighbor := range Neighbors(cell) {
				set[neighbor] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(set))
	for cell := range set {
		out = append(out, cell)
	}
	sort.Strings(out)
	return out
}
