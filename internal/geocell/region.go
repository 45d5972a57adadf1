package geocell

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/forest-guardian/hopper-dataset/internal/cache"
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// LoadRegion reads the geometry of the first feature in a GeoJSON FeatureCollection.
func LoadRegion(path string) (orb.Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read region geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse region geojson %s: %w", path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("region geojson %s has no features", path)
	}

	if fc.Features[0].Geometry == nil {
		return nil, fmt.Errorf("region geojson %s: feature has no geometry", path)
	}

	switch g := fc.Features[0].Geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return g, nil
	default:
		return nil, fmt.Errorf("region geojson %s: unsupported geometry %s", path, g.GeoJSONType())
	}
}

func contains(region orb.Geometry, p orb.Point) bool {
	switch g := region.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	}
	return false
}

// CellsInside returns, sorted, every cell of the given precision whose corners
// and center all lie inside region.
func CellsInside(region orb.Geometry, precision int) []string {
	bound := region.Bound()
	first := geohash.BoundingBox(geohash.EncodeWithPrecision(bound.Min.Lat(), bound.Min.Lon(), uint(precision)))
	height := first.MaxLat - first.MinLat
	width := first.MaxLng - first.MinLng

	set := make(map[string]struct{})
	for lat := first.MinLat + height/2; lat < bound.Max.Lat(); lat += height {
		for lon := first.MinLng + width/2; lon < bound.Max.Lon(); lon += width {
			cell := geohash.EncodeWithPrecision(lat, lon, uint(precision))
			box := geohash.BoundingBox(cell)
			points := []orb.Point{
				{box.MinLng, box.MinLat},
				{box.MinLng, box.MaxLat},
				{box.MaxLng, box.MinLat},
				{box.MaxLng, box.MaxLat},
				{lon, lat},
			}
			inside := true
			for _, p := range points {
				if !contains(region, p) {
					inside = false
					break
				}
			}
			if inside {
				set[cell] = struct{}{}
			}
		}
	}

	cells := make([]string, 0, len(set))
	for cell := range set {
		cells = append(cells, cell)
	}
	sort.Strings(cells)
	return cells
}

// RegionCells loads the region at path and returns the cells inside it.
func RegionCells(path string, precision int) ([]string, error) {
	region, err := LoadRegion(path)
	if err != nil {
		return nil, err
	}
	return CellsInside(region, precision), nil
}

// CachedRegionCells is RegionCells memoized in c. Entries are keyed by the
// file's size, modification time and the precision. Rewriting the file evicts
// the cell sets computed from its earlier contents.
func CachedRegionCells(c cache.Store[[]string], path string, precision int) ([]string, bool, error) {
	source, err := filepath.Abs(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve region geojson: %w", err)
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, false, fmt.Errorf("failed to stat region geojson: %w", err)
	}
	key := cache.Key(source, info.Size(), info.ModTime().UnixNano(), precision)
	if cells, ok := c.Get(key); ok {
		return cells, true, nil
	}

	cells, err := RegionCells(source, precision)
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(key, source, cells); err != nil {
		return cells, false, err
	}
	if _, err := c.Evict(source, key); err != nil {
		return cells, false, err
	}
	return cells, false, nil
}
