package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/forest-guardian/hopper-dataset/internal/geocell"
	"github.com/forest-guardian/hopper-dataset/internal/label"
	"github.com/forest-guardian/hopper-dataset/internal/properties"
	"github.com/forest-guardian/hopper-dataset/internal/utils"
)

// CreateLabelMap draws every tile cell as its bounding box, colored by whether
// any tile of the cell is positive, and saves the map as PNG at outputPath.
func CreateLabelMap(labeled []label.Tile, outputPath string, size int) error {
	if len(labeled) == 0 {
		return fmt.Errorf("no tiles provided")
	}
	if size <= 0 {
		size = 1024
	}

	cellLabels := make(map[string]int)
	for _, tile := range labeled {
		cellLabels[tile.Cell] = max(cellLabels[tile.Cell], tile.Label)
	}

	first := geocell.Bounds(labeled[0].Cell)
	minLat, maxLat, minLon, maxLon := first.MinLat, first.MaxLat, first.MinLng, first.MaxLng
	for cell := range cellLabels {
		box := geocell.Bounds(cell)
		minLat = min(minLat, box.MinLat)
		maxLat = max(maxLat, box.MaxLat)
		minLon = min(minLon, box.MinLng)
		maxLon = max(maxLon, box.MaxLng)
	}

	scale := float64(size) / max(maxLat-minLat, maxLon-minLon)
	width := int((maxLon-minLon)*scale) + 1
	height := int((maxLat-minLat)*scale) + 1

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, cell := range utils.SortedKeys(cellLabels) {
		box := geocell.Bounds(cell)
		c := properties.ColorMap[cellLabels[cell]]
		x := (box.MinLng - minLon) * scale
		y := (maxLat - box.MaxLat) * scale
		dc.DrawRectangle(x, y, (box.MaxLng-box.MinLng)*scale, (box.MaxLat-box.MinLat)*scale)
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.FillPreserve()
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(1)
		dc.Stroke()
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create preview folder: %w", err)
	}
	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	return nil
}
