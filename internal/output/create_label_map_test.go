package output

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLabelMap(t *testing.T) {
	t.Parallel()

	date := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	labeled := []label.Tile{
		{Cell: "sc3ye", AcquisitionDate: date, Label: 1},
		{Cell: "sc3ye", AcquisitionDate: date.AddDate(0, 0, 40)},
		{Cell: "sc3yf", AcquisitionDate: date},
		{Cell: "sc3yg", AcquisitionDate: date},
	}
	path := filepath.Join(t.TempDir(), "preview", "labels.png")

	require.NoError(t, CreateLabelMap(labeled, path, 256))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.LessOrEqual(t, max(bounds.Dx(), bounds.Dy()), 257)
	assert.Positive(t, min(bounds.Dx(), bounds.Dy()))
}

func TestCreateLabelMapEmpty(t *testing.T) {
	t.Parallel()

	err := CreateLabelMap(nil, filepath.Join(t.TempDir(), "labels.png"), 256)
	assert.Error(t, err)
}
