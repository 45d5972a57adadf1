package features

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/geocell"
	"github.com/forest-guardian/hopper-dataset/internal/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", FileName)
	labeled := []label.Tile{
		{Cell: "sc3yf", AcquisitionDate: time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), Label: 0},
		{Cell: "sc3ye", AcquisitionDate: time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), Label: 1},
		{Cell: "sc3ye", AcquisitionDate: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), Label: 0},
	}
	require.NoError(t, Write(path, labeled))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "date,geohash,lat,lon,hoppers\n"))

	rows, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2020-03-01", rows[0].Date)
	assert.Equal(t, "sc3ye", rows[1].Geohash)
	assert.Equal(t, 1, rows[1].Hoppers)
	assert.Equal(t, "sc3yf", rows[2].Geohash)

	lat, lon := geocell.Center("sc3ye")
	assert.InDelta(t, lat, rows[0].Lat, 1e-9)
	assert.InDelta(t, lon, rows[0].Lon, 1e-9)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	badDate := filepath.Join(dir, "bad_date.csv")
	require.NoError(t, os.WriteFile(badDate, []byte("date,geohash,lat,lon,hoppers\n03/15/2020,sc3ye,0,0,1\n"), 0644))
	_, err := Read(badDate)
	var parseErr *label.ParseError
	assert.ErrorAs(t, err, &parseErr)

	noCell := filepath.Join(dir, "no_cell.csv")
	require.NoError(t, os.WriteFile(noCell, []byte("date,geohash,lat,lon,hoppers\n2020-03-15,,0,0,1\n"), 0644))
	_, err = Read(noCell)
	var validationErr *label.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestPositiveIDs(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{Date: "2020-03-15", Geohash: "sc3ye", Hoppers: 1},
		{Date: "2020-03-15", Geohash: "sc3yf", Hoppers: 0},
		{Date: "2020-04-02", Geohash: "sc3yf", Hoppers: 1},
	}
	assert.Equal(t, map[string]struct{}{
		"sc3ye_20200315T000000": {},
		"sc3yf_20200402T000000": {},
	}, PositiveIDs(rows))
}
