package delivery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/forest-guardian/hopper-dataset/internal/config"
	"github.com/forest-guardian/hopper-dataset/internal/features"
	"github.com/forest-guardian/hopper-dataset/internal/geocell"
	"github.com/forest-guardian/hopper-dataset/internal/properties"
	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const regionJSON = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},
"geometry":{"type":"Polygon","coordinates":[[[38.5,8.5],[39,8.5],[39,9],[38.5,9],[38.5,8.5]]]}}]}`

const sightingsCSV = `OBJECTID,X,Y,STARTDATE
1,38.75,8.75,2020/03/01 10:15:00+00
2,,8.75,2020/03/03 00:00:00+00
3,45.10,2.05,2020/03/02 00:00:00+00
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), os.ModePerm))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeArchive(t *testing.T, path string, bands ...string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := zip.NewWriter(file)
	for _, band := range bands {
		f, err := w.Create("download." + band + ".tif")
		require.NoError(t, err)
		_, err = f.Write([]byte(band))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

type fixture struct {
	settings *config.Settings
	hot      string
	cold     string
}

func setup(t *testing.T, workers int) fixture {
	t.Helper()
	root := t.TempDir()
	s := &config.Settings{
		Quiet: true,
		Paths: config.PathSettings{
			SightingsCSV:  filepath.Join(root, "locusthub", "hoppers.csv"),
			RegionGeoJSON: filepath.Join(root, "geojsons", "region.geojson"),
			DownloadDir:   filepath.Join(root, "downloads"),
			TilesDir:      filepath.Join(root, "tiles"),
			FeaturesCSV:   filepath.Join(root, "features", "features.csv"),
			MetadataCSV:   filepath.Join(root, "features", "metadata.csv"),
			OutputDir:     filepath.Join(root, "dataset"),
			CacheDir:      filepath.Join(root, "cache"),
		},
		Label: config.LabelSettings{
			Since:       "2016-01-01",
			Workers:     workers,
			Preview:     filepath.Join(root, "preview", "labels.png"),
			PreviewSize: 128,
		},
		Dataset: config.DatasetSettings{NegativeSample: 1, Seed: 5, Workers: 2},
	}
	writeFile(t, s.Paths.SightingsCSV, sightingsCSV)
	writeFile(t, s.Paths.RegionGeoJSON, regionJSON)
	require.NoError(t, os.MkdirAll(s.Paths.DownloadDir, os.ModePerm))

	f := fixture{
		settings: s,
		hot:      geocell.Encode(8.75, 38.75),
		cold:     geocell.Encode(8.55, 38.55),
	}
	writeArchive(t, filepath.Join(s.Paths.DownloadDir, f.hot+"_2020-03-15.zip"), "B02", "B04")
	writeArchive(t, filepath.Join(s.Paths.DownloadDir, f.hot+"_2020-05-01.zip"), "B02", "B04")
	writeArchive(t, filepath.Join(s.Paths.DownloadDir, f.cold+"_2020-03-15.zip"), "B02", "B04")
	return f
}

func TestPipeline(t *testing.T) {
	t.Parallel()

	f := setup(t, 1)
	s := f.settings
	log, hook := test.NewNullLogger()

	report, err := GenerateMetadata(context.Background(), s, log)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sightings)
	assert.Equal(t, 1, report.Filtered, "sighting outside the region")
	assert.Equal(t, 3, report.Tiles)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 1, report.Positives)
	assert.Len(t, report.Warnings, 1, "row without coordinates")
	assert.FileExists(t, s.Label.Preview)
	var listed bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "tiles listed" {
			listed = true
			assert.Equal(t, "2020-03-15", entry.Data["first"])
			assert.Equal(t, "2020-05-01", entry.Data["last"])
		}
	}
	assert.True(t, listed)

	rows, err := features.Read(s.Paths.FeaturesCSV)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		want := 0
		if row.Geohash == f.hot && row.Date == "2020-03-15" {
			want = 1
		}
		assert.Equal(t, want, row.Hoppers, "%s %s", row.Geohash, row.Date)
	}

	n, err := GenerateTileMetadata(s, log)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.FileExists(t, s.Paths.MetadataCSV)

	unzipped, err := UnzipDownloaded(s, log)
	require.NoError(t, err)
	assert.Equal(t, 3, unzipped.Archives)
	assert.Equal(t, 6, unzipped.Bands)

	summary, err := GenerateDataset(s, log)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PositiveTiles)
	assert.Equal(t, 2, summary.NegativeTiles)
	assert.Equal(t, 6, summary.Files)
	assert.FileExists(t, filepath.Join(s.Paths.OutputDir, properties.PositiveDir, f.hot+"_20200315T000000_B04.tif"))
	assert.FileExists(t, filepath.Join(s.Paths.OutputDir, properties.NegativeDir, f.cold+"_20200315T000000_B02.tif"))
}

func TestGenerateMetadataParallel(t *testing.T) {
	t.Parallel()

	f := setup(t, 4)
	log, _ := test.NewNullLogger()

	report, err := GenerateMetadata(context.Background(), f.settings, log)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Positives)

	// The second run reads the region cells from the cache.
	_, err = GenerateMetadata(context.Background(), f.settings, log)
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(f.settings.Paths.CacheDir, "regions"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestGenerateMetadataWithoutRegion(t *testing.T) {
	t.Parallel()

	f := setup(t, 1)
	f.settings.Paths.RegionGeoJSON = ""
	log, hook := test.NewNullLogger()

	report, err := GenerateMetadata(context.Background(), f.settings, log)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sightings)
	assert.Equal(t, 0, report.Filtered)
	assert.Contains(t, hook.AllEntries()[0].Message, "no region")
}

func TestGenerateMetadataBadDate(t *testing.T) {
	t.Parallel()

	f := setup(t, 1)
	writeFile(t, f.settings.Paths.SightingsCSV, "X,Y,STARTDATE\n38.75,8.75,yesterday\n")
	log, _ := test.NewNullLogger()

	_, err := GenerateMetadata(context.Background(), f.settings, log)
	assert.ErrorContains(t, err, "error loading sightings")
}
