package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := zip.NewWriter(file)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestParseArchiveName(t *testing.T) {
	t.Parallel()

	id, date, err := ParseArchiveName("/downloads/sc3ye_2020-03-15.zip")
	require.NoError(t, err)
	assert.Equal(t, "sc3ye", id)
	assert.True(t, time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC).Equal(date))

	_, _, err = ParseArchiveName("sc3ye.zip")
	assert.Error(t, err)
	_, _, err = ParseArchiveName("sc3ye_15-03-2020.zip")
	assert.Error(t, err)
}

func TestBandName(t *testing.T) {
	t.Parallel()

	band, err := BandName("download.B04.tif")
	require.NoError(t, err)
	assert.Equal(t, "B04", band)

	_, err = BandName("nested/download.tif")
	assert.Error(t, err)
}

func TestUnzipAll(t *testing.T) {
	t.Parallel()

	downloads := t.TempDir()
	output := filepath.Join(t.TempDir(), "tiles")
	writeZip(t, filepath.Join(downloads, "sc3ye_2020-03-15.zip"), map[string]string{
		"download.B02.tif": "blue",
		"download.B04.tif": "red",
	})
	writeZip(t, filepath.Join(downloads, "sc3yf_2020-04-01.zip"), map[string]string{
		"scene/download.B08.tif": "nir",
	})
	require.NoError(t, os.WriteFile(filepath.Join(downloads, "notes.txt"), []byte("x"), 0644))

	summary, err := UnzipAll(downloads, output, true)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Archives)
	assert.Equal(t, 3, summary.Bands)
	assert.Equal(t, []string{"notes.txt"}, summary.Skipped)

	red, err := os.ReadFile(filepath.Join(output, "sc3ye_20200315T000000_B04.tif"))
	require.NoError(t, err)
	assert.Equal(t, "red", string(red))
	assert.FileExists(t, filepath.Join(output, "sc3ye_20200315T000000_B02.tif"))
	assert.FileExists(t, filepath.Join(output, "sc3yf_20200401T000000_B08.tif"))

	entries, err := os.ReadDir(output)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files are left behind")
}

func TestUnzipRejectsUnexpectedEntries(t *testing.T) {
	t.Parallel()

	downloads := t.TempDir()
	writeZip(t, filepath.Join(downloads, "sc3ye_2020-03-15.zip"), map[string]string{
		"readme.txt": "hello",
	})

	_, err := UnzipAll(downloads, t.TempDir(), true)
	assert.ErrorContains(t, err, "does not match")
}
