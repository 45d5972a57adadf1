package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/label"
	"github.com/forest-guardian/hopper-dataset/internal/tiles"
	"github.com/forest-guardian/hopper-dataset/internal/utils"
	"github.com/klauspost/compress/zip"
)

type Summary struct {
	Archives int
	Bands    int
	// Skipped lists files in the download folder that are not zip archives.
	Skipped []string
}

// ParseArchiveName splits {id}_{YYYY-MM-DD}.zip.
func ParseArchiveName(name string) (string, time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) != 2 || parts[0] == "" {
		return "", time.Time{}, fmt.Errorf("archive name %s does not match {id}_{date}.zip", name)
	}
	date, err := time.Parse("2006-01-02", parts[1])
	if err != nil {
		return "", time.Time{}, &label.ParseError{Field: "archive date", Value: parts[1], Err: err}
	}
	return parts[0], date, nil
}

// BandName maps an archive entry like {scene}.{band}.tif to the band token.
func BandName(entry string) (string, error) {
	parts := strings.Split(filepath.Base(entry), ".")
	if len(parts) != 3 || parts[1] == "" {
		return "", fmt.Errorf("archive entry %s does not match {name}.{band}.{ext}", entry)
	}
	return parts[1], nil
}

// OutputName is the canonical band file name for a tile.
func OutputName(id string, date time.Time, band string) string {
	return fmt.Sprintf("%s_%s.tif", tiles.FileID(id, date), band)
}

func extractEntry(f *zip.File, outputPath string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer src.Close()

	tmp := outputPath + ".tmp"
	dst, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, outputPath)
}

// Unzip extracts one downloaded archive into outputDir and returns the written file names.
func Unzip(archivePath, outputDir string) ([]string, error) {
	id, date, err := ParseArchiveName(archivePath)
	if err != nil {
		return nil, err
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	var written []string
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		band, err := BandName(f.Name)
		if err != nil {
			return written, fmt.Errorf("%s: %w", archivePath, err)
		}
		name := OutputName(id, date, band)
		if err := extractEntry(f, filepath.Join(outputDir, name)); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

// UnzipAll extracts every zip archive found in downloadDir.
func UnzipAll(downloadDir, outputDir string, quiet bool) (Summary, error) {
	entries, err := os.ReadDir(downloadDir)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read download folder: %w", err)
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return Summary{}, fmt.Errorf("failed to create output folder: %w", err)
	}

	var summary Summary
	var archives []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			summary.Skipped = append(summary.Skipped, entry.Name())
			continue
		}
		archives = append(archives, entry.Name())
	}
	sort.Strings(archives)

	progressBar := utils.NewProgressBar(len(archives), "Unzipping downloads", quiet)
	for _, name := range archives {
		written, err := Unzip(filepath.Join(downloadDir, name), outputDir)
		summary.Bands += len(written)
		if err != nil {
			return summary, err
		}
		summary.Archives++
		progressBar.Add(1)
	}
	return summary, nil
}
