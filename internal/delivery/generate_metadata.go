package delivery

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/forest-guardian/hopper-dataset/internal/cache"
	"github.com/forest-guardian/hopper-dataset/internal/config"
	"github.com/forest-guardian/hopper-dataset/internal/features"
	"github.com/forest-guardian/hopper-dataset/internal/geocell"
	"github.com/forest-guardian/hopper-dataset/internal/label"
	"github.com/forest-guardian/hopper-dataset/internal/locusthub"
	"github.com/forest-guardian/hopper-dataset/internal/output"
	"github.com/forest-guardian/hopper-dataset/internal/tiles"
	"github.com/forest-guardian/hopper-dataset/internal/utils"
	"github.com/sirupsen/logrus"
)

type LabelReport struct {
	Sightings int
	Filtered  int
	Tiles     int
	Files     int
	Positives int
	Warnings  []string
	Features  string
	Preview   string
}

func (r LabelReport) String() string {
	return fmt.Sprintf("Labeled %d tiles (%d positive) from %d sightings.\nFeatures: %s", r.Tiles, r.Positives, r.Sightings, r.Features)
}

func loadRegion(s *config.Settings, log logrus.FieldLogger) ([]string, error) {
	if s.Paths.RegionGeoJSON == "" {
		log.Warn("no region geojson configured, keeping sightings from every cell")
		return nil, nil
	}
	regionCache := cache.NewFileCache[[]string](filepath.Join(s.Paths.CacheDir, "regions"))
	cells, hit, err := geocell.CachedRegionCells(regionCache, s.Paths.RegionGeoJSON, geocell.Precision)
	if err != nil && cells == nil {
		return nil, err
	}
	if err != nil {
		log.WithError(err).Warn("failed to cache region cells")
	}
	log.WithFields(logrus.Fields{"cells": len(cells), "cached": hit}).Info("region cells ready")
	return cells, nil
}

// GenerateMetadata labels the downloaded tiles with the hopper sightings and writes features.csv.
func GenerateMetadata(ctx context.Context, s *config.Settings, log logrus.FieldLogger) (LabelReport, error) {
	report := LabelReport{Features: s.Paths.FeaturesCSV}

	since, err := s.SinceDate()
	if err != nil {
		return report, err
	}
	region, err := loadRegion(s, log)
	if err != nil {
		return report, fmt.Errorf("error loading region: %w", err)
	}

	loaded, err := locusthub.Load(s.Paths.SightingsCSV, locusthub.Options{Since: since, Region: region})
	if err != nil {
		return report, fmt.Errorf("error loading sightings: %w", err)
	}
	for _, skipped := range loaded.Skipped {
		log.WithError(skipped).Warn("skipping sighting")
		report.Warnings = append(report.Warnings, skipped.Error())
	}
	report.Sightings = len(loaded.Sightings)
	report.Filtered = loaded.Filtered
	log.WithFields(logrus.Fields{"kept": report.Sightings, "filtered": report.Filtered}).Info("sightings loaded")

	listing, err := tiles.List(s.Paths.DownloadDir)
	if err != nil {
		return report, fmt.Errorf("error listing tiles: %w", err)
	}
	for _, name := range listing.Skipped {
		log.WithField("file", name).Warn("skipping file outside the tile naming scheme")
		report.Warnings = append(report.Warnings, "unrecognized tile file "+name)
	}
	report.Tiles = len(listing.Tiles)
	for _, id := range utils.SortedKeys(listing.Names) {
		report.Files += len(listing.Names[id])
		log.WithFields(logrus.Fields{"tile": id, "files": len(listing.Names[id])}).Debug("tile files")
	}
	if len(listing.Tiles) > 0 {
		log.WithFields(logrus.Fields{
			"tiles": report.Tiles,
			"files": report.Files,
			"first": listing.Tiles[0].AcquisitionDate.Format("2006-01-02"),
			"last":  listing.Tiles[len(listing.Tiles)-1].AcquisitionDate.Format("2006-01-02"),
		}).Info("tiles listed")
	}

	var labeled []label.Tile
	if s.Label.Workers > 1 {
		labeled, err = label.LabelParallel(ctx, listing.Tiles, loaded.Sightings, s.Label.NeighborExpansions, s.Label.Workers)
	} else {
		labeled, err = label.Label(listing.Tiles, loaded.Sightings, s.Label.NeighborExpansions)
	}
	if err != nil {
		return report, fmt.Errorf("error labeling tiles: %w", err)
	}
	report.Positives = label.Positives(labeled)

	if err := features.Write(s.Paths.FeaturesCSV, labeled); err != nil {
		return report, err
	}
	log.WithFields(logrus.Fields{"path": s.Paths.FeaturesCSV, "positives": report.Positives}).Info("features written")

	if s.Label.Preview != "" && len(labeled) > 0 {
		if err := output.CreateLabelMap(labeled, s.Label.Preview, s.Label.PreviewSize); err != nil {
			return report, fmt.Errorf("error creating preview: %w", err)
		}
		report.Preview = s.Label.Preview
		log.WithField("path", s.Label.Preview).Info("preview written")
	}
	return report, nil
}
