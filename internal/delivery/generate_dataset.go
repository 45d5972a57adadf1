package delivery

import (
	"fmt"

	"github.com/forest-guardian/hopper-dataset/internal/config"
	"github.com/forest-guardian/hopper-dataset/internal/dataset"
	"github.com/forest-guardian/hopper-dataset/internal/features"
	"github.com/sirupsen/logrus"
)

// GenerateDataset sorts the band files into class folders using features.csv.
func GenerateDataset(s *config.Settings, log logrus.FieldLogger) (dataset.Summary, error) {
	rows, err := features.Read(s.Paths.FeaturesCSV)
	if err != nil {
		return dataset.Summary{}, fmt.Errorf("error reading features: %w", err)
	}
	positives := features.PositiveIDs(rows)
	log.WithFields(logrus.Fields{"rows": len(rows), "positives": len(positives)}).Info("features loaded")

	summary, err := dataset.Sort(positives, dataset.Options{
		DataDir:        s.Paths.TilesDir,
		OutputDir:      s.Paths.OutputDir,
		NegativeSample: s.Dataset.NegativeSample,
		Seed:           s.Dataset.Seed,
		Move:           s.Dataset.Move,
		Workers:        s.Dataset.Workers,
		Quiet:          s.Quiet,
	})
	for _, name := range summary.Skipped {
		log.WithField("file", name).Debug("skipping file outside the band naming scheme")
	}
	if err != nil {
		return summary, fmt.Errorf("error sorting dataset: %w", err)
	}
	log.WithFields(logrus.Fields{
		"positive_tiles": summary.PositiveTiles,
		"negative_tiles": summary.NegativeTiles,
		"negatives_kept": summary.NegativesKept,
		"files":          summary.Files,
	}).Info("dataset sorted")
	return summary, nil
}
