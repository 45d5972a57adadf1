package delivery

import (
	"fmt"

	"github.com/forest-guardian/hopper-dataset/internal/archive"
	"github.com/forest-guardian/hopper-dataset/internal/config"
	"github.com/sirupsen/logrus"
)

// UnzipDownloaded extracts the downloaded archives into the tiles folder.
func UnzipDownloaded(s *config.Settings, log logrus.FieldLogger) (archive.Summary, error) {
	summary, err := archive.UnzipAll(s.Paths.DownloadDir, s.Paths.TilesDir, s.Quiet)
	for _, name := range summary.Skipped {
		log.WithField("file", name).Warn("skipping non zip entry")
	}
	if err != nil {
		return summary, fmt.Errorf("error unzipping downloads: %w", err)
	}
	log.WithFields(logrus.Fields{"archives": summary.Archives, "bands": summary.Bands, "output": s.Paths.TilesDir}).Info("downloads unzipped")
	return summary, nil
}
