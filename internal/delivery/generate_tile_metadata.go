package delivery

import (
	"fmt"

	"github.com/forest-guardian/hopper-dataset/internal/config"
	"github.com/forest-guardian/hopper-dataset/internal/tiles"
	"github.com/sirupsen/logrus"
)

// GenerateTileMetadata writes metadata.csv for the downloaded archives.
func GenerateTileMetadata(s *config.Settings, log logrus.FieldLogger) (int, error) {
	rows, err := tiles.WriteMetadata(s.Paths.DownloadDir, s.Paths.MetadataCSV)
	if err != nil {
		return 0, fmt.Errorf("error writing tile metadata: %w", err)
	}
	log.WithFields(logrus.Fields{"rows": len(rows), "path": s.Paths.MetadataCSV}).Info("tile metadata written")
	return len(rows), nil
}
