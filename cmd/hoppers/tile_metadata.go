package main

import (
	"fmt"

	"github.com/forest-guardian/hopper-dataset/internal/delivery"
	"github.com/forest-guardian/hopper-dataset/internal/logging"
	"github.com/spf13/cobra"
)

func newTileMetadataCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tile-metadata",
		Short: "Write geohash, date and id of every downloaded tile to a csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.ForRun(a.logger, "tile-metadata")
			rows, err := delivery.GenerateTileMetadata(a.settings, log)
			message := fmt.Sprintf("Tile metadata with %d rows written to %s", rows, a.settings.Paths.MetadataCSV)
			return a.finish(log, "tile-metadata", message, nil, err)
		},
	}

	cmd.Flags().String("downloads", "", "Folder with the downloaded tiles")
	cmd.Flags().String("metadata", "", "Output metadata csv")
	a.bind(cmd, "downloads", "paths.downloads")
	a.bind(cmd, "metadata", "paths.metadata")
	return cmd
}
