package main

import (
	"fmt"

	"github.com/forest-guardian/hopper-dataset/internal/delivery"
	"github.com/forest-guardian/hopper-dataset/internal/logging"
	"github.com/spf13/cobra"
)

func newUnzipCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unzip",
		Short: "Extract downloaded archives into {geohash}_{date}T000000_{band}.tif files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.ForRun(a.logger, "unzip")
			summary, err := delivery.UnzipDownloaded(a.settings, log)
			message := fmt.Sprintf("Extracted %d bands from %d archives into %s", summary.Bands, summary.Archives, a.settings.Paths.TilesDir)
			return a.finish(log, "unzip", message, nil, err)
		},
	}

	cmd.Flags().String("downloads", "", "Folder with the downloaded zip archives")
	cmd.Flags().String("tiles", "", "Output folder for the band files")
	a.bind(cmd, "downloads", "paths.downloads")
	a.bind(cmd, "tiles", "paths.tiles")
	return cmd
}
