package main

import (
	"github.com/forest-guardian/hopper-dataset/internal/delivery"
	"github.com/forest-guardian/hopper-dataset/internal/logging"
	"github.com/spf13/cobra"
)

func newLabelCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Label downloaded tiles with LocustHub hopper sightings",
		Long: `Join the hopper sightings extract with the downloaded tiles. A tile is
positive when a sighting in its geohash cell (or within --neighbors rings)
was observed on its acquisition date or up to 29 days before. Writes features.csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.ForRun(a.logger, "label")
			report, err := delivery.GenerateMetadata(cmd.Context(), a.settings, log)
			return a.finish(log, "label", report.String(), report.Warnings, err)
		},
	}

	flags := cmd.Flags()
	flags.String("sightings", "", "LocustHub hoppers csv")
	flags.String("region", "", "Region geojson, empty keeps every sighting")
	flags.String("downloads", "", "Folder with the downloaded {geohash}_{date} tiles")
	flags.String("features", "", "Output features csv")
	flags.Int("neighbors", 0, "Geohash neighbor rings added around each sighting")
	flags.String("since", "", "Drop sightings before this date (YYYY-MM-DD)")
	flags.Int("workers", 1, "Label sightings in parallel with this many workers")
	flags.String("preview", "", "Write a PNG map of the labeled cells to this path")

	a.bind(cmd, "sightings", "paths.sightings")
	a.bind(cmd, "region", "paths.region")
	a.bind(cmd, "downloads", "paths.downloads")
	a.bind(cmd, "features", "paths.features")
	a.bind(cmd, "neighbors", "label.neighbors")
	a.bind(cmd, "since", "label.since")
	a.bind(cmd, "workers", "label.workers")
	a.bind(cmd, "preview", "label.preview")
	return cmd
}
