package main

import (
	"fmt"

	"github.com/forest-guardian/hopper-dataset/internal/delivery"
	"github.com/forest-guardian/hopper-dataset/internal/logging"
	"github.com/spf13/cobra"
)

func newSortCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Copy band files into hoppers/ and no_hoppers/ folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.ForRun(a.logger, "sort")
			summary, err := delivery.GenerateDataset(a.settings, log)
			message := fmt.Sprintf("Sorted %d files: %d positive tiles, %d of %d negative tiles kept",
				summary.Files, summary.PositiveTiles, summary.NegativesKept, summary.NegativeTiles)
			return a.finish(log, "sort", message, nil, err)
		},
	}

	flags := cmd.Flags()
	flags.String("features", "", "Labeled features csv")
	flags.String("tiles", "", "Folder with the band files")
	flags.String("output", "", "Dataset output folder")
	flags.Float64("negative-sample", 1.0, "Fraction of negative tiles to keep")
	flags.Uint64("seed", 0, "Seed for the negative shuffle, 0 picks one at random")
	flags.Bool("move", false, "Move files instead of copying them")
	flags.Int("workers", 8, "Concurrent file transfers")

	a.bind(cmd, "features", "paths.features")
	a.bind(cmd, "tiles", "paths.tiles")
	a.bind(cmd, "output", "paths.output")
	a.bind(cmd, "negative-sample", "dataset.negative_sample")
	a.bind(cmd, "seed", "dataset.seed")
	a.bind(cmd, "move", "dataset.move")
	a.bind(cmd, "workers", "dataset.workers")
	return cmd
}
