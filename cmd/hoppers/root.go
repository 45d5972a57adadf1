package main

import (
	"fmt"
	"strings"

	bannercolor "github.com/fatih/color"
	"github.com/forest-guardian/hopper-dataset/internal/config"
	"github.com/forest-guardian/hopper-dataset/internal/logging"
	"github.com/forest-guardian/hopper-dataset/internal/notification"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type app struct {
	viper      *viper.Viper
	configFile string
	settings   *config.Settings
	logger     *logrus.Logger
	notifier   *notification.Discord
	// flagKeys maps command name -> flag name -> viper key. Several commands
	// share keys, so only the executing command's flags are bound.
	flagKeys map[string]map[string]string
}

func (a *app) bind(cmd *cobra.Command, flag, key string) {
	if a.flagKeys[cmd.Name()] == nil {
		a.flagKeys[cmd.Name()] = make(map[string]string)
	}
	a.flagKeys[cmd.Name()][flag] = key
}

func newRootCommand() *cobra.Command {
	a := &app{viper: viper.New(), flagKeys: make(map[string]map[string]string)}

	rootCmd := &cobra.Command{
		Use:           "hoppers",
		Short:         "Prepare the locust hopper satellite imagery dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to a hoppers.yaml config file")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Hide banner and progress bars")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	bindFlag(a.viper, rootCmd.PersistentFlags().Lookup("quiet"), "quiet")
	bindFlag(a.viper, rootCmd.PersistentFlags().Lookup("log-level"), "log.level")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		for name, key := range a.flagKeys[cmd.Name()] {
			bindFlag(a.viper, cmd.Flags().Lookup(name), key)
		}
		if err := config.Init(a.viper, a.configFile); err != nil {
			return err
		}
		settings, err := config.Load(a.viper)
		if err != nil {
			return err
		}
		a.settings = settings
		a.logger = logging.New(settings.Log.Level)
		a.notifier = notification.NewDiscordFromEnv()
		if !settings.Quiet {
			printBanner()
		}
		return nil
	}

	rootCmd.AddCommand(
		newLabelCommand(a),
		newTileMetadataCommand(a),
		newUnzipCommand(a),
		newSortCommand(a),
	)
	return rootCmd
}

func bindFlag(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("error binding flag %s: %v", flag.Name, err))
	}
}

// finish prints the outcome of a command and forwards it to the notifier.
func (a *app) finish(log *logrus.Entry, command, message string, warnings []string, err error) error {
	if err != nil {
		log.WithError(err).Error(command + " failed")
		if nerr := a.notifier.SendError(fmt.Sprintf("%s: %s", command, err.Error())); nerr != nil {
			log.WithError(nerr).Warn("failed to send notification")
		}
		return err
	}

	bannercolor.Green("\n%s\n", message)
	if len(warnings) > 0 {
		bannercolor.Yellow("%d warnings, see the log for details\n", len(warnings))
		if nerr := a.notifier.SendWarn(fmt.Sprintf("%s completed with %d warnings.\n%s", command, len(warnings), strings.Join(warnings, "\n"))); nerr != nil {
			log.WithError(nerr).Warn("failed to send notification")
		}
	}
	if nerr := a.notifier.SendSuccess(fmt.Sprintf("%s\n\n%s", command, message)); nerr != nil {
		log.WithError(nerr).Warn("failed to send notification")
	}
	return nil
}
