package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forest-guardian/hopper-dataset/internal/properties"
	"github.com/spf13/viper"
)

const (
	configName = "hoppers"
	envPrefix  = "HOPPERS"
)

type Settings struct {
	Quiet   bool            `mapstructure:"quiet"`
	Log     LogSettings     `mapstructure:"log"`
	Paths   PathSettings    `mapstructure:"paths"`
	Label   LabelSettings   `mapstructure:"label"`
	Dataset DatasetSettings `mapstructure:"dataset"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type PathSettings struct {
	SightingsCSV  string `mapstructure:"sightings"`
	RegionGeoJSON string `mapstructure:"region"`
	DownloadDir   string `mapstructure:"downloads"`
	TilesDir      string `mapstructure:"tiles"`
	FeaturesCSV   string `mapstructure:"features"`
	MetadataCSV   string `mapstructure:"metadata"`
	OutputDir     string `mapstructure:"output"`
	CacheDir      string `mapstructure:"cache"`
}

type LabelSettings struct {
	NeighborExpansions int    `mapstructure:"neighbors"`
	Since              string `mapstructure:"since"`
	Workers            int    `mapstructure:"workers"`
	Preview            string `mapstructure:"preview"`
	PreviewSize        int    `mapstructure:"preview_size"`
}

type DatasetSettings struct {
	NegativeSample float64 `mapstructure:"negative_sample"`
	Seed           uint64  `mapstructure:"seed"`
	Move           bool    `mapstructure:"move"`
	Workers        int     `mapstructure:"workers"`
}

// SinceDate parses Label.Since.
func (s *Settings) SinceDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", s.Label.Since)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid label.since %q: %w", s.Label.Since, err)
	}
	return t, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("quiet", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("paths.sightings", properties.DataPath("locusthub", "hoppers.csv"))
	v.SetDefault("paths.region", properties.DataPath("geojsons", "region.geojson"))
	v.SetDefault("paths.downloads", properties.DataPath("downloads"))
	v.SetDefault("paths.tiles", properties.DataPath("tiles"))
	v.SetDefault("paths.features", properties.DataPath("features", "features.csv"))
	v.SetDefault("paths.metadata", properties.DataPath("features", "metadata.csv"))
	v.SetDefault("paths.output", properties.DataPath("dataset"))
	v.SetDefault("paths.cache", properties.DataPath("cache"))

	v.SetDefault("label.neighbors", 0)
	v.SetDefault("label.since", "2016-01-01")
	v.SetDefault("label.workers", 1)
	v.SetDefault("label.preview", "")
	v.SetDefault("label.preview_size", 1024)

	v.SetDefault("dataset.negative_sample", 1.0)
	v.SetDefault("dataset.seed", 0)
	v.SetDefault("dataset.move", false)
	v.SetDefault("dataset.workers", 8)
}

// Init prepares v with defaults, environment binding and the optional config
// file. configFile overrides the search for hoppers.yaml.
func Init(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if root := properties.RootPath(); root != "" {
			v.AddConfigPath(root)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load decodes the current state of v.
func Load(v *viper.Viper) (*Settings, error) {
	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	if settings.Dataset.NegativeSample < 0 || settings.Dataset.NegativeSample > 1 {
		return nil, fmt.Errorf("dataset.negative_sample must be within [0, 1], got %g", settings.Dataset.NegativeSample)
	}
	if settings.Label.NeighborExpansions < 0 {
		return nil, fmt.Errorf("label.neighbors must be non-negative, got %d", settings.Label.NeighborExpansions)
	}
	if _, err := settings.SinceDate(); err != nil {
		return nil, err
	}
	return &settings, nil
}
