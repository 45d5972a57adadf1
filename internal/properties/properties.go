package properties

import (
	"os"
	"path/filepath"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// DataPath joins elem under ROOT_PATH/data.
func DataPath(elem ...string) string {
	return filepath.Join(append([]string{RootPath(), "data"}, elem...)...)
}

const (
	PositiveDir = "hoppers"
	NegativeDir = "no_hoppers"
)

type Color struct {
	R, G, B uint8
}

var ColorMap = map[int]Color{
	0: {190, 190, 190},
	1: {220, 30, 30},
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
