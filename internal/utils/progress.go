package utils

import "github.com/schollz/progressbar/v3"

// NewProgressBar returns the default terminal bar, or a silent one when quiet.
func NewProgressBar(total int, description string, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultSilent(int64(total), description)
	}
	return progressbar.Default(int64(total), description)
}
