//go:build !cgo

package alert

import "log/slog"

// NewPlayer returns the audio player for this build. Without cgo there is
// no audio device access; only the platform notification sound remains.
func NewPlayer(logger *slog.Logger) Player {
	return systemPlayer{}
}
