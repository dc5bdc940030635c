package alert

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// systemSoundTimeout bounds a notification sound command.
const systemSoundTimeout = 5 * time.Second

// soundCommands lists notification sound commands for goos in order of
// preference.
func soundCommands(goos string) [][]string {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return [][]string{
			{"paplay", "/usr/share/sounds/freedesktop/stereo/bell.oga"},
			{"canberra-gtk-play", "--id", "bell"},
			{"aplay", "-q", "/usr/share/sounds/alsa/Front_Center.wav"},
		}
	case "darwin":
		return [][]string{
			{"afplay", "/System/Library/Sounds/Ping.aiff"},
		}
	case "windows":
		return [][]string{
			{"powershell", "-NoProfile", "-NonInteractive", "-Command",
				"[System.Media.SystemSounds]::Exclamation.Play(); Start-Sleep -Milliseconds 500"},
		}
	default:
		return nil
	}
}

// playSystemSound runs the first available notification sound command.
func playSystemSound(ctx context.Context) error {
	return runFirst(ctx, soundCommands(runtime.GOOS), exec.LookPath)
}

func runFirst(ctx context.Context, cmds [][]string, lookPath func(string) (string, error)) error {
	var errs []error
	for _, argv := range cmds {
		bin, err := lookPath(argv[0])
		if err != nil {
			errs = append(errs, err)
			continue
		}

		cmdCtx, cancel := context.WithTimeout(ctx, systemSoundTimeout)
		err = exec.CommandContext(cmdCtx, bin, argv[1:]...).Run()
		cancel()
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", argv[0], err))
	}

	if len(errs) == 0 {
		return fmt.Errorf("%w: no notification sound command for %s", ErrNoAudio, runtime.GOOS)
	}
	return fmt.Errorf("%w: %w", ErrNoAudio, errors.Join(errs...))
}

// systemPlayer only has the platform notification sound.
type systemPlayer struct {
	NullPlayer
}

func (systemPlayer) SystemNotify(ctx context.Context) error {
	return playSystemSound(ctx)
}
