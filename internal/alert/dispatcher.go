// Package alert turns a confirmed detection into something a person notices.
//
// Dispatcher walks a fixed fallback chain: the configured sound file, a
// synthesised tone, the platform notification sound, and finally a log line
// with a terminal bell. The first step that succeeds ends the chain. Push
// notifications, when configured, are sent after the sound chain. Dispatch
// never returns an error; every failed step is logged at warn level.
package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ironsheep/screen-text-alert/internal/logging"
)

const (
	// DefaultBeepFreqHz is the tone frequency used when no sound file plays.
	DefaultBeepFreqHz = 1000

	// DefaultBeepDuration is the tone length.
	DefaultBeepDuration = 500 * time.Millisecond

	// NotificationTitle is the title attached to push notifications.
	NotificationTitle = "Screen text alert"
)

var (
	// ErrNoAudio is returned by players that cannot produce sound.
	ErrNoAudio = errors.New("no audio output available")

	// ErrUnsupportedFormat is returned for sound files other than WAV or FLAC.
	ErrUnsupportedFormat = errors.New("unsupported sound file format")
)

// Options configures the sound chain.
type Options struct {
	SoundPath    string
	BeepFreqHz   int
	BeepDuration time.Duration
}

// DefaultOptions returns a 1 kHz, 500 ms tone and no sound file.
func DefaultOptions() Options {
	return Options{
		BeepFreqHz:   DefaultBeepFreqHz,
		BeepDuration: DefaultBeepDuration,
	}
}

// Player produces sound. PlayFile returns once the file has been decoded
// and playback has started; it does not wait for playback to finish.
type Player interface {
	PlayFile(ctx context.Context, path string) error
	Beep(ctx context.Context, freqHz int, d time.Duration) error
	SystemNotify(ctx context.Context) error
}

// Step identifies which link of the chain produced the alert.
type Step int

const (
	StepFile Step = iota
	StepBeep
	StepSystem
	StepConsole
)

func (s Step) String() string {
	switch s {
	case StepFile:
		return "file"
	case StepBeep:
		return "beep"
	case StepSystem:
		return "system"
	case StepConsole:
		return "console"
	default:
		return "unknown"
	}
}

// Dispatcher runs the alert chain.
type Dispatcher struct {
	opts     Options
	player   Player
	notifier Notifier
	console  io.Writer
	logger   *slog.Logger

	pending sync.WaitGroup
}

// NewDispatcher creates a dispatcher. notifier may be nil. console receives
// the terminal bell and defaults to os.Stderr.
func NewDispatcher(opts Options, player Player, notifier Notifier, console io.Writer, logger *slog.Logger) *Dispatcher {
	if player == nil {
		player = NullPlayer{}
	}
	if console == nil {
		console = os.Stderr
	}
	return &Dispatcher{
		opts:     opts,
		player:   player,
		notifier: notifier,
		console:  console,
		logger:   logging.ForComponent(logger, "alert"),
	}
}

// Dispatch raises an alert for the recognised text and reports which step
// of the sound chain succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) Step {
	step := d.sound(ctx)
	d.notify(ctx, text)
	return step
}

func (d *Dispatcher) sound(ctx context.Context) Step {
	if path := d.opts.SoundPath; path != "" {
		err := checkSoundFile(path)
		if err == nil {
			err = d.player.PlayFile(ctx, path)
		}
		if err == nil {
			return StepFile
		}
		d.logger.Warn("alert step failed", "step", StepFile.String(), "path", path, "error", err)
	}

	err := d.player.Beep(ctx, d.opts.BeepFreqHz, d.opts.BeepDuration)
	if err == nil {
		return StepBeep
	}
	d.logger.Warn("alert step failed", "step", StepBeep.String(), "error", err)

	err = d.player.SystemNotify(ctx)
	if err == nil {
		return StepSystem
	}
	d.logger.Warn("alert step failed", "step", StepSystem.String(), "error", err)

	d.logger.Warn("ALERT (no audio available)")
	fmt.Fprint(d.console, "\a")
	return StepConsole
}

// notify sends the push notification in the background so a slow service
// never delays the next tick. Each send is bounded by DefaultNotifyTimeout.
func (d *Dispatcher) notify(ctx context.Context, text string) {
	if d.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Detected text on screen: %s", text)

	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultNotifyTimeout)
		defer cancel()
		if err := d.notifier.Notify(sendCtx, NotificationTitle, msg); err != nil {
			d.logger.Warn("push notification failed", "error", err)
		}
	}()
}

// Wait blocks until push notifications already dispatched have been sent
// or have failed.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// checkSoundFile verifies the file exists and has a playable extension.
func checkSoundFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("sound file not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("sound path is a directory: %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".flac":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// NullPlayer is a Player with no audio output.
type NullPlayer struct{}

func (NullPlayer) PlayFile(context.Context, string) error { return ErrNoAudio }

func (NullPlayer) Beep(context.Context, int, time.Duration) error { return ErrNoAudio }

func (NullPlayer) SystemNotify(context.Context) error { return ErrNoAudio }
