package alert

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	fileErr   error
	beepErr   error
	systemErr error

	files  []string
	beeps  int
	system int
	freq   int
	dur    time.Duration
}

func (p *fakePlayer) PlayFile(_ context.Context, path string) error {
	p.files = append(p.files, path)
	return p.fileErr
}

func (p *fakePlayer) Beep(_ context.Context, freqHz int, d time.Duration) error {
	p.beeps++
	p.freq, p.dur = freqHz, d
	return p.beepErr
}

func (p *fakePlayer) SystemNotify(context.Context) error {
	p.system++
	return p.systemErr
}

type fakeNotifier struct {
	err      error
	titles   []string
	messages []string
}

func (n *fakeNotifier) Notify(_ context.Context, title, message string) error {
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
	return n.err
}

func newTestDispatcher(opts Options, p Player, n Notifier) (*Dispatcher, *bytes.Buffer, *bytes.Buffer) {
	var console, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewDispatcher(opts, p, n, &console, logger), &console, &logs
}

func writeSoundFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
	return path
}

func TestDispatch_PlaysSoundFile(t *testing.T) {
	path := writeSoundFile(t, "alert.WAV")
	p := &fakePlayer{}
	opts := DefaultOptions()
	opts.SoundPath = path
	d, console, _ := newTestDispatcher(opts, p, nil)

	step := d.Dispatch(context.Background(), "error")

	assert.Equal(t, StepFile, step)
	assert.Equal(t, []string{path}, p.files)
	assert.Zero(t, p.beeps)
	assert.Empty(t, console.String())
}

func TestDispatch_MissingSoundFileFallsBackToBeep(t *testing.T) {
	p := &fakePlayer{}
	opts := DefaultOptions()
	opts.SoundPath = filepath.Join(t.TempDir(), "missing.wav")
	d, _, logs := newTestDispatcher(opts, p, nil)

	step := d.Dispatch(context.Background(), "error")

	assert.Equal(t, StepBeep, step)
	assert.Empty(t, p.files, "missing file must not reach the player")
	assert.Equal(t, 1, p.beeps)
	assert.Equal(t, DefaultBeepFreqHz, p.freq)
	assert.Equal(t, DefaultBeepDuration, p.dur)
	assert.Contains(t, logs.String(), "step=file")
}

func TestDispatch_UnsupportedExtensionFallsBack(t *testing.T) {
	p := &fakePlayer{}
	opts := DefaultOptions()
	opts.SoundPath = writeSoundFile(t, "alert.mp3")
	d, _, logs := newTestDispatcher(opts, p, nil)

	assert.Equal(t, StepBeep, d.Dispatch(context.Background(), "x"))
	assert.Empty(t, p.files)
	assert.Contains(t, logs.String(), ErrUnsupportedFormat.Error())
}

func TestDispatch_FallbackChain(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name       string
		player     *fakePlayer
		want       Step
		wantBell   bool
		wantSystem int
	}{
		{"file fails then beep", &fakePlayer{fileErr: boom}, StepBeep, false, 0},
		{"beep fails then system", &fakePlayer{fileErr: boom, beepErr: boom}, StepSystem, false, 1},
		{"everything fails", &fakePlayer{fileErr: boom, beepErr: boom, systemErr: boom}, StepConsole, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.SoundPath = writeSoundFile(t, "alert.flac")
			d, console, logs := newTestDispatcher(opts, tt.player, nil)

			step := d.Dispatch(context.Background(), "error")

			assert.Equal(t, tt.want, step)
			assert.Len(t, tt.player.files, 1)
			assert.Equal(t, tt.wantSystem, tt.player.system)
			if tt.wantBell {
				assert.Equal(t, "\a", console.String())
				assert.Contains(t, logs.String(), "ALERT (no audio available)")
			} else {
				assert.Empty(t, console.String())
			}
		})
	}
}

func TestDispatch_NullPlayerReachesConsole(t *testing.T) {
	d, console, _ := newTestDispatcher(DefaultOptions(), NullPlayer{}, nil)
	assert.Equal(t, StepConsole, d.Dispatch(context.Background(), "error"))
	assert.Equal(t, "\a", console.String())
}

func TestDispatch_Notifier(t *testing.T) {
	t.Run("sent after sound", func(t *testing.T) {
		n := &fakeNotifier{}
		d, _, _ := newTestDispatcher(DefaultOptions(), &fakePlayer{}, n)

		d.Dispatch(context.Background(), "disk full")
		d.Wait()

		require.Len(t, n.messages, 1)
		assert.Equal(t, NotificationTitle, n.titles[0])
		assert.Contains(t, n.messages[0], "disk full")
	})

	t.Run("failure is logged not returned", func(t *testing.T) {
		n := &fakeNotifier{err: errors.New("service down")}
		d, _, logs := newTestDispatcher(DefaultOptions(), &fakePlayer{}, n)

		assert.Equal(t, StepBeep, d.Dispatch(context.Background(), "x"))
		d.Wait()
		assert.Contains(t, logs.String(), "service down")
		assert.Contains(t, logs.String(), "component=alert")
	})

	t.Run("slow service does not hold up the alert", func(t *testing.T) {
		release := make(chan struct{})
		n := &blockingNotifier{release: release, sent: make(chan error, 1)}
		d, _, _ := newTestDispatcher(DefaultOptions(), &fakePlayer{}, n)

		returned := make(chan Step, 1)
		go func() { returned <- d.Dispatch(context.Background(), "x") }()

		select {
		case step := <-returned:
			assert.Equal(t, StepBeep, step)
		case <-time.After(2 * time.Second):
			t.Fatal("Dispatch waited for the push notification")
		}

		close(release)
		d.Wait()
		assert.NoError(t, <-n.sent)
	})

	t.Run("send is not cancelled with the caller", func(t *testing.T) {
		release := make(chan struct{})
		n := &blockingNotifier{release: release, sent: make(chan error, 1)}
		d, _, _ := newTestDispatcher(DefaultOptions(), &fakePlayer{}, n)

		ctx, cancel := context.WithCancel(context.Background())
		d.Dispatch(ctx, "x")
		cancel()
		close(release)
		d.Wait()
		assert.NoError(t, <-n.sent)
	})
}

// blockingNotifier holds each send until release is closed and reports the
// send context's error.
type blockingNotifier struct {
	release chan struct{}
	sent    chan error
}

func (n *blockingNotifier) Notify(ctx context.Context, _, _ string) error {
	<-n.release
	n.sent <- ctx.Err()
	return nil
}

func TestStep_String(t *testing.T) {
	assert.Equal(t, "file", StepFile.String())
	assert.Equal(t, "beep", StepBeep.String())
	assert.Equal(t, "system", StepSystem.String())
	assert.Equal(t, "console", StepConsole.String())
	assert.Equal(t, "unknown", Step(99).String())
}

func TestNewShoutrrrNotifier(t *testing.T) {
	_, err := NewShoutrrrNotifier(nil, 0)
	assert.Error(t, err)

	_, err = NewShoutrrrNotifier([]string{"nosuchservice://token"}, 0)
	assert.Error(t, err)

	n, err := NewShoutrrrNotifier([]string{"logger://"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Services())
	assert.NoError(t, n.Notify(context.Background(), "title", "message"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, "title", "message"), context.Canceled)
}

func TestRunFirst(t *testing.T) {
	notFound := func(string) (string, error) { return "", errors.New("not found") }

	err := runFirst(context.Background(), [][]string{{"a"}, {"b"}}, notFound)
	assert.ErrorIs(t, err, ErrNoAudio)

	err = runFirst(context.Background(), nil, notFound)
	assert.ErrorIs(t, err, ErrNoAudio)
}

func TestSoundCommands(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		assert.NotEmpty(t, soundCommands(goos), goos)
	}
	assert.Empty(t, soundCommands("plan9"))
}
