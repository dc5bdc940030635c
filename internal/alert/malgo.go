//go:build cgo

package alert

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/ironsheep/screen-text-alert/internal/logging"
)

// playbackSlack is added to the expected clip length before playback is
// abandoned.
const playbackSlack = 2 * time.Second

// playback is a started output stream.
type playback interface {
	// Wait blocks until the clip has played, ctx is done or the stream
	// stalls.
	Wait(ctx context.Context) error
	Close()
}

// openFunc opens and starts an output stream for pcm.
type openFunc func(pcm *PCM) (playback, error)

// MalgoPlayer plays PCM through the default output device.
//
// Devices are opened and started synchronously so that an unusable output
// is reported to the caller. Sound files then finish playing in the
// background until the clip ends or the player is closed.
type MalgoPlayer struct {
	logger *slog.Logger
	open   openFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPlayer returns the audio player for this build.
func NewPlayer(logger *slog.Logger) Player {
	return newMalgoPlayer(logger, openDevice)
}

func newMalgoPlayer(logger *slog.Logger, open openFunc) *MalgoPlayer {
	ctx, cancel := context.WithCancel(context.Background())
	return &MalgoPlayer{
		logger: logging.ForComponent(logger, "alert"),
		open:   open,
		ctx:    ctx,
		cancel: cancel,
	}
}

// PlayFile decodes path, starts the output device and returns. Playback
// continues in the background.
func (p *MalgoPlayer) PlayFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pcm, err := DecodeFile(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("%w: player closed", ErrNoAudio)
	}

	pb, err := p.open(pcm)
	if err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer pb.Close()
		if err := pb.Wait(p.ctx); err != nil {
			p.logger.Warn("sound file playback failed", "path", path, "error", err)
		}
	}()
	return nil
}

// Beep plays a sine tone and waits for it to finish.
func (p *MalgoPlayer) Beep(ctx context.Context, freqHz int, d time.Duration) error {
	pcm, err := Tone(freqHz, d, ToneSampleRate)
	if err != nil {
		return err
	}
	pb, err := p.open(pcm)
	if err != nil {
		return err
	}
	defer pb.Close()
	return pb.Wait(ctx)
}

// SystemNotify plays the platform notification sound.
func (p *MalgoPlayer) SystemNotify(ctx context.Context) error {
	return playSystemSound(ctx)
}

// Close stops background playback and releases its devices. It is safe to
// call more than once.
func (p *MalgoPlayer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	return nil
}

func backendForPlatform() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

// deviceStream feeds PCM to a started malgo playback device.
type deviceStream struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	length   time.Duration

	mu     sync.Mutex
	data   []byte
	offset int
	done   chan struct{}
	once   sync.Once
}

// openDevice initialises an audio context and a playback device for pcm
// and starts it.
func openDevice(pcm *PCM) (playback, error) {
	malgoCtx, err := malgo.InitContext([]malgo.Backend{backendForPlatform()}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialise audio context: %w", ErrNoAudio, err)
	}

	s := &deviceStream{
		malgoCtx: malgoCtx,
		length:   pcm.Duration(),
		data:     pcm.Bytes(),
		done:     make(chan struct{}),
	}
	frameSize := 2 * pcm.Channels

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(pcm.Channels)
	cfg.SampleRate = uint32(pcm.SampleRate)
	cfg.Alsa.NoMMap = 1

	onData := func(pOutput, _ []byte, frameCount uint32) {
		s.mu.Lock()
		defer s.mu.Unlock()

		want := int(frameCount) * frameSize
		if want > len(pOutput) {
			want = len(pOutput)
		}
		n := copy(pOutput[:want], s.data[s.offset:])
		for i := n; i < want; i++ {
			pOutput[i] = 0
		}
		s.offset += n
		if s.offset >= len(s.data) {
			s.once.Do(func() { close(s.done) })
		}
	}

	device, err := malgo.InitDevice(malgoCtx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		s.freeContext()
		return nil, fmt.Errorf("%w: failed to open playback device: %w", ErrNoAudio, err)
	}
	s.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		s.freeContext()
		return nil, fmt.Errorf("%w: failed to start playback device: %w", ErrNoAudio, err)
	}
	return s, nil
}

func (s *deviceStream) Wait(ctx context.Context) error {
	limit := s.length + playbackSlack
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case <-s.done:
		// Let the device drain the last period.
		time.Sleep(50 * time.Millisecond)
		return nil
	case <-ctx.Done():
		return nil
	case <-timer.C:
		return fmt.Errorf("playback did not finish within %v", limit)
	}
}

func (s *deviceStream) Close() {
	_ = s.device.Stop()
	s.device.Uninit()
	s.freeContext()
}

func (s *deviceStream) freeContext() {
	_ = s.malgoCtx.Uninit()
	s.malgoCtx.Free()
}
