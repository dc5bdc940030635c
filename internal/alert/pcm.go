package alert

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/flac"
)

const (
	// ToneSampleRate is the sample rate of synthesised tones.
	ToneSampleRate = 44100

	toneAmplitude = 0.5
	toneFade      = 5 * time.Millisecond
)

// PCM is interleaved signed 16-bit audio.
type PCM struct {
	Samples    []int16
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames.
func (p *PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Duration returns the playback length.
func (p *PCM) Duration() time.Duration {
	if p.SampleRate == 0 {
		return 0
	}
	return time.Duration(p.Frames()) * time.Second / time.Duration(p.SampleRate)
}

// Bytes returns the samples as little-endian bytes.
func (p *PCM) Bytes() []byte {
	out := make([]byte, len(p.Samples)*2)
	for i, s := range p.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Tone synthesises a mono sine tone with a short linear fade at both ends.
func Tone(freqHz int, d time.Duration, sampleRate int) (*PCM, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("tone frequency must be > 0, got %d", freqHz)
	}
	if d <= 0 {
		return nil, fmt.Errorf("tone duration must be > 0, got %v", d)
	}
	if sampleRate <= 0 {
		sampleRate = ToneSampleRate
	}

	n := int(int64(d) * int64(sampleRate) / int64(time.Second))
	if n < 1 {
		n = 1
	}
	fade := int(int64(toneFade) * int64(sampleRate) / int64(time.Second))
	if fade > n/2 {
		fade = n / 2
	}

	samples := make([]int16, n)
	step := 2 * math.Pi * float64(freqHz) / float64(sampleRate)
	for i := range samples {
		gain := toneAmplitude
		switch {
		case i < fade:
			gain *= float64(i) / float64(fade)
		case i >= n-fade:
			gain *= float64(n-1-i) / float64(fade)
		}
		samples[i] = int16(math.Round(gain * math.MaxInt16 * math.Sin(step*float64(i))))
	}

	return &PCM{Samples: samples, Channels: 1, SampleRate: sampleRate}, nil
}

// DecodeFile reads a WAV or FLAC file into memory.
func DecodeFile(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return DecodeWAV(f)
	case ".flac":
		return DecodeFLAC(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DecodeWAV decodes an integer PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*PCM, error) {
	decoder := wav.NewDecoder(r)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, errors.New("input is not a valid WAV audio file")
	}

	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	if channels < 1 {
		return nil, fmt.Errorf("WAV file has %d channels", channels)
	}

	out := &PCM{Channels: channels, SampleRate: int(decoder.SampleRate)}
	buf := &audio.IntBuffer{
		Data:   make([]int, 4096*channels),
		Format: &audio.Format{SampleRate: out.SampleRate, NumChannels: channels},
	}
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV data: %w", err)
		}
		if n == 0 {
			break
		}
		for _, v := range buf.Data[:n] {
			s, err := toInt16(int32(v), bitDepth, bitDepth == 8)
			if err != nil {
				return nil, err
			}
			out.Samples = append(out.Samples, s)
		}
	}

	if len(out.Samples) == 0 {
		return nil, errors.New("WAV file contains no audio")
	}
	return out, nil
}

// DecodeFLAC decodes a FLAC stream.
func DecodeFLAC(r io.Reader) (*PCM, error) {
	decoder, err := flac.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC stream: %w", err)
	}

	bitDepth := decoder.BitsPerSample
	channels := decoder.NChannels
	if channels < 1 {
		return nil, fmt.Errorf("FLAC stream has %d channels", channels)
	}
	width := (bitDepth + 7) / 8

	out := &PCM{Channels: channels, SampleRate: decoder.SampleRate}
	for {
		frame, err := decoder.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to decode FLAC frame: %w", err)
		}

		for i := 0; i+width <= len(frame); i += width {
			var sample int32
			switch width {
			case 1:
				sample = int32(int8(frame[i]))
			case 2:
				sample = int32(int16(binary.LittleEndian.Uint16(frame[i:])))
			case 3:
				sample = int32(frame[i]) | int32(frame[i+1])<<8 | int32(int8(frame[i+2]))<<16
			case 4:
				sample = int32(binary.LittleEndian.Uint32(frame[i:]))
			}
			s, err := toInt16(sample, bitDepth, false)
			if err != nil {
				return nil, err
			}
			out.Samples = append(out.Samples, s)
		}
	}

	if len(out.Samples) == 0 {
		return nil, errors.New("FLAC stream contains no audio")
	}
	return out, nil
}

// toInt16 rescales a signed sample of the given bit depth. 8-bit WAV data
// is unsigned.
func toInt16(v int32, bitDepth int, unsigned bool) (int16, error) {
	switch bitDepth {
	case 8:
		if unsigned {
			v -= 128
		}
		return int16(v << 8), nil
	case 16:
		return int16(v), nil
	case 24:
		return int16(v >> 8), nil
	case 32:
		return int16(v >> 16), nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}
