package alert

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTone(t *testing.T) {
	pcm, err := Tone(1000, 500*time.Millisecond, 44100)
	require.NoError(t, err)

	assert.Equal(t, 1, pcm.Channels)
	assert.Equal(t, 44100, pcm.SampleRate)
	assert.Equal(t, 22050, pcm.Frames())
	assert.Equal(t, 500*time.Millisecond, pcm.Duration())

	// Fades start and end at silence.
	assert.Zero(t, pcm.Samples[0])
	assert.Zero(t, pcm.Samples[len(pcm.Samples)-1])

	var peak int16
	for _, s := range pcm.Samples {
		if s > peak {
			peak = s
		}
	}
	want := int16(math.Round(toneAmplitude * math.MaxInt16))
	assert.InDelta(t, want, peak, 50)
	assert.Less(t, peak, int16(math.MaxInt16))
}

func TestTone_Invalid(t *testing.T) {
	_, err := Tone(0, time.Second, 44100)
	assert.Error(t, err)
	_, err = Tone(440, 0, 44100)
	assert.Error(t, err)

	pcm, err := Tone(440, 10*time.Millisecond, 0)
	require.NoError(t, err)
	assert.Equal(t, ToneSampleRate, pcm.SampleRate)
}

func TestPCM_Bytes(t *testing.T) {
	pcm := &PCM{Samples: []int16{1, -2, math.MaxInt16}, Channels: 1, SampleRate: 8000}
	b := pcm.Bytes()
	require.Len(t, b, 6)
	assert.Equal(t, int16(1), int16(binary.LittleEndian.Uint16(b[0:])))
	assert.Equal(t, int16(-2), int16(binary.LittleEndian.Uint16(b[2:])))
	assert.Equal(t, int16(math.MaxInt16), int16(binary.LittleEndian.Uint16(b[4:])))
}

func writeWAV(t *testing.T, samples []int, channels, bitDepth int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, 8000, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: 8000, NumChannels: channels},
		SourceBitDepth: bitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}

func TestDecodeWAV(t *testing.T) {
	samples := []int{0, 1000, -1000, 32767, -32768, 5}
	path := writeWAV(t, samples, 2, 16)

	pcm, err := DecodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, pcm.Channels)
	assert.Equal(t, 8000, pcm.SampleRate)
	assert.Equal(t, 3, pcm.Frames())
	want := make([]int16, len(samples))
	for i, s := range samples {
		want[i] = int16(s)
	}
	assert.Equal(t, want, pcm.Samples)
}

func TestDecodeWAV_Invalid(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("definitely not a wav file")))
	assert.Error(t, err)
}

func TestDecodeFLAC_Invalid(t *testing.T) {
	_, err := DecodeFLAC(bytes.NewReader([]byte("fLaC but not really")))
	assert.Error(t, err)

	_, err = DecodeFLAC(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestDecodeFile_Errors(t *testing.T) {
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "clip.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS"), 0o644))
	_, err = DecodeFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestToInt16(t *testing.T) {
	tests := []struct {
		v        int32
		depth    int
		unsigned bool
		want     int16
	}{
		{128, 8, true, 0},
		{255, 8, true, 127 << 8},
		{0, 8, true, -128 << 8},
		{-1, 8, false, -256},
		{-12345, 16, false, -12345},
		{0x7fffff, 24, false, 0x7fff},
		{-0x800000, 24, false, -0x8000},
		{0x7fffffff, 32, false, 0x7fff},
	}
	for _, tt := range tests {
		got, err := toInt16(tt.v, tt.depth, tt.unsigned)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "toInt16(%d, %d, %v)", tt.v, tt.depth, tt.unsigned)
	}

	_, err := toInt16(0, 12, false)
	assert.Error(t, err)
}
