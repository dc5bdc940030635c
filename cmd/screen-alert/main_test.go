package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/screen-text-alert/internal/config"
	"github.com/ironsheep/screen-text-alert/internal/match"
	"github.com/ironsheep/screen-text-alert/internal/ocr"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))

	cfgErr := fmt.Errorf("startup: %w", &config.ConfigError{Field: "psm", Reason: "out of range"})
	assert.Equal(t, exitConfig, exitCode(cfgErr))
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "screen-alert "+Version)
	assert.Contains(t, out.String(), "Git commit:")
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SCREEN_ALERT_TARGET_TEXT", "from env")
	t.Setenv("SCREEN_ALERT_PSM", "11")

	cmd := newWatchCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--text", "from flag", "--need-hits", "5", "--notify", "logger://"}))

	cfg, err := loadConfig(cmd, true)
	require.NoError(t, err)
	assert.Equal(t, "from flag", cfg.TargetText)
	assert.Equal(t, 5, cfg.NeedHits)
	assert.Equal(t, 11, cfg.PSM, "environment applies where no flag is given")
	assert.Equal(t, []string{"logger://"}, cfg.NotifyURLs)
	assert.Equal(t, 60.0, cfg.MinConfidence)
}

func TestLoadConfig_InvalidIsConfigError(t *testing.T) {
	cmd := newWatchCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--text", "x", "--psm", "42"}))

	_, err := loadConfig(cmd, true)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "psm", cfgErr.Field)
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestLoadConfig_MissingConfigFile(t *testing.T) {
	cmd := newWatchCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--text", "x", "--config", t.TempDir() + "/nope.yaml"}))

	_, err := loadConfig(cmd, true)
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "config", cfgErr.Field)
}

func TestFlagKeysAreRegistered(t *testing.T) {
	cmd := newWatchCmd()
	for _, fk := range flagKeys {
		assert.NotNil(t, cmd.Flags().Lookup(fk.flag), "flag --%s", fk.flag)
	}
}

func writeRenderedFrame(t *testing.T, text string) string {
	t.Helper()
	rec, err := ocr.NewTesseract(ocr.DefaultOptions())
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	rec.Close()

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, ocr.RenderText(text, 4)))
	return path
}

func runImageScan(t *testing.T, args ...string) probeReport {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{"probe", "--log-level", "error"}, args...))
	require.NoError(t, root.Execute())

	var report probeReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report), out.String())
	return report
}

func TestImageScan_NoTargetNeverMatches(t *testing.T) {
	t.Setenv("SCREEN_ALERT_TARGET_TEXT", "")
	path := writeRenderedFrame(t, "Hello world!")

	report := runImageScan(t, "--image", path)
	assert.NotEmpty(t, report.Tick.Text)
	assert.False(t, report.Tick.Outcome.Matched)
	assert.Equal(t, match.ReasonNoTarget, report.Tick.Outcome.Reason)
	assert.False(t, report.Tick.Alerted)
}

func TestImageScan_TargetMatches(t *testing.T) {
	path := writeRenderedFrame(t, "Hello world!")

	report := runImageScan(t, "--image", path, "--text", "hello", "--min-confidence", "0")
	assert.True(t, report.Tick.Outcome.Matched, "recognised %q", report.Tick.Text)
	assert.True(t, report.Tick.Alerted)
	assert.Empty(t, report.Tick.AlertStep)
}
