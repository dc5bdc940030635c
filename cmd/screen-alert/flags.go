package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ironsheep/screen-text-alert/internal/config"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"text", "target_text"},
	{"interval-ms", "interval_ms"},
	{"region", "region"},
	{"case-sensitive", "case_sensitive"},
	{"min-confidence", "min_confidence"},
	{"need-hits", "need_hits"},
	{"cooldown-ms", "cooldown_ms"},
	{"lang", "lang"},
	{"psm", "psm"},
	{"oem", "oem"},
	{"tessdata", "tessdata_prefix"},
	{"scale", "scale"},
	{"auto-scale", "auto_scale"},
	{"binarize", "binarize"},
	{"threshold", "threshold"},
	{"invert", "invert"},
	{"sharpen", "sharpen"},
	{"contrast", "contrast"},
	{"beep-freq", "beep_freq_hz"},
	{"beep-ms", "beep_duration_ms"},
	{"sound", "sound_path"},
	{"notify", "notify_urls"},
	{"metrics-addr", "metrics_addr"},
	{"log-level", "log_level"},
	{"log-format", "log_format"},
	{"log-file", "log_file"},
	{"frame-file", "frame_file"},
}

// addConfigFlags registers the flags shared by watch and probe. Flag
// defaults only document the built-in values; viper defaults are
// authoritative.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./screen-alert.yaml or ~/.config/screen-alert/screen-alert.yaml)")

	fs.StringP("text", "t", "", "text to watch for")
	fs.Int("interval-ms", 2000, "minimum time between scans in milliseconds")
	fs.String("region", "", "capture region as left,top,width,height (default whole screen)")
	fs.Bool("case-sensitive", false, "match text case-sensitively")
	fs.Float64("min-confidence", 60, "minimum mean OCR confidence (0-100) for a match")
	fs.Int("need-hits", 2, "consecutive matching scans required before alerting")
	fs.Int("cooldown-ms", -1, "extra wait after an alert in milliseconds (-1: one interval, at least 1s)")

	fs.String("lang", "eng", "Tesseract language(s), joined with +")
	fs.Int("psm", 6, "Tesseract page segmentation mode (0-13)")
	fs.Int("oem", 3, "Tesseract OCR engine mode (0-3)")
	fs.String("tessdata", "", "directory containing *.traineddata files")

	fs.Float64("scale", 1.0, "resize factor applied before OCR")
	fs.Bool("auto-scale", false, "enlarge frames smaller than 2000px by 1.5 (overrides --scale)")
	fs.Bool("binarize", false, "convert to black and white before OCR")
	fs.Int("threshold", 180, "binarization threshold (0-255)")
	fs.Bool("invert", false, "invert intensities (light text on dark backgrounds)")
	fs.Bool("sharpen", false, "apply an unsharp mask before OCR")
	fs.Float64("contrast", 1.0, "contrast factor (1.0 = unchanged)")

	fs.Int("beep-freq", 1000, "alert tone frequency in Hz")
	fs.Int("beep-ms", 500, "alert tone duration in milliseconds")
	fs.String("sound", "", "WAV or FLAC file to play instead of the tone")
	fs.StringSlice("notify", nil, "shoutrrr notification URL (repeatable)")

	fs.String("metrics-addr", "", "serve Prometheus metrics on host:port")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("log-file", "", "also write logs to this file, rotated")
	fs.String("frame-file", "", "replay a still image instead of capturing the screen")
}

func bindConfigFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", fk.flag, err)
		}
	}
	return nil
}

// loadConfig merges flags, environment and config file for cmd.
func loadConfig(cmd *cobra.Command, requireTarget bool) (*config.Config, error) {
	v := config.NewViper()
	if err := bindConfigFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	if err := config.ReadFile(v, path); err != nil {
		return nil, &config.ConfigError{Field: "config", Reason: err.Error()}
	}

	if requireTarget {
		return config.Load(v)
	}
	return config.LoadInspect(v)
}
