// Package config loads and validates the watcher configuration.
//
// Values come from command line flags, SCREEN_ALERT_* environment variables
// and an optional YAML file, merged by viper in that order of precedence.
// Load validates every key and reports the first problem as a *ConfigError.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/screen-text-alert/internal/alert"
	"github.com/ironsheep/screen-text-alert/internal/capture"
	"github.com/ironsheep/screen-text-alert/internal/imaging"
	"github.com/ironsheep/screen-text-alert/internal/match"
	"github.com/ironsheep/screen-text-alert/internal/ocr"
)

const (
	// EnvPrefix prefixes environment variable overrides.
	EnvPrefix = "SCREEN_ALERT"

	// FileName is the config file looked up when none is given.
	FileName = "screen-alert"

	// AutoCooldown makes the post-alert wait follow the scan interval.
	AutoCooldown = -1

)

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Config is the full watcher configuration.
type Config struct {
	TargetText    string  `mapstructure:"target_text"`
	IntervalMS    int     `mapstructure:"interval_ms"`
	Region        string  `mapstructure:"region"`
	CaseSensitive bool    `mapstructure:"case_sensitive"`
	MinConfidence float64 `mapstructure:"min_confidence"`
	NeedHits      int     `mapstructure:"need_hits"`
	CooldownMS    int     `mapstructure:"cooldown_ms"`

	Lang           string `mapstructure:"lang"`
	PSM            int    `mapstructure:"psm"`
	OEM            int    `mapstructure:"oem"`
	TessdataPrefix string `mapstructure:"tessdata_prefix"`

	Scale     float64 `mapstructure:"scale"`
	AutoScale bool    `mapstructure:"auto_scale"`
	Binarize  bool    `mapstructure:"binarize"`
	Threshold int     `mapstructure:"threshold"`
	Invert    bool    `mapstructure:"invert"`
	Sharpen   bool    `mapstructure:"sharpen"`
	Contrast  float64 `mapstructure:"contrast"`

	BeepFreqHz     int      `mapstructure:"beep_freq_hz"`
	BeepDurationMS int      `mapstructure:"beep_duration_ms"`
	SoundPath      string   `mapstructure:"sound_path"`
	NotifyURLs     []string `mapstructure:"notify_urls"`

	MetricsAddr string `mapstructure:"metrics_addr"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	LogFile     string `mapstructure:"log_file"`
	FrameFile   string `mapstructure:"frame_file"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	imgDefaults := imaging.DefaultOptions()
	ocrDefaults := ocr.DefaultOptions()
	alertDefaults := alert.DefaultOptions()

	v.SetDefault("target_text", "")
	v.SetDefault("interval_ms", 2000)
	v.SetDefault("region", "")
	v.SetDefault("case_sensitive", false)
	v.SetDefault("min_confidence", 60.0)
	v.SetDefault("need_hits", 2)
	v.SetDefault("cooldown_ms", AutoCooldown)

	v.SetDefault("lang", ocrDefaults.Language)
	v.SetDefault("psm", ocrDefaults.PageSegMode)
	v.SetDefault("oem", ocrDefaults.EngineMode)
	v.SetDefault("tessdata_prefix", "")

	v.SetDefault("scale", imgDefaults.Scale)
	v.SetDefault("auto_scale", false)
	v.SetDefault("binarize", false)
	v.SetDefault("threshold", int(imgDefaults.Threshold))
	v.SetDefault("invert", false)
	v.SetDefault("sharpen", false)
	v.SetDefault("contrast", imgDefaults.Contrast)

	v.SetDefault("beep_freq_hz", alertDefaults.BeepFreqHz)
	v.SetDefault("beep_duration_ms", int(alertDefaults.BeepDuration/time.Millisecond))
	v.SetDefault("sound_path", "")
	v.SetDefault("notify_urls", []string{})

	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("frame_file", "")
}

// NewViper returns a viper instance with defaults and environment
// overrides configured.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads path into v. With an empty path the default locations are
// searched and a missing file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", FileName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	return load(v, true)
}

// LoadInspect is Load for commands that inspect a frame without watching
// for anything; target_text may be empty.
func LoadInspect(v *viper.Viper) (*Config, error) {
	return load(v, false)
}

func load(v *viper.Viper, requireTarget bool) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(requireTarget); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Lang = strings.TrimSpace(c.Lang)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	urls := c.NotifyURLs[:0]
	for _, u := range c.NotifyURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	c.NotifyURLs = urls
}

// Validate checks every key and returns the first *ConfigError found.
func (c *Config) Validate() error {
	return c.validate(true)
}

func (c *Config) validate(requireTarget bool) error {
	if requireTarget && c.TargetText == "" {
		return invalid("target_text", "must not be empty")
	}
	if c.IntervalMS <= 0 {
		return invalid("interval_ms", "must be > 0, got %d", c.IntervalMS)
	}
	if _, err := capture.ParseRegion(c.Region); err != nil {
		return invalid("region", "%v", err)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return invalid("min_confidence", "must be within 0-100, got %g", c.MinConfidence)
	}
	if c.NeedHits < 1 {
		return invalid("need_hits", "must be >= 1, got %d", c.NeedHits)
	}
	if c.CooldownMS < AutoCooldown {
		return invalid("cooldown_ms", "must be >= 0, or -1 for automatic, got %d", c.CooldownMS)
	}

	if c.Lang == "" {
		return invalid("lang", "must not be empty")
	}
	if c.PSM < 0 || c.PSM > 13 {
		return invalid("psm", "must be within 0-13, got %d", c.PSM)
	}
	if c.OEM < 0 || c.OEM > 3 {
		return invalid("oem", "must be within 0-3, got %d", c.OEM)
	}

	if !c.AutoScale && c.Scale <= 0 {
		return invalid("scale", "must be > 0, got %g", c.Scale)
	}
	if c.Threshold < 0 || c.Threshold > 255 {
		return invalid("threshold", "must be within 0-255, got %d", c.Threshold)
	}
	if c.Contrast <= 0 {
		return invalid("contrast", "must be > 0, got %g", c.Contrast)
	}

	if c.BeepFreqHz <= 0 {
		return invalid("beep_freq_hz", "must be > 0, got %d", c.BeepFreqHz)
	}
	if c.BeepDurationMS <= 0 {
		return invalid("beep_duration_ms", "must be > 0, got %d", c.BeepDurationMS)
	}

	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return invalid("metrics_addr", "must be host:port: %v", err)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log_level", "must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return invalid("log_format", "must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Interval returns the minimum time between tick starts.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

const minAutoCooldown = time.Second

// Cooldown returns the extra wait after an alert. AutoCooldown waits one
// interval, but at least minAutoCooldown.
func (c *Config) Cooldown() time.Duration {
	if c.CooldownMS == AutoCooldown {
		return max(minAutoCooldown, c.Interval())
	}
	return time.Duration(c.CooldownMS) * time.Millisecond
}

// CaptureRegion returns the parsed region, nil for the whole display.
func (c *Config) CaptureRegion() *capture.Region {
	r, _ := capture.ParseRegion(c.Region)
	return r
}

// ImagingOptions returns the preprocessing options.
func (c *Config) ImagingOptions() imaging.Options {
	return imaging.Options{
		Scale:     c.Scale,
		AutoScale: c.AutoScale,
		Contrast:  c.Contrast,
		Binarize:  c.Binarize,
		Threshold: uint8(c.Threshold),
		Invert:    c.Invert,
		Sharpen:   c.Sharpen,
	}
}

// OCROptions returns the recognizer options.
func (c *Config) OCROptions() ocr.Options {
	return ocr.Options{
		Language:       c.Lang,
		PageSegMode:    c.PSM,
		EngineMode:     c.OEM,
		TessdataPrefix: c.TessdataPrefix,
	}
}

// Criteria returns the match settings.
func (c *Config) Criteria() match.Criteria {
	return match.Criteria{
		Target:        c.TargetText,
		CaseSensitive: c.CaseSensitive,
		MinConfidence: c.MinConfidence,
	}
}

// AlertOptions returns the sound chain options.
func (c *Config) AlertOptions() alert.Options {
	return alert.Options{
		SoundPath:    c.SoundPath,
		BeepFreqHz:   c.BeepFreqHz,
		BeepDuration: time.Duration(c.BeepDurationMS) * time.Millisecond,
	}
}
