package main

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ironsheep/screen-text-alert/internal/alert"
	"github.com/ironsheep/screen-text-alert/internal/capture"
	"github.com/ironsheep/screen-text-alert/internal/config"
	"github.com/ironsheep/screen-text-alert/internal/imaging"
	"github.com/ironsheep/screen-text-alert/internal/logging"
	"github.com/ironsheep/screen-text-alert/internal/metrics"
	"github.com/ironsheep/screen-text-alert/internal/monitor"
	"github.com/ironsheep/screen-text-alert/internal/ocr"
)

// app holds the components built from a configuration.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	recognizer *ocr.Tesseract
	source     capture.Source
	player     alert.Player
	dispatcher *alert.Dispatcher
	registry   *prometheus.Registry
	metrics    *metrics.MonitorMetrics
	loop       *monitor.Loop

	closers []io.Closer
}

type boundedSource interface {
	capture.Source
	Bounds() (image.Rectangle, error)
}

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, nil, &config.ConfigError{Field: "log", Reason: err.Error()}
	}
	return logger, closer, nil
}

// newApp wires every component. alerter overrides the dispatcher when set.
func newApp(cfg *config.Config, alerter monitor.Alerter) (*app, error) {
	logger, logCloser, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	if err := a.build(alerter); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(alerter monitor.Alerter) error {
	cfg := a.cfg

	src, err := a.newSource()
	if err != nil {
		return err
	}
	a.source = src

	rec, err := ocr.NewTesseract(cfg.OCROptions())
	if err != nil {
		return fmt.Errorf("failed to start OCR engine: %w", err)
	}
	a.recognizer = rec
	a.closers = append(a.closers, rec)
	logging.ForComponent(a.logger, "ocr").Info("OCR engine ready", "version", rec.Version(), "lang", cfg.Lang)

	if alerter == nil {
		var notifier alert.Notifier
		if len(cfg.NotifyURLs) > 0 {
			n, err := alert.NewShoutrrrNotifier(cfg.NotifyURLs, alert.DefaultNotifyTimeout)
			if err != nil {
				return &config.ConfigError{Field: "notify_urls", Reason: err.Error()}
			}
			notifier = n
		}
		a.player = alert.NewPlayer(a.logger)
		if c, ok := a.player.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
		a.dispatcher = alert.NewDispatcher(cfg.AlertOptions(), a.player, notifier, os.Stderr, a.logger)
		alerter = a.dispatcher
	}

	a.registry = prometheus.NewRegistry()
	a.metrics, err = metrics.NewMonitorMetrics(a.registry)
	if err != nil {
		return err
	}

	a.loop, err = monitor.New(monitor.Config{
		Source:     a.source,
		Preprocess: cfg.ImagingOptions(),
		Recognizer: a.recognizer,
		Criteria:   cfg.Criteria(),
		NeedHits:   cfg.NeedHits,
		Interval:   cfg.Interval(),
		Cooldown:   cfg.Cooldown(),
		Alerter:    alerter,
		Metrics:    a.metrics,
		Logger:     a.logger,
	})
	return err
}

// newSource picks the frame source and checks that the preprocessing
// options work for its frame size.
func (a *app) newSource() (capture.Source, error) {
	cfg := a.cfg
	region := cfg.CaptureRegion()

	var src boundedSource
	if cfg.FrameFile != "" {
		src = capture.NewFileSource(cfg.FrameFile, region, nil)
	} else {
		src = capture.NewScreenSource(region)
	}

	bounds, err := src.Bounds()
	if err != nil {
		a.logger.Warn("cannot determine frame size, skipping size check", "error", err)
		return src, nil
	}
	if err := imaging.ValidateOptions(cfg.ImagingOptions(), bounds.Dx(), bounds.Dy()); err != nil {
		return nil, &config.ConfigError{Field: "scale", Reason: err.Error()}
	}
	return src, nil
}

// Close releases resources in reverse order of creation. Sound file
// playback still in progress is stopped, not awaited.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
