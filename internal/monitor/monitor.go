// Package monitor runs the capture, recognise and alert loop.
//
// Each tick captures a frame, preprocesses it, runs OCR, evaluates the text
// against the target and feeds the outcome into a debounce counter. When the
// counter fires the alert dispatcher is invoked. Ticks start at most once
// per interval; a tick that overruns the interval is followed immediately
// by the next one.
//
// Capture and recognition failures never stop the loop. They are logged,
// count as a non-matching tick and reset the streak.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ironsheep/screen-text-alert/internal/alert"
	"github.com/ironsheep/screen-text-alert/internal/capture"
	"github.com/ironsheep/screen-text-alert/internal/debounce"
	"github.com/ironsheep/screen-text-alert/internal/imaging"
	"github.com/ironsheep/screen-text-alert/internal/logging"
	"github.com/ironsheep/screen-text-alert/internal/match"
	"github.com/ironsheep/screen-text-alert/internal/metrics"
	"github.com/ironsheep/screen-text-alert/internal/ocr"
)

// Pipeline stages reported in StageError.
const (
	StageCapture   = "capture"
	StageRecognize = "recognize"
)

// ErrAlreadyRunning is returned when Run is called on a running loop.
var ErrAlreadyRunning = errors.New("monitor loop is already running")

// StageError reports which pipeline stage failed during a tick.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Alerter raises an alert for recognised text.
type Alerter interface {
	Dispatch(ctx context.Context, text string) alert.Step
}

// Config holds everything a Loop needs.
type Config struct {
	Source     capture.Source
	Preprocess imaging.Options
	Recognizer ocr.Recognizer
	Criteria   match.Criteria
	NeedHits   int
	Interval   time.Duration
	Cooldown   time.Duration
	Alerter    Alerter

	// Optional.
	Clock   Clock
	Metrics *metrics.MonitorMetrics
	Logger  *slog.Logger
}

// TickResult describes one tick.
type TickResult struct {
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration_ns"`

	Text    string        `json:"text"`
	Tokens  []ocr.Token   `json:"tokens"`
	Outcome match.Outcome `json:"outcome"`

	// Streak is the counter value after the tick; it is zero after an alert.
	Streak    int    `json:"streak"`
	Alerted   bool   `json:"alerted"`
	AlertStep string `json:"alert_step,omitempty"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Loop is a configured monitor loop.
type Loop struct {
	source     capture.Source
	preprocess imaging.Options
	recognizer ocr.Recognizer
	criteria   match.Criteria
	counter    *debounce.Counter
	interval   time.Duration
	cooldown   time.Duration
	alerter    Alerter
	clock      Clock
	metrics    *metrics.MonitorMetrics
	logger     *slog.Logger

	running atomic.Bool
}

// New validates cfg and creates a loop.
func New(cfg Config) (*Loop, error) {
	if cfg.Source == nil {
		return nil, errors.New("monitor: source is required")
	}
	if cfg.Recognizer == nil {
		return nil, errors.New("monitor: recognizer is required")
	}
	if cfg.Alerter == nil {
		return nil, errors.New("monitor: alerter is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("monitor: interval must be > 0, got %v", cfg.Interval)
	}
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("monitor: cooldown must be >= 0, got %v", cfg.Cooldown)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = RealClock{}
	}

	return &Loop{
		source:     cfg.Source,
		preprocess: cfg.Preprocess,
		recognizer: cfg.Recognizer,
		criteria:   cfg.Criteria,
		counter:    debounce.New(cfg.NeedHits),
		interval:   cfg.Interval,
		cooldown:   cfg.Cooldown,
		alerter:    cfg.Alerter,
		clock:      clock,
		metrics:    cfg.Metrics,
		logger:     logging.ForComponent(cfg.Logger, "monitor"),
	}, nil
}

// Running reports whether Run is active.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Run ticks until ctx is cancelled and then returns nil. Cancellation is
// observed before a tick starts and while sleeping between ticks; a tick in
// progress always completes.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	l.logger.Info("monitor started",
		"target", l.criteria.Target,
		"interval", l.interval,
		"need_hits", l.counter.Need(),
		"min_confidence", l.criteria.MinConfidence)
	defer l.logger.Info("monitor stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		start := l.clock.Now()
		res := l.Tick(context.WithoutCancel(ctx))

		wait := l.interval - l.clock.Now().Sub(start)
		if res.Alerted {
			wait += l.cooldown
		}
		if wait > 0 {
			if err := l.clock.Sleep(ctx, wait); err != nil {
				return nil
			}
		}
	}
}

// Tick runs a single capture to alert cycle.
func (l *Loop) Tick(ctx context.Context) TickResult {
	start := l.clock.Now()
	res := TickResult{Start: start}

	hit := false
	result, err := l.recognize(ctx)
	if err != nil {
		res.Err = err
		res.Error = err.Error()
	} else {
		res.Text = result.FullText
		res.Tokens = result.Tokens
		res.Outcome = l.criteria.Evaluate(result)
		hit = res.Outcome.Matched
	}

	fired := l.counter.Observe(hit)
	res.Streak = l.counter.Hits()
	l.metrics.SetStreak(res.Streak)

	switch {
	case res.Err != nil:
		var stageErr *StageError
		stage := "unknown"
		if errors.As(res.Err, &stageErr) {
			stage = stageErr.Stage
		}
		l.logger.Warn("tick failed", "stage", stage, "error", res.Err)
		l.metrics.RecordTickError(stage)
		l.metrics.RecordTick(metrics.ResultError)
	case hit:
		l.metrics.RecordTick(metrics.ResultHit)
	default:
		l.metrics.RecordTick(metrics.ResultMiss)
	}

	if hit {
		l.logger.Debug("target text matched",
			"streak", res.Streak,
			"average_confidence", confidenceAttr(res.Outcome.AverageConfidence))
	}

	if fired {
		l.logger.Info("target text detected",
			"target", l.criteria.Target,
			"text", res.Text,
			"average_confidence", confidenceAttr(res.Outcome.AverageConfidence))
		step := l.alerter.Dispatch(ctx, res.Text)
		res.Alerted = true
		res.AlertStep = step.String()
		l.metrics.RecordAlert(res.AlertStep)
	}

	res.Duration = l.clock.Now().Sub(start)
	l.metrics.ObserveTick(res.Duration.Seconds())
	return res
}

func (l *Loop) recognize(ctx context.Context) (*ocr.Result, error) {
	frame, err := l.source.Capture(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageCapture, Err: err}
	}

	gray := imaging.Preprocess(frame, l.preprocess)

	recStart := l.clock.Now()
	result, err := l.recognizer.Recognize(ctx, gray)
	l.metrics.ObserveRecognition(l.clock.Now().Sub(recStart).Seconds())
	if err != nil {
		return nil, &StageError{Stage: StageRecognize, Err: err}
	}
	return result, nil
}

func confidenceAttr(avg *float64) any {
	if avg == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *avg)
}
