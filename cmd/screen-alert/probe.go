package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ironsheep/screen-text-alert/internal/alert"
	"github.com/ironsheep/screen-text-alert/internal/monitor"
	"github.com/ironsheep/screen-text-alert/internal/ocr"
)

// probeReport is printed by the probe command.
type probeReport struct {
	Image  string             `json:"image"`
	Engine ocr.Info           `json:"engine"`
	Tick   monitor.TickResult `json:"tick"`
}

// silentAlerter records that an alert would have fired.
type silentAlerter struct{}

func (silentAlerter) Dispatch(context.Context, string) alert.Step { return alert.StepConsole }

func newProbeCmd() *cobra.Command {
	var play bool

	cmd := &cobra.Command{
		Use:   "probe --image FILE [--text TEXT]",
		Short: "Run one scan over an image file and print the result as JSON",
		Long: `probe runs a single capture, preprocess, OCR and match cycle over a still
image, using the same configuration as watch, and prints the recognised
tokens together with the match outcome. It is the quickest way to tune
preprocessing and confidence settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			image, _ := cmd.Flags().GetString("image")
			if image == "" {
				return errors.New("--image is required")
			}
			if err := cmd.Flags().Set("frame-file", image); err != nil {
				return err
			}
			if !cmd.Flags().Changed("need-hits") {
				_ = cmd.Flags().Set("need-hits", "1")
			}

			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}

			var alerter monitor.Alerter = silentAlerter{}
			if play {
				alerter = nil
			}
			a, err := newApp(cfg, alerter)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.loop.Tick(cmd.Context())
			if !play {
				res.AlertStep = ""
			} else if a.dispatcher != nil {
				a.dispatcher.Wait()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(probeReport{Image: image, Engine: a.recognizer.Info(), Tick: res}); err != nil {
				return err
			}
			return res.Err
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().String("image", "", "image file to scan (required)")
	cmd.Flags().BoolVar(&play, "play", false, "raise the real alert when the target matches")
	return cmd
}
