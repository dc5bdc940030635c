package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/screen-text-alert/internal/match"
	"github.com/ironsheep/screen-text-alert/internal/ocr"
)

const selftestText = "Hello world!"

func newSelftestCmd() *cobra.Command {
	opts := ocr.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Check that the OCR engine can read rendered text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			rec, err := ocr.NewTesseract(opts)
			if err != nil {
				return fmt.Errorf("OCR engine unavailable: %w", err)
			}
			defer rec.Close()

			info := rec.Info()
			fmt.Fprintf(out, "OCR backend: %s\n", info.Backend)
			fmt.Fprintf(out, "Tesseract version: %s\n", info.Version)

			img := ocr.RenderText(selftestText, 4)
			res, err := rec.Recognize(cmd.Context(), img)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Recognized text: %q\n", res.FullText)

			outcome := match.Evaluate(res.FullText, "hello world", false, 0, res.Tokens)
			if !outcome.Matched {
				return errors.New("selftest failed: rendered text was not recognized")
			}
			fmt.Fprintln(out, "Selftest passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Language, "lang", opts.Language, "Tesseract language(s), joined with +")
	cmd.Flags().StringVar(&opts.TessdataPrefix, "tessdata", "", "directory containing *.traineddata files")
	return cmd
}
