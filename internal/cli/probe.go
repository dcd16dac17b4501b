package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ByLCY/textfill/fit"
	"github.com/ByLCY/textfill/internal/config"
	"github.com/ByLCY/textfill/layout"
	canvasrenderer "github.com/ByLCY/textfill/renderer/canvas"
)

// probeOpts holds the flags of the probe command. Box sizes are CSS pixels.
type probeOpts struct {
	width      float64
	height     float64
	minFont    int
	maxFont    int
	widthOnly  bool
	font       string
	measure    string
	lineHeight string
}

func (c *CLI) probeCommand() *cobra.Command {
	opts := probeOpts{
		minFont: fit.DefaultOptions().MinFontPixels,
		maxFont: fit.DefaultOptions().MaxFontPixels,
		font:    "embed:go-regular",
		measure: config.MeasureCanvas,
	}

	cmd := &cobra.Command{
		Use:   "probe [text]",
		Short: "Find the largest font size for one string in a box of the given size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.width <= 0 || (opts.height <= 0 && !opts.widthOnly) {
				return errors.New("--width and --height must be positive")
			}
			return runProbe(cmd.Context(), cmd.OutOrStdout(), args[0], &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", 0, "box width in px")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "box height in px")
	cmd.Flags().IntVar(&opts.minFont, "min", opts.minFont, "minimum font size in px")
	cmd.Flags().IntVar(&opts.maxFont, "max", opts.maxFont, "maximum font size in px, <= 0 uses the box height")
	cmd.Flags().BoolVar(&opts.widthOnly, "width-only", false, "fit on width only, disabling wrapping")
	cmd.Flags().StringVar(&opts.font, "font", opts.font, "font src: embed:<name> or a file path")
	cmd.Flags().StringVar(&opts.measure, "measure", opts.measure, "measurement backend: canvas, ximage")
	cmd.Flags().StringVar(&opts.lineHeight, "line-height", "", "line height, factor (1.2) or length (18px)")

	return cmd
}

func runProbe(ctx context.Context, out io.Writer, text string, opts *probeOpts) error {
	logger := loggerFromContext(ctx)
	if opts.measure != config.MeasureCanvas && opts.measure != config.MeasureXImage {
		return fmt.Errorf("unknown measure backend %q", opts.measure)
	}

	ts := newTypesetter(opts.measure, ".", canvasrenderer.NewRenderer("."))
	box := layout.NewBox(layout.BoxSpec{
		Name:       "probe",
		Width:      opts.width * layout.PxToMm,
		Height:     opts.height * layout.PxToMm,
		Content:    text,
		Font:       layout.FontResource{Name: "probe", Src: opts.font},
		LineHeight: layout.ParseLineHeight(opts.lineHeight),
	}, ts)

	var rec fit.Recorder
	report := fit.Fill([]fit.Container{box}, fit.Options{
		MinFontPixels: opts.minFont,
		MaxFontPixels: opts.maxFont,
		WidthOnly:     opts.widthOnly,
		Observer:      &rec,
		Logger:        logger,
	})
	if err := box.Err(); err != nil {
		return fmt.Errorf("measure: %w", err)
	}

	printSummary(out, fmt.Sprintf("%gx%gpx", opts.width, opts.height), report)
	fmt.Fprintln(out, "  "+styleDim.Render(fmt.Sprintf("%d probes (height %d, width %d)",
		len(rec.Probes), rec.Calls(fit.AxisHeight), rec.Calls(fit.AxisWidth))))
	return nil
}
