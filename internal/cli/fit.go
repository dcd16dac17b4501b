package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/textfill/dsl"
	"github.com/ByLCY/textfill/fit"
	"github.com/ByLCY/textfill/internal/config"
	"github.com/ByLCY/textfill/layout"
	"github.com/ByLCY/textfill/renderer"
	canvasrenderer "github.com/ByLCY/textfill/renderer/canvas"
	"github.com/ByLCY/textfill/renderer/ximage"
)

// fitOpts holds the command-line flags for the fit command. Flags that are
// not set leave the config file value in place.
type fitOpts struct {
	output  string // output file, defaults to the input name with the format's extension
	format  string // pdf or svg
	data    string // JSON file used for ${...} interpolation
	config  string // textfill.toml path
	report  string // fit report, .json or .yaml
	debug   string // layout result as JSON
	measure string // canvas or ximage
	outline bool   // outline every box
	strict  bool   // fail when any box does not fit

	minFont       int
	maxFont       int
	widthOnly     bool
	allowOverflow bool
}

func (c *CLI) fitCommand() *cobra.Command {
	var opts fitOpts

	cmd := &cobra.Command{
		Use:   "fit [file]",
		Short: "Fit the text boxes of a document and render it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.config, args[0])
			if err != nil {
				return err
			}
			applyFitFlags(cmd, &cfg, &opts)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runFit(cmd.Context(), cmd.OutOrStdout(), args[0], cfg, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf (default), svg")
	cmd.Flags().StringVar(&opts.data, "data", "", "JSON data for ${path} interpolation")
	cmd.Flags().StringVar(&opts.config, "config", "", "config file (default: "+config.FileName+" next to the input)")
	cmd.Flags().StringVar(&opts.report, "report", "", "write the fit report (.json, .yaml)")
	cmd.Flags().StringVar(&opts.debug, "debug", "", "write the layout result as JSON")
	cmd.Flags().StringVar(&opts.measure, "measure", "", "measurement backend: canvas (default), ximage")
	cmd.Flags().BoolVar(&opts.outline, "outline", false, "outline boxes, failed ones in red")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error when any box does not fit")
	cmd.Flags().IntVar(&opts.minFont, "min", 0, "minimum font size in px")
	cmd.Flags().IntVar(&opts.maxFont, "max", 0, "maximum font size in px, <= 0 uses the box height")
	cmd.Flags().BoolVar(&opts.widthOnly, "width-only", false, "fit on width only, disabling wrapping")
	cmd.Flags().BoolVar(&opts.allowOverflow, "allow-overflow", false, "keep the computed size even if the text overflows")

	return cmd
}

// loadConfig reads an explicit config file, or the optional one next to input.
func loadConfig(explicit, input string) (config.Config, error) {
	if explicit != "" {
		return config.Load(explicit)
	}
	return config.LoadOptional(filepath.Join(filepath.Dir(input), config.FileName))
}

func applyFitFlags(cmd *cobra.Command, cfg *config.Config, opts *fitOpts) {
	flags := cmd.Flags()
	if flags.Changed("min") {
		cfg.Fit.MinFont = opts.minFont
	}
	if flags.Changed("max") {
		cfg.Fit.MaxFont = opts.maxFont
	}
	if flags.Changed("width-only") {
		cfg.Fit.WidthOnly = opts.widthOnly
	}
	if flags.Changed("allow-overflow") {
		cfg.Fit.AllowOverflow = opts.allowOverflow
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.measure != "" {
		cfg.Output.Measure = opts.measure
	}
	if flags.Changed("outline") {
		cfg.Output.Outline = opts.outline
	}
	if opts.report != "" {
		cfg.Output.Report = opts.report
	}
}

func runFit(ctx context.Context, out io.Writer, input string, cfg config.Config, opts *fitOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	doc, err := parseDocument(input)
	if err != nil {
		return err
	}
	data, err := loadData(opts.data)
	if err != nil {
		return err
	}

	format, err := renderer.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(input)
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: baseDir,
		Format:  format,
		Outline: cfg.Output.Outline,
	})
	ts := newTypesetter(cfg.Output.Measure, baseDir, r)

	fitOptions := cfg.FitOptions()
	fitOptions.Logger = logger
	fitOptions.Fail = func(c fit.Container, err error) {
		logger.Warn("box does not fit", "box", c.Name(), "err", err)
	}

	logger.Debug("building layout", "file", input, "measure", cfg.Output.Measure, "min", fitOptions.MinFontPixels, "max", fitOptions.MaxFontPixels)
	res, err := layout.Build(doc, data, layout.BuildOptions{Typesetter: ts, Fit: fitOptions})
	if err != nil {
		return fmt.Errorf("layout %s: %w", input, err)
	}

	var written []string
	if opts.debug != "" {
		if err := layout.WriteDebugJSON(res, opts.debug); err != nil {
			return fmt.Errorf("write debug json: %w", err)
		}
		written = append(written, opts.debug)
	}
	if cfg.Output.Report != "" {
		if err := layout.WriteReport(res.Report, cfg.Output.Report); err != nil {
			return err
		}
		written = append(written, cfg.Output.Report)
	}

	rendered, err := r.Render(res)
	if err != nil {
		return fmt.Errorf("render %s: %w", input, err)
	}
	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + format.Ext()
	}
	if err := os.WriteFile(output, rendered, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	written = append(written, output)

	printSummary(out, filepath.Base(input), res.Report)
	for _, path := range written {
		printFile(out, path)
	}
	prog.done(fmt.Sprintf("Fitted %d boxes", len(res.Report.Outcomes)))

	if opts.strict && res.Report.Failed() > 0 {
		return fmt.Errorf("%d box(es) did not fit: %w", res.Report.Failed(), res.Report.Err())
	}
	return nil
}

func newTypesetter(measure, baseDir string, r *canvasrenderer.Renderer) layout.Typesetter {
	if measure == config.MeasureXImage {
		return ximage.New(baseDir)
	}
	return r
}

func parseDocument(path string) (*dsl.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := dsl.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func loadData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data %s: %w", path, err)
	}
	return data, nil
}
