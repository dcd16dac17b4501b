package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"go.uber.org/multierr"
)

var (
	// ErrUnfit is returned when the final size still overflows its container.
	ErrUnfit = errors.New("text does not fit its container")
	// ErrHidden is returned for text that is not rendered at all.
	ErrHidden = errors.New("text is not visible")
	// ErrNoText is returned for containers without a text element to resize.
	ErrNoText = errors.New("container has no text element")
)

// UnfitError carries the extents measured at the final size.
type UnfitError struct {
	Size      int
	Width     float64
	MaxWidth  float64
	Height    float64
	MaxHeight float64
}

func (e *UnfitError) Error() string {
	return fmt.Sprintf("%v at %dpx (width %g / %g, height %g / %g)",
		ErrUnfit, e.Size, e.Width, e.MaxWidth, e.Height, e.MaxHeight)
}

func (e *UnfitError) Unwrap() error { return ErrUnfit }

// Text is the element whose font size is adjusted. Width and Height report
// the rendered extent at the current font size, in pixels.
type Text interface {
	Content() string
	Visible() bool
	FontSize() float64
	LineHeight() float64
	SetFontSize(px float64)
	SetNoWrap(nowrap bool)
	Width() float64
	Height() float64
}

// Container is the fixed-size box the text must fit into.
type Container interface {
	Name() string
	Width() float64
	Height() float64
	Text() (Text, bool)
	SetLineHeight(px float64)
}

// Options controls a fill pass. The zero value searches [0, height ceiling];
// use DefaultOptions for the usual 4..40px range.
type Options struct {
	MinFontPixels int
	// MaxFontPixels <= 0 means the height ceiling is used as upper bound.
	MaxFontPixels    int
	WidthOnly        bool
	ExplicitWidth    float64
	ExplicitHeight   float64
	ChangeLineHeight bool
	AllowOverflow    bool

	Observer Observer
	Logger   *log.Logger

	Success  func(c Container)
	Fail     func(c Container, err error)
	Complete func(r *Report)
}

// DefaultOptions returns the 4..40px two-axis configuration.
func DefaultOptions() Options {
	return Options{MinFontPixels: 4, MaxFontPixels: 40}
}

// Bounds resolves the search range for a container whose height ceiling
// is maxHeight.
func (o Options) Bounds(maxHeight float64) Bounds {
	b := Bounds{Min: o.MinFontPixels, Max: o.MaxFontPixels}
	if b.Max <= 0 {
		b.Max = int(math.Floor(maxHeight))
	}
	return b
}

// Outcome is the result for one container.
type Outcome struct {
	Name       string  `json:"name" yaml:"name"`
	OldSize    float64 `json:"oldSize" yaml:"oldSize"`
	Bounds     Bounds  `json:"bounds" yaml:"bounds"`
	HeightSize int     `json:"heightSize,omitempty" yaml:"heightSize,omitempty"`
	WidthSize  int     `json:"widthSize" yaml:"widthSize"`
	Size       int     `json:"size" yaml:"size"`
	Width      float64 `json:"width" yaml:"width"`
	Height     float64 `json:"height" yaml:"height"`
	MaxWidth   float64 `json:"maxWidth" yaml:"maxWidth"`
	MaxHeight  float64 `json:"maxHeight" yaml:"maxHeight"`
	Err        error   `json:"-" yaml:"-"`
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the container was resized successfully.
func (o Outcome) OK() bool { return o.Err == nil }

// Report collects the outcomes of a fill pass in container order.
type Report struct {
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}

// Err combines every failure of the pass, or returns nil.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var err error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", o.Name, o.Err))
		}
	}
	return err
}

func (r *Report) Succeeded() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	if r == nil {
		return 0
	}
	return len(r.Outcomes) - r.Succeeded()
}

// Lookup returns the outcome recorded for the named container.
func (r *Report) Lookup(name string) (Outcome, bool) {
	if r == nil {
		return Outcome{}, false
	}
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Fill resizes the text of every container in turn. A failing container is
// reverted and reported; it never stops the rest of the batch.
func Fill(containers []Container, opts Options) *Report {
	report := &Report{Outcomes: make([]Outcome, 0, len(containers))}
	logDebug(opts.Logger, "start", "containers", len(containers))
	for _, c := range containers {
		if c == nil {
			continue
		}
		out := fillOne(c, opts)
		if out.Err != nil {
			out.Error = out.Err.Error()
			if opts.Fail != nil {
				opts.Fail(c, out.Err)
			}
		} else if opts.Success != nil {
			opts.Success(c)
		}
		report.Outcomes = append(report.Outcomes, out)
	}
	if opts.Complete != nil {
		opts.Complete(report)
	}
	logDebug(opts.Logger, "end", "ok", report.Succeeded(), "failed", report.Failed())
	return report
}

func fillOne(c Container, opts Options) Outcome {
	out := Outcome{Name: c.Name()}
	text, ok := c.Text()
	if !ok || text == nil {
		out.Err = ErrNoText
		logDebug(opts.Logger, "failure: no inner text", "container", out.Name)
		return out
	}
	if !text.Visible() {
		out.Err = ErrHidden
		logDebug(opts.Logger, "failure: inner element not visible", "container", out.Name)
		return out
	}

	maxHeight := opts.ExplicitHeight
	if maxHeight <= 0 {
		maxHeight = c.Height()
	}
	maxWidth := opts.ExplicitWidth
	if maxWidth <= 0 {
		maxWidth = c.Width()
	}
	out.MaxWidth, out.MaxHeight = maxWidth, maxHeight

	oldSize := text.FontSize()
	oldLineHeight := text.LineHeight()
	ratio := 0.0
	if oldSize > 0 {
		ratio = oldLineHeight / oldSize
	}
	out.OldSize = oldSize
	out.Bounds = opts.Bounds(maxHeight)

	logDebug(opts.Logger, "inner text", "container", out.Name, "content", text.Content())
	logDebug(opts.Logger, "maximum sizes", "container", out.Name, "height", maxHeight, "width", maxWidth)

	obs := Observers(opts.Observer, LogObserver(opts.Logger))
	if !opts.WidthOnly {
		out.HeightSize = SearchWith(func(size int) float64 {
			text.SetFontSize(float64(size))
			return text.Height()
		}, maxHeight, out.Bounds, SearchOptions{Axis: AxisHeight, Observer: obs})
	}

	// Wrapping would turn the width axis into a height problem.
	if opts.WidthOnly {
		text.SetNoWrap(true)
	}
	out.WidthSize = SearchWith(func(size int) float64 {
		text.SetFontSize(float64(size))
		return text.Width()
	}, maxWidth, out.Bounds, SearchOptions{Axis: AxisWidth, Observer: obs})

	out.Size = Combine(out.HeightSize, out.WidthSize, opts.WidthOnly)
	text.SetFontSize(float64(out.Size))
	if opts.ChangeLineHeight && ratio > 0 {
		c.SetLineHeight(ratio * float64(out.Size))
	}

	out.Width, out.Height = text.Width(), text.Height()
	overflow := out.Width > maxWidth || (!opts.WidthOnly && out.Height > maxHeight)
	if overflow && !opts.AllowOverflow {
		text.SetFontSize(oldSize)
		if opts.WidthOnly {
			text.SetNoWrap(false)
		}
		if opts.ChangeLineHeight && ratio > 0 {
			c.SetLineHeight(oldLineHeight)
		}
		out.Err = &UnfitError{
			Size:      out.Size,
			Width:     out.Width,
			MaxWidth:  maxWidth,
			Height:    out.Height,
			MaxHeight: maxHeight,
		}
		logDebug(opts.Logger, "failure", "container", out.Name, "err", out.Err)
		return out
	}

	logDebug(opts.Logger, "finished", "container", out.Name, "old", oldSize, "new", out.Size)
	return out
}

func logDebug(logger *log.Logger, msg string, keyvals ...any) {
	if logger == nil {
		return
	}
	logger.Debug(msg, keyvals...)
}
