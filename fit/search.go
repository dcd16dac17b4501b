// Package fit finds the largest font size at which text fits a container.
//
// The search is a bisection over integer pixel sizes driven by a Measurer,
// a function that applies a candidate size to the text and reports the
// resulting extent on one axis. Height and width are searched independently
// and combined by taking the smaller result.
package fit

// Axis names the dimension a search measures.
type Axis int

const (
	AxisWidth Axis = iota
	AxisHeight
)

func (a Axis) String() string {
	switch a {
	case AxisHeight:
		return "Height"
	case AxisWidth:
		return "Width"
	default:
		return "Unknown"
	}
}

// Bounds is the closed range of candidate font sizes in pixels.
type Bounds struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Degenerate reports whether the range holds at most one candidate.
func (b Bounds) Degenerate() bool { return b.Min >= b.Max }

// Contains reports whether size lies inside the bounds.
func (b Bounds) Contains(size int) bool { return size >= b.Min && size <= b.Max }

// Measurer applies size to the text and returns its extent on one axis.
// It must be non-decreasing in size for the search to be meaningful.
type Measurer func(size int) float64

// SearchOptions carries the optional instrumentation of a search.
type SearchOptions struct {
	Axis     Axis
	Observer Observer
}

// Search returns the largest size in b whose measured extent does not
// exceed ceiling. When nothing fits it returns b.Min.
func Search(m Measurer, ceiling float64, b Bounds) int {
	return SearchWith(m, ceiling, b, SearchOptions{})
}

// SearchWith is Search with probe notifications.
func SearchWith(m Measurer, ceiling float64, b Bounds, opts SearchOptions) int {
	if b.Degenerate() {
		return b.Min
	}
	notify := func(size int, measured float64, lo, hi int, final bool) {
		if opts.Observer == nil {
			return
		}
		opts.Observer.Probe(Probe{
			Axis:     opts.Axis,
			Size:     size,
			Measured: measured,
			Ceiling:  ceiling,
			Lo:       lo,
			Hi:       hi,
			Final:    final,
		})
	}

	lo, hi := b.Min, b.Max
	for lo < hi-1 {
		// floor((lo+hi)/2) without overflow; hi > lo here
		mid := lo + (hi-lo)/2
		measured := m(mid)
		if measured <= ceiling {
			lo = mid
			notify(mid, measured, lo, hi, false)
			if measured == ceiling {
				break
			}
			continue
		}
		hi = mid
		notify(mid, measured, lo, hi, false)
	}

	// Truncation in the loop can leave hi itself unexplored.
	measured := m(hi)
	if measured <= ceiling {
		lo = hi
	}
	notify(hi, measured, lo, hi, true)
	return lo
}

// Combine merges the per-axis results into the size applied to the text.
func Combine(height, width int, widthOnly bool) int {
	if widthOnly {
		return width
	}
	return min(height, width)
}
