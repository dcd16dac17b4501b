package fit

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Probe describes a single measurement taken during a search.
// Lo and Hi are the working range after the probe was accounted for.
type Probe struct {
	Axis     Axis
	Size     int
	Measured float64
	Ceiling  float64
	Lo       int
	Hi       int
	Final    bool // the post-loop probe of the upper bound
}

// Observer is notified of every probe. It must not influence the search.
type Observer interface {
	Probe(p Probe)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(p Probe)

func (f ObserverFunc) Probe(p Probe) { f(p) }

// String renders the probe the way debug output prints it, e.g.
// "Height { font-size: 18, measured: 36 / 37, lo: 18px, hi: 19px }".
func (p Probe) String() string {
	prefix := p.Axis.String()
	if p.Final {
		prefix += "*"
	}
	return fmt.Sprintf("%s { font-size: %d, measured: %g%s%g, lo: %dpx, hi: %dpx }",
		prefix, p.Size, p.Measured, marker(p.Measured, p.Ceiling), p.Ceiling, p.Lo, p.Hi)
}

func marker(v, ceiling float64) string {
	switch {
	case v > ceiling:
		return " > "
	case v == ceiling:
		return " = "
	default:
		return " / "
	}
}

// LogObserver writes every probe to logger at debug level, one Probe.String
// line per measurement.
func LogObserver(logger *log.Logger) Observer {
	if logger == nil {
		return nil
	}
	return ObserverFunc(func(p Probe) {
		logger.Debug(p.String())
	})
}

// Recorder keeps every probe it sees, in order.
type Recorder struct {
	Probes []Probe
}

func (r *Recorder) Probe(p Probe) { r.Probes = append(r.Probes, p) }

// Calls returns the number of measurements taken on axis.
func (r *Recorder) Calls(axis Axis) int {
	n := 0
	for _, p := range r.Probes {
		if p.Axis == axis {
			n++
		}
	}
	return n
}

type multiObserver []Observer

func (m multiObserver) Probe(p Probe) {
	for _, o := range m {
		o.Probe(p)
	}
}

// Observers fans probes out to every non-nil observer.
func Observers(obs ...Observer) Observer {
	var out multiObserver
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}
