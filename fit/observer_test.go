package fit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogObserverWritesProbes(t *testing.T) {
	if LogObserver(nil) != nil {
		t.Fatal("LogObserver(nil) should be nil")
	}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	var rec Recorder
	got := SearchWith(identity, 37, Bounds{4, 40}, SearchOptions{
		Axis:     AxisHeight,
		Observer: Observers(&rec, LogObserver(logger), nil),
	})
	if got != 37 {
		t.Fatalf("SearchWith = %d, want 37", got)
	}

	out := buf.String()
	if n := strings.Count(out, "font-size:"); n != len(rec.Probes) {
		t.Errorf("logged %d measurements, recorded %d:\n%s", n, len(rec.Probes), out)
	}
	for _, p := range rec.Probes {
		if !strings.Contains(out, p.String()) {
			t.Errorf("log is missing %q:\n%s", p.String(), out)
		}
	}
}

func TestObserversCollapse(t *testing.T) {
	if Observers(nil, nil) != nil {
		t.Error("all-nil observers should collapse to nil")
	}
	var rec Recorder
	if o := Observers(nil, &rec); o != Observer(&rec) {
		t.Error("a single observer should be returned as is")
	}
}
