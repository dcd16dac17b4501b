package ximage

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/textfill/dsl"
	"github.com/ByLCY/textfill/fit"
	"github.com/ByLCY/textfill/layout"
	canvasrenderer "github.com/ByLCY/textfill/renderer/canvas"
)

var body = layout.FontResource{Name: "Body", Src: "embed:go-regular"}

func TestLayoutLinesWraps(t *testing.T) {
	ts := New("")
	size := 12 * layout.PtToMm
	lines, err := ts.LayoutLines("hello world again", 15, body, size, size*1.2, "anywhere")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d lines", len(lines))
	}
	for i, ln := range lines {
		if ln.Width > 15 {
			t.Fatalf("line %d exceeds width: %g", i, ln.Width)
		}
		if ln.Height <= 0 {
			t.Fatalf("line %d has no height", i)
		}
		if i == 0 && ln.GapBefore != 0 {
			t.Fatalf("first line must not have a gap")
		}
	}

	single, err := ts.LayoutLines("hello world again", 15, body, size, size*1.2, "nowrap")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(single) != 1 || single[0].Content != "hello world again" {
		t.Fatalf("nowrap should keep one line: %+v", single)
	}
}

func TestWidthScalesWithSize(t *testing.T) {
	ts := New("")
	prev := 0.0
	for _, pt := range []float64{6, 12, 24, 48} {
		size := pt * layout.PtToMm
		lines, err := ts.LayoutLines("Typeset", 1e6, body, size, size, "nowrap")
		if err != nil {
			t.Fatalf("LayoutLines error: %v", err)
		}
		if lines[0].Width <= prev {
			t.Fatalf("width should grow with size: %gpt -> %g", pt, lines[0].Width)
		}
		prev = lines[0].Width
	}
}

// TestAgreesWithCanvas 两个测量后端使用同一字体时宽度应基本一致。
func TestAgreesWithCanvas(t *testing.T) {
	ts := New("")
	cv := canvasrenderer.NewRenderer("")
	size := 14 * layout.PtToMm
	for _, text := range []string{"Hello, World", "The quick brown fox", "0123456789"} {
		a, err := ts.LayoutLines(text, 1e6, body, size, size, "nowrap")
		if err != nil {
			t.Fatalf("ximage: %v", err)
		}
		b, err := cv.LayoutLines(text, 1e6, body, size, size, "nowrap")
		if err != nil {
			t.Fatalf("canvas: %v", err)
		}
		if diff := math.Abs(a[0].Width-b[0].Width) / b[0].Width; diff > 0.05 {
			t.Fatalf("%q: ximage %g vs canvas %g", text, a[0].Width, b[0].Width)
		}
	}
}

func TestUnknownFontFails(t *testing.T) {
	ts := New("")
	_, err := ts.LayoutLines("x", 10, layout.FontResource{Name: "Nope", Src: "embed:nope"}, 4, 5, "")
	if err == nil {
		t.Fatalf("unknown font should fail")
	}
	_, err = ts.LayoutLines("x", 10, layout.FontResource{Name: "Empty"}, 4, 5, "")
	if err == nil {
		t.Fatalf("missing src should fail")
	}
}

// TestBuildSurfacesFontError 字体错误会经由 layout.Build 返回。
func TestBuildSurfacesFontError(t *testing.T) {
	doc, err := dsl.ParseString(`doc T v1 {
  resources { font Body { src: "missing/font.ttf" } }
  page A4 { box a width 50mm height 10mm { "x" } }
}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = layout.Build(doc, nil, layout.BuildOptions{Typesetter: New(t.TempDir()), Fit: fit.DefaultOptions()})
	if err == nil || !strings.Contains(err.Error(), "missing/font.ttf") {
		t.Fatalf("expected font error, got %v", err)
	}
}
