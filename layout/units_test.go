package layout

import (
	"math"
	"testing"
)

// TestPxMmRoundTrip 验证 px↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPxMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, px := range samples {
		back := px * PxToMm * MmToPx
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→mm→px 往返误差过大: in=%gpx back=%g diff=%g", px, back, diff)
		}
	}
	for _, pt := range samples {
		back := pt * PtToMm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
}

// TestLengthConversions 覆盖 Length 在常见单位上的转换正确性。
func TestLengthConversions(t *testing.T) {
	cases := []struct {
		in     string
		wantMM float64
		wantPX float64
	}{
		{"1in", 25.4, 96},
		{"2.54cm", 25.4, 96},
		{"96px", 25.4, 96},
		{"10mm", 10, 10 * MmToPx},
		{"12pt", 12 * PtToMm, 12 * PtToMm * MmToPx},
		{"7", 7, 7 * MmToPx},
	}
	for _, tc := range cases {
		l := ParseRawLengthStr(tc.in)
		if got := l.ToMM(); math.Abs(got-tc.wantMM) > 1e-9 {
			t.Fatalf("%s 转 mm 期望 %g，实际 %g", tc.in, tc.wantMM, got)
		}
		if got := l.ToPX(); math.Abs(got-tc.wantPX) > 1e-9 {
			t.Fatalf("%s 转 px 期望 %g，实际 %g", tc.in, tc.wantPX, got)
		}
	}
	if l := ParseRawLengthStr("abc"); !l.IsZero() {
		t.Fatalf("非法长度应解析为 0，实际 %+v", l)
	}
}

// TestLineHeightRatio 验证倍数与绝对行高在 px 字号下的比例。
func TestLineHeightRatio(t *testing.T) {
	if got := ParseLineHeight("1.5x").Ratio(20); got != 1.5 {
		t.Fatalf("1.5x 比例错误: %g", got)
	}
	if got := ParseLineHeight("").Ratio(20); got != DefaultLineFactor {
		t.Fatalf("默认行高比例错误: %g", got)
	}
	if got := ParseLineHeight("30px").Ratio(20); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("30px/20px 比例错误: %g", got)
	}
	if got := ParseLineHeight("30px").Ratio(0); got != DefaultLineFactor {
		t.Fatalf("字号为 0 时应回退默认比例: %g", got)
	}
}
