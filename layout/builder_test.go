package layout

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/textfill/dsl"
	"github.com/ByLCY/textfill/fit"
)

// stubTypesetter 是一个等宽字体的最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 每个字符宽 0.5em，按空格贪心折行。
type stubTypesetter struct {
	err   error
	calls int
}

func (s *stubTypesetter) LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	charW := fontSize * 0.5
	mk := func(text string) TextLine {
		return TextLine{Content: text, Width: charW * float64(utf8.RuneCountInString(text))}
	}
	if wrap == "nowrap" {
		return []TextLine{mk(content)}, nil
	}
	var lines []TextLine
	cur := ""
	for _, word := range strings.Fields(content) {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if cur != "" && mk(next).Width > width {
			lines = append(lines, mk(cur))
			cur = word
			continue
		}
		cur = next
	}
	if cur != "" {
		lines = append(lines, mk(cur))
	}
	// 不设置 Height/GapBefore，由 layoutLines 按字号与默认 leading 回填。
	return lines, nil
}

func build(t *testing.T, dslText string, data any) *Result {
	t.Helper()
	res, err := buildWith(dslText, data, &stubTypesetter{})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func buildWith(dslText string, data any, ts Typesetter) (*Result, error) {
	doc, err := dsl.Parse(strings.NewReader(dslText))
	if err != nil {
		return nil, err
	}
	return Build(doc, data, BuildOptions{Typesetter: ts, Fit: fit.DefaultOptions()})
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func eq(a, b float64) bool { return abs(a-b) < 1e-6 }

// TestBuildFitsSingleLine：50mm x 10mm 的框约 189px x 37.8px，高度先封顶为 37px。
func TestBuildFitsSingleLine(t *testing.T) {
	res := build(t, `doc T v1 { page 100mm 100mm { box title x 10mm y 5mm width 50mm height 10mm { "Hello" } } }`, nil)
	if len(res.Boxes) != 1 {
		t.Fatalf("应输出 1 个文本框，得到 %d", len(res.Boxes))
	}
	b := res.Boxes[0]
	if !b.Fitted || b.Error != "" {
		t.Fatalf("适配应成功: %+v", b)
	}
	if b.FontPixels != 37 {
		t.Fatalf("期望字号 37px，得到 %v", b.FontPixels)
	}
	if !eq(b.FontSize, 37*PxToMm) {
		t.Fatalf("FontSize 应为 mm: %v", b.FontSize)
	}
	if !eq(b.X, 10) || !eq(b.Y, 5) || !eq(b.Width, 50) || !eq(b.Height, 10) {
		t.Fatalf("几何信息错误: %+v", b)
	}
	if len(b.Lines) != 1 || b.Lines[0].Content != "Hello" {
		t.Fatalf("应只有一行: %+v", b.Lines)
	}
	if b.TextHeight > b.Height+1e-9 || b.TextWidth > b.Width+1e-9 {
		t.Fatalf("文本应在框内: %+v", b)
	}
	out, ok := res.Report.Lookup("title")
	if !ok || out.Size != 37 || out.HeightSize != 37 || out.WidthSize != 40 {
		t.Fatalf("报告不符合预期: %+v", out)
	}
}

// TestTextHeightInvariant 断言：TextHeight == Σ(line.Height + line.GapBefore)。
func TestTextHeightInvariant(t *testing.T) {
	res := build(t, `doc T v1 { page A4 { box body width 40mm height 60mm line-height 1.5 { "long long long long long long long long long long long long" } } }`, nil)
	b := res.Boxes[0]
	if len(b.Lines) < 2 {
		t.Fatalf("应折成多行: %+v", b.Lines)
	}
	sum := 0.0
	for i, ln := range b.Lines {
		if i == 0 && ln.GapBefore != 0 {
			t.Fatalf("首行不应有 GapBefore: %+v", ln)
		}
		if i > 0 && !eq(ln.GapBefore, b.LineHeight-b.FontSize) {
			t.Fatalf("行距应为 lineHeight-fontSize: %v", ln.GapBefore)
		}
		sum += ln.Height + ln.GapBefore
	}
	if !eq(sum, b.TextHeight) {
		t.Fatalf("TextHeight=%v, Σ=%v", b.TextHeight, sum)
	}
	if !eq(b.LineHeight, 1.5*b.FontSize) {
		t.Fatalf("行高比例应为 1.5: %v / %v", b.LineHeight, b.FontSize)
	}
}

func TestBuildReportsUnfitBox(t *testing.T) {
	dslText := `doc T v1 {
  options { min-font: 30 }
  page A4 {
    box tiny width 10mm height 5mm size 16px { "Hello world" }
    box ok width 80mm height 20mm { "Hi" }
  }
}`
	res := build(t, dslText, nil)
	if res.Report.Failed() != 1 || res.Report.Succeeded() != 1 {
		t.Fatalf("应 1 个失败 1 个成功: %+v", res.Report)
	}
	tiny := res.Boxes[0]
	if tiny.Fitted || !strings.Contains(tiny.Error, "does not fit") {
		t.Fatalf("tiny 应失败: %+v", tiny)
	}
	if tiny.FontPixels != 16 {
		t.Fatalf("失败后应恢复初始字号 16px，得到 %v", tiny.FontPixels)
	}
	if !errors.Is(res.Report.Err(), fit.ErrUnfit) {
		t.Fatalf("报告错误应包含 ErrUnfit: %v", res.Report.Err())
	}
	if !res.Boxes[1].Fitted {
		t.Fatalf("其余文本框应继续适配: %+v", res.Boxes[1])
	}
}

func TestBuildOptionsOverride(t *testing.T) {
	dslText := `doc T v1 {
  options {
    max-font: 20px
    width-only: true
    change-line-height: true
  }
  page A4 { box a width 100mm height 5mm { "Hello" } }
}`
	res := build(t, dslText, nil)
	b := res.Boxes[0]
	// width-only 不受高度限制，字号由 max-font 封顶。
	if !b.Fitted || b.FontPixels != 20 {
		t.Fatalf("期望 20px: %+v", b)
	}
	if b.Wrap != "nowrap" {
		t.Fatalf("width-only 应关闭换行: %q", b.Wrap)
	}
	if !eq(b.LineHeight, 20*DefaultLineFactor*PxToMm) {
		t.Fatalf("行高应随字号等比变化: %v", b.LineHeight)
	}
	out, _ := res.Report.Lookup("a")
	if out.HeightSize != 0 {
		t.Fatalf("width-only 不应搜索高度: %+v", out)
	}
}

func TestBuildRejectsBadOptions(t *testing.T) {
	cases := map[string]string{
		"unknown": `doc T v1 { options { shrink: true } page A4 { } }`,
		"bool":    `doc T v1 { options { width-only: maybe } page A4 { } }`,
		"number":  `doc T v1 { options { min-font: big } page A4 { } }`,
	}
	for name, text := range cases {
		if _, err := buildWith(text, nil, &stubTypesetter{}); err == nil {
			t.Fatalf("%s: 期望返回错误", name)
		}
	}
}

func TestBuildInterpolatesData(t *testing.T) {
	data := map[string]any{"user": map[string]any{"name": "Ada"}}
	res := build(t, `doc T v1 { page A4 {
  box a width 80mm height 20mm { "Hello ${user.name}" }
  box b width 80mm height 20mm { "Hi ${user.nick|friend}" }
} }`, data)
	if got := res.Boxes[0].Content; got != "Hello Ada" {
		t.Fatalf("插值失败: %q", got)
	}
	if got := res.Boxes[1].Content; got != "Hi friend" {
		t.Fatalf("默认值失败: %q", got)
	}
}

func TestBuildStylesAndResources(t *testing.T) {
	dslText := `doc T v1 {
  meta { title: "Poster" keywords: ["a", "b"] }
  resources {
    font Mono { src: "embed:go-mono" }
    color Accent = #0F62FE
    style Base { font: Mono color: Accent }
    style Title extends Base { align: Center valign: middle }
  }
  page 200mm 100mm margin 10mm {
    box t width 50% height 50% style Title { "Hi" }
    box u width 20mm height 10mm style Title color #f00 { "x" }
  }
}`
	res := build(t, dslText, nil)
	if res.Meta.Title != "Poster" || len(res.Meta.Keywords) != 2 || res.Meta.Creator != "textfill" {
		t.Fatalf("meta 解析错误: %+v", res.Meta)
	}
	if _, ok := res.Resources.Fonts["Body"]; !ok {
		t.Fatalf("应补充默认 Body 字体")
	}
	b := res.Boxes[0]
	if b.Font != "Mono" || b.Color != (Color{R: 0x0F, G: 0x62, B: 0xFE}) {
		t.Fatalf("样式继承失败: %+v", b)
	}
	if b.Align != "center" || b.VAlign != "middle" {
		t.Fatalf("对齐应取自样式并转为小写: %q %q", b.Align, b.VAlign)
	}
	// 百分比相对内容区：(200-20)*50% x (100-20)*50%，坐标从边距起算。
	if !eq(b.Width, 90) || !eq(b.Height, 40) || !eq(b.X, 10) || !eq(b.Y, 10) {
		t.Fatalf("百分比尺寸错误: %+v", b)
	}
	if res.Boxes[1].Color != (Color{R: 255}) {
		t.Fatalf("行内颜色应覆盖样式: %+v", res.Boxes[1].Color)
	}
}

func TestBuildRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"no page":       `doc T v1 { meta { title: "x" } }`,
		"missing size":  `doc T v1 { page A4 { box a width 10mm { "x" } } }`,
		"unknown font":  `doc T v1 { page A4 { box a width 10mm height 10mm font Nope { "x" } } }`,
		"style cycle":   `doc T v1 { resources { style A extends B { } style B extends A { } } page A4 { } }`,
		"bad paper":     `doc T v1 { page B9 { } }`,
		"unknown cmd":   `doc T v1 { page A4 { text a { "x" } } }`,
		"one dimension": `doc T v1 { page 100mm { } }`,
	}
	for name, text := range cases {
		if _, err := buildWith(text, nil, &stubTypesetter{}); err == nil {
			t.Fatalf("%s: 期望返回错误", name)
		}
	}
}

func TestBuildSurfacesTypesetterError(t *testing.T) {
	boom := errors.New("boom")
	_, err := buildWith(`doc T v1 { page A4 { box a width 10mm height 10mm { "x" } } }`, nil, &stubTypesetter{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("应返回排版错误，得到 %v", err)
	}
	if !strings.Contains(err.Error(), "box a") {
		t.Fatalf("错误应带上文本框名称: %v", err)
	}
}

func TestBuildHiddenAndEmptyBoxes(t *testing.T) {
	res := build(t, `doc T v1 { page A4 {
  box h width 10mm height 10mm hidden true { "x" }
  box e width 10mm height 10mm
} }`, nil)
	if err := res.Report.Outcomes[0].Err; !errors.Is(err, fit.ErrHidden) {
		t.Fatalf("隐藏文本应报告 ErrHidden: %v", err)
	}
	if err := res.Report.Outcomes[1].Err; !errors.Is(err, fit.ErrNoText) {
		t.Fatalf("空文本框应报告 ErrNoText: %v", err)
	}
	if res.Boxes[1].Name != "e" || res.Boxes[1].Fitted {
		t.Fatalf("空文本框信息错误: %+v", res.Boxes[1])
	}
}

func TestBuildWithoutTypesetter(t *testing.T) {
	res, err := buildWith(`doc T v1 { page A4 { box a width 80mm height 20mm { "Hello" } } }`, nil, nil)
	if err != nil {
		t.Fatalf("无 Typesetter 时应使用估算宽度: %v", err)
	}
	if !res.Boxes[0].Fitted || res.Boxes[0].FontPixels <= 0 {
		t.Fatalf("估算模式应能完成适配: %+v", res.Boxes[0])
	}
}

func TestResolvePage(t *testing.T) {
	get := func(spec string) Page {
		t.Helper()
		res := build(t, "doc T v1 { page "+spec+" { } }", nil)
		return res.Page
	}
	if p := get("A5 landscape"); !eq(p.Width, 210) || !eq(p.Height, 148) {
		t.Fatalf("A5 横向尺寸错误: %+v", p)
	}
	if p := get("Letter"); !eq(p.Width, 215.9) || !eq(p.Height, 279.4) {
		t.Fatalf("Letter 尺寸错误: %+v", p)
	}
	if p := get("800px 4in"); !eq(p.Width, 800*PxToMm) || !eq(p.Height, 101.6) {
		t.Fatalf("自定义尺寸错误: %+v", p)
	}
}

// TestResolveMarginVariants 验证 margin 参数支持 1、2、3、4+ 个值的语义。
func TestResolveMarginVariants(t *testing.T) {
	get := func(spec string) Margin {
		t.Helper()
		res := build(t, "doc T v1 { page "+spec+" { } }", nil)
		return res.Page.Margin
	}

	m1 := get("A4 portrait margin 10mm")
	if !(eq(m1.Top, 10) && eq(m1.Right, 10) && eq(m1.Bottom, 10) && eq(m1.Left, 10)) {
		t.Fatalf("1 值语义错误: %+v", m1)
	}

	m2 := get("A4 portrait margin 10mm 5mm")
	if !(eq(m2.Top, 10) && eq(m2.Bottom, 10) && eq(m2.Left, 5) && eq(m2.Right, 5)) {
		t.Fatalf("2 值语义错误: %+v", m2)
	}

	// 3 个参数：上 左右 下
	m3 := get("A4 portrait margin 12mm 8mm 6mm")
	if !(eq(m3.Top, 12) && eq(m3.Right, 8) && eq(m3.Bottom, 6) && eq(m3.Left, 8)) {
		t.Fatalf("3 值语义错误: %+v", m3)
	}

	m4 := get("A4 portrait margin 1cm 5mm 2cm 3mm") // 含不同单位
	if !(eq(m4.Top, 10) && eq(m4.Right, 5) && eq(m4.Bottom, 20) && eq(m4.Left, 3)) {
		t.Fatalf("4 值语义错误: %+v", m4)
	}

	m5 := get("A4 margin 1mm 2mm 3mm 4mm 999mm 888mm")
	if !(eq(m5.Top, 1) && eq(m5.Right, 2) && eq(m5.Bottom, 3) && eq(m5.Left, 4)) {
		t.Fatalf(">4 值应忽略多余: %+v", m5)
	}
}

func TestNormalizeWrap(t *testing.T) {
	cases := map[string]string{
		"":           "anywhere",
		"Break-Word": "break-word",
		"no-wrap":    "nowrap",
		"whatever":   "anywhere",
	}
	for in, want := range cases {
		if got := normalizeWrap(in); got != want {
			t.Fatalf("normalizeWrap(%q) = %q, want %q", in, got, want)
		}
	}
}
