package layout

import (
	"math"

	"github.com/ByLCY/textfill/fit"
)

// Box 是 fit.Container 的排版实现：一个固定尺寸（mm）的文本容器，
// 文本的宽高通过 Typesetter 实际排版测得。
type Box struct {
	name       string
	x, y       float64
	width      float64
	height     float64
	lineHeight float64 // 容器行高（px），ChangeLineHeight 时写入；0 表示沿用文本比例
	text       *boxText
}

// boxText 实现 fit.Text。字号以 px 保存，测量时换算为 mm 交给 Typesetter。
type boxText struct {
	box     *Box
	content string
	font    FontResource
	size    float64 // px
	ratio   float64 // 行高 / 字号
	fixedLH float64 // 绝对行高（px），不随字号变化；0 表示按 ratio
	wrap    string
	nowrap  bool
	hidden  bool
	ts      Typesetter

	lines      []TextLine
	measuredAt float64
	measured   bool
	err        error
}

var (
	_ fit.Container = (*Box)(nil)
	_ fit.Text      = (*boxText)(nil)
)

// BoxSpec 描述创建 Box 所需的参数，长度单位为 mm，字号为 px。
type BoxSpec struct {
	Name       string
	X, Y       float64
	Width      float64
	Height     float64
	Content    string
	Font       FontResource
	FontPixels float64
	LineHeight LineHeightSpec
	Wrap       string
	Hidden     bool
}

// NewBox 创建一个待适配的文本框。content 为空时该框没有可调整的文本。
func NewBox(spec BoxSpec, ts Typesetter) *Box {
	b := &Box{
		name:   spec.Name,
		x:      spec.X,
		y:      spec.Y,
		width:  spec.Width,
		height: spec.Height,
	}
	if spec.Content == "" {
		return b
	}
	size := spec.FontPixels
	if size <= 0 {
		size = 16
	}
	b.text = &boxText{
		box:     b,
		content: spec.Content,
		font:    spec.Font,
		size:    size,
		ratio:   spec.LineHeight.Ratio(size),
		fixedLH: spec.LineHeight.Pixels(),
		wrap:    normalizeWrap(spec.Wrap),
		hidden:  spec.Hidden,
		ts:      ts,
	}
	return b
}

func (b *Box) Name() string { return b.name }

// Width 返回容器宽度（px）。
func (b *Box) Width() float64 { return b.width * MmToPx }

// Height 返回容器高度（px）。
func (b *Box) Height() float64 { return b.height * MmToPx }

func (b *Box) Text() (fit.Text, bool) {
	if b.text == nil {
		return nil, false
	}
	return b.text, true
}

func (b *Box) SetLineHeight(px float64) {
	b.lineHeight = px
	if b.text != nil {
		b.text.measured = false
	}
}

// Lines 返回最近一次测量得到的行（mm）。
func (b *Box) Lines() []TextLine {
	if b.text == nil {
		return nil
	}
	b.text.measure()
	return b.text.lines
}

// Err 返回 Typesetter 在最近一次测量时报告的错误。
func (b *Box) Err() error {
	if b.text == nil {
		return nil
	}
	return b.text.err
}

func (t *boxText) Content() string   { return t.content }
func (t *boxText) Visible() bool     { return !t.hidden }
func (t *boxText) FontSize() float64 { return t.size }

func (t *boxText) LineHeight() float64 {
	if t.box.lineHeight > 0 {
		return t.box.lineHeight
	}
	if t.fixedLH > 0 {
		return t.fixedLH
	}
	return t.size * t.ratio
}

func (t *boxText) SetFontSize(px float64) {
	if px != t.size {
		t.size = px
		t.measured = false
	}
}

func (t *boxText) SetNoWrap(nowrap bool) {
	if nowrap != t.nowrap {
		t.nowrap = nowrap
		t.measured = false
	}
}

// Width 返回最宽一行的宽度（px）。
func (t *boxText) Width() float64 {
	if !t.measure() {
		return math.Inf(1)
	}
	w := 0.0
	for _, ln := range t.lines {
		w = math.Max(w, ln.Width)
	}
	return w * MmToPx
}

// Height 返回所有行高与行间距之和（px）。
func (t *boxText) Height() float64 {
	if !t.measure() {
		return math.Inf(1)
	}
	return linesHeight(t.lines) * MmToPx
}

// measure 以当前字号重新排版；排版失败时记录错误并返回 false。
func (t *boxText) measure() bool {
	if t.measured && t.measuredAt == t.size {
		return t.err == nil
	}
	wrap := t.wrap
	if t.nowrap {
		wrap = "nowrap"
	}
	sizeMM := t.size * PxToMm
	lineHeightMM := t.LineHeight() * PxToMm
	lines, err := layoutLines(t.content, t.box.width, t.font, sizeMM, lineHeightMM, t.ts, wrap)
	t.measured, t.measuredAt = true, t.size
	t.err = err
	if err != nil {
		t.lines = nil
		return false
	}
	t.lines = lines
	return true
}

func linesHeight(lines []TextLine) float64 {
	total := 0.0
	for _, ln := range lines {
		total += ln.GapBefore + ln.Height
	}
	return total
}

// layoutLines 调用 Typesetter 排版，并补齐行高与行间距：
// 首行 GapBefore 为 0；Typesetter 未给出 Height 的行以 fontSize 为高，
// 行间距使用 max(lineHeight - fontSize, 0)。
func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) ([]TextLine, error) {
	var lines []TextLine
	if ts == nil {
		for _, part := range splitLines(content) {
			lines = append(lines, TextLine{Content: part, Width: estimateTextWidth(part, fontSize)})
		}
	} else {
		var err error
		lines, err = ts.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
		if err != nil {
			return nil, err
		}
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: ""}}
	}
	leading := math.Max(lineHeight-fontSize, 0)
	for i := range lines {
		if lines[i].Height > 0 {
			continue
		}
		lines[i].Height = fontSize
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	lines[0].GapBefore = 0
	return lines, nil
}
