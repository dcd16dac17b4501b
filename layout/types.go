package layout

import "github.com/ByLCY/textfill/fit"

// 该文件定义布局结果与资源描述，供适配计算、渲染与调试 JSON 共用。

// Result 保存适配后的页面、文本框与资源信息。
type Result struct {
	Page      Page         `json:"page"`
	Boxes     []FitBox     `json:"boxes"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
	Report    *fit.Report  `json:"report"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]Color        `json:"colors"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径、embed:* 或 builtin:* 形式。
type FontResource struct {
	Name   string `json:"name"`
	Src    string `json:"src"`
	Style  string `json:"style"`
	Family string `json:"family"` // 渲染器使用的 Family 名称
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Page 记录页面尺寸与边距（单位：mm）。
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// FitBox 是一个已完成字号适配的文本框，坐标为页面坐标（mm）。
type FitBox struct {
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Font       string     `json:"font"`
	FontPixels float64    `json:"fontPixels"` // 最终字号（px），失败时为原始字号
	FontSize   float64    `json:"fontSize"`   // 同上，单位 mm，供渲染器使用
	LineHeight float64    `json:"lineHeight"` // mm
	Color      Color      `json:"color"`
	Align      string     `json:"align,omitempty"`  // left/center/right
	VAlign     string     `json:"valign,omitempty"` // top/middle/bottom
	Wrap       string     `json:"wrap,omitempty"`   // anywhere/break-word/nowrap
	Lines      []TextLine `json:"lines"`
	TextWidth  float64    `json:"textWidth"`  // mm
	TextHeight float64    `json:"textHeight"` // mm
	Fitted     bool       `json:"fitted"`
	Error      string     `json:"error,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高（mm）。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存输出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
