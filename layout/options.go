package layout

import "github.com/ByLCY/textfill/fit"

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与适配参数。
type BuildOptions struct {
	Typesetter Typesetter
	// Fit 为默认适配参数，DSL 中的 options 段会覆盖对应字段。
	Fit fit.Options
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// 约定：width/fontSize/lineHeight 以及返回的行宽高均为毫米（mm）。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}
