package renderer

import (
	"fmt"
	"strings"

	"github.com/ByLCY/textfill/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF 或 SVG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Format 是输出文件格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
)

// Ext 返回带点的扩展名。
func (f Format) Ext() string { return "." + string(f) }

// ParseFormat 解析格式名，忽略大小写与前导点；空串视为 pdf。
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "pdf":
		return FormatPDF, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want pdf or svg)", s)
	}
}
