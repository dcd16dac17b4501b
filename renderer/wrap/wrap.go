// Package wrap 实现渲染后端共用的贪心折行，宽度测量由调用方注入。
package wrap

import (
	"math"
	"strings"
	"unicode"

	"github.com/ByLCY/textfill/layout"
)

// 折行策略，取值与 layout 中 normalizeWrap 的输出一致。
const (
	Anywhere  = "anywhere"
	BreakWord = "break-word"
	NoWrap    = "nowrap"
)

// MeasureFunc 返回字符串在当前字体下的宽度，单位与 width 相同（mm）。
type MeasureFunc func(s string) float64

// Greedy 按策略将 content 拆成不超过 width 的行：
//   - nowrap：只按显式换行拆分；
//   - break-word：忽略空白，纯按宽度逐字符拆分；
//   - anywhere（默认）：优先在空白处断行，单词超宽时在词内拆分。
//
// 返回的行只填写 Content 与 Width，高度由调用方回填。
func Greedy(content string, width float64, measure MeasureFunc, policy string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	content = strings.ReplaceAll(content, "\r", "")

	switch policy {
	case NoWrap:
		parts := strings.Split(content, "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, layout.TextLine{Content: p, Width: measure(p)})
		}
		return lines
	case BreakWord:
		return breakRunes(content, limit, measure)
	default:
		return breakTokens(content, limit, measure)
	}
}

type lineBuilder struct {
	measure MeasureFunc
	lines   []layout.TextLine
	sb      strings.Builder
	width   float64
}

func (b *lineBuilder) add(s string) {
	b.sb.WriteString(s)
	b.width += b.measure(s)
}

// emit 结束当前行。soft 表示因宽度断行，此时去掉行尾空白。
func (b *lineBuilder) emit(force, soft bool) {
	if b.sb.Len() == 0 {
		if force {
			b.lines = append(b.lines, layout.TextLine{})
		}
		return
	}
	str := b.sb.String()
	w := b.width
	if soft {
		if trimmed := strings.TrimRightFunc(str, unicode.IsSpace); trimmed != str {
			str, w = trimmed, b.measure(trimmed)
		}
	}
	b.lines = append(b.lines, layout.TextLine{Content: str, Width: w})
	b.sb.Reset()
	b.width = 0
}

func breakRunes(content string, limit float64, measure MeasureFunc) []layout.TextLine {
	b := &lineBuilder{measure: measure}
	for _, r := range content {
		if r == '\n' {
			b.emit(true, false)
			continue
		}
		s := string(r)
		cw := measure(s)
		if b.width > 0 && b.width+cw > limit {
			b.emit(false, false)
		}
		b.add(s)
	}
	b.emit(true, false)
	return b.lines
}

func breakTokens(content string, limit float64, measure MeasureFunc) []layout.TextLine {
	b := &lineBuilder{measure: measure}
	soft := false
	for _, token := range tokenize(content) {
		if token == "\n" {
			b.emit(true, false)
			soft = false
			continue
		}
		// 软换行后的行首空白不占宽度
		if soft && b.sb.Len() == 0 && strings.TrimSpace(token) == "" {
			continue
		}

		tokenWidth := measure(token)
		if b.width > 0 && b.width+tokenWidth > limit {
			b.emit(false, true)
			soft = true
			if strings.TrimSpace(token) == "" {
				continue
			}
		}
		if tokenWidth <= limit {
			b.add(token)
			continue
		}
		for _, chunk := range splitByWidth(token, limit, measure) {
			if b.width > 0 && b.width+measure(chunk) > limit {
				b.emit(false, true)
				soft = true
			}
			b.add(chunk)
		}
	}
	b.emit(true, false)
	return b.lines
}

// tokenize 将文本拆为交替的空白/非空白片段，换行单独成为 "\n"。
func tokenize(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitByWidth(token string, limit float64, measure MeasureFunc) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && measure(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = []rune{r}
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
