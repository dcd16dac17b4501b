// Package ximage 提供基于 golang.org/x/image/font/opentype 的 layout.Typesetter，
// 只做测量，不负责输出。
package ximage

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/textfill/fonts"
	"github.com/ByLCY/textfill/layout"
	"github.com/ByLCY/textfill/renderer/wrap"
)

// Typesetter 以 72 DPI 创建字体面，使 1 个度量单位等于 1pt。
// 与 canvas 渲染器不同，字体无法加载时直接返回错误，不做回退。
type Typesetter struct {
	baseDir string

	mu    sync.Mutex
	fonts map[string]*opentype.Font // by src
}

var _ layout.Typesetter = (*Typesetter)(nil)

// New creates a Typesetter resolving font paths against baseDir.
func New(baseDir string) *Typesetter {
	return &Typesetter{baseDir: baseDir, fonts: map[string]*opentype.Font{}}
}

// LayoutLines 实现 layout.Typesetter。入参与返回值均为 mm。
func (t *Typesetter) LayoutLines(content string, width float64, res layout.FontResource, fontSize, lineHeight float64, wrapMode string) ([]layout.TextLine, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := t.font(res)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize * layout.MmToPt,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face for font %s: %w", res.Name, err)
	}
	defer face.Close()

	lines := wrap.Greedy(content, width, func(s string) float64 {
		return toMM(font.MeasureString(face, s))
	}, wrapMode)

	textHeight := toMM(face.Metrics().Height)
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	for i := range lines {
		lines[i].Height = textHeight
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

func (t *Typesetter) font(res layout.FontResource) (*opentype.Font, error) {
	src := res.Src
	if src == "" {
		return nil, fmt.Errorf("font %s has no src", res.Name)
	}
	if f, ok := t.fonts[src]; ok {
		return f, nil
	}
	data, err := fonts.Resolve(src, t.baseDir, nil)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", src, err)
	}
	t.fonts[src] = f
	return f, nil
}

// toMM 将 72 DPI 下的 26.6 定点像素（即 pt）转换为 mm。
func toMM(v fixed.Int26_6) float64 {
	return float64(v) / 64 * layout.PtToMm
}
