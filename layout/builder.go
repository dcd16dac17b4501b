package layout

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/ByLCY/textfill/binding"
	"github.com/ByLCY/textfill/dsl"
	"github.com/ByLCY/textfill/fit"
)

// DefaultFontPixels 是未声明 size 时文本的初始字号（px）。
const DefaultFontPixels = 16

var errNoPage = errors.New("document has no page section")

// Build 解析 DSL 文档，插值文本，对每个 box 做字号适配，并输出布局结果。
// 单个文本框无法适配不会使 Build 失败，结果记录在 Result.Report 中；
// 只有文档结构错误或 Typesetter 排版错误才会返回 error。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, errors.New("empty document")
	}
	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	fitOpts, err := applyOptions(doc, opts.Fit)
	if err != nil {
		return nil, err
	}
	pageSection := firstPage(doc)
	if pageSection == nil {
		return nil, errNoPage
	}
	page, err := resolvePage(pageSection.Params)
	if err != nil {
		return nil, err
	}

	boxes, err := collectBoxes(pageSection.Block, page, res, data, opts.Typesetter)
	if err != nil {
		return nil, err
	}
	containers := make([]fit.Container, len(boxes))
	for i, b := range boxes {
		containers[i] = b.box
	}
	report := fit.Fill(containers, fitOpts)

	var measureErr error
	for _, b := range boxes {
		if e := b.box.Err(); e != nil {
			measureErr = multierr.Append(measureErr, fmt.Errorf("box %s: typeset: %w", b.box.Name(), e))
		}
	}
	if measureErr != nil {
		return nil, measureErr
	}

	result := &Result{
		Page:      page,
		Resources: res,
		Meta:      collectMeta(doc),
		Report:    report,
		Boxes:     make([]FitBox, 0, len(boxes)),
	}
	for i, b := range boxes {
		fb := b.fitBox()
		if i < len(report.Outcomes) {
			out := report.Outcomes[i]
			fb.Fitted = out.OK()
			fb.Error = out.Error
		}
		result.Boxes = append(result.Boxes, fb)
	}
	return result, nil
}

// placedBox 把待适配的 Box 与渲染属性放在一起。
type placedBox struct {
	box    *Box
	font   FontResource
	color  Color
	align  string
	valign string
}

func (p placedBox) fitBox() FitBox {
	b := p.box
	fb := FitBox{
		Name:   b.name,
		X:      b.x,
		Y:      b.y,
		Width:  b.width,
		Height: b.height,
		Font:   p.font.Name,
		Color:  p.color,
		Align:  p.align,
		VAlign: p.valign,
	}
	t := b.text
	if t == nil {
		return fb
	}
	fb.Content = t.content
	fb.FontPixels = t.size
	fb.FontSize = t.size * PxToMm
	fb.LineHeight = t.LineHeight() * PxToMm
	fb.Wrap = t.wrap
	if t.nowrap {
		fb.Wrap = "nowrap"
	}
	fb.Lines = b.Lines()
	for _, ln := range fb.Lines {
		fb.TextWidth = math.Max(fb.TextWidth, ln.Width)
	}
	fb.TextHeight = linesHeight(fb.Lines)
	return fb
}

func collectBoxes(block *dsl.Block, page Page, res ResourceSet, data any, ts Typesetter) ([]placedBox, error) {
	if block == nil {
		return nil, nil
	}
	contentW := page.Width - page.Margin.Left - page.Margin.Right
	contentH := page.Height - page.Margin.Top - page.Margin.Bottom

	var boxes []placedBox
	for _, stmt := range block.Statements {
		if stmt.Command == nil {
			continue
		}
		if stmt.Command.Name != "box" {
			return nil, fmt.Errorf("%s: unsupported command %s", stmt.Command.Pos, stmt.Command.Name)
		}
		name, attrs := parseBoxArgs(stmt.Command.Args)
		if name == "" {
			name = fmt.Sprintf("box-%d", len(boxes)+1)
		}
		mergeBlockAttributes(attrs, stmt.Command.Block)
		attrs = mergeStyleAttributes(attrs["style"], attrs, res.Styles)

		width := parseDimension(attrs["width"], contentW)
		height := parseDimension(attrs["height"], contentH)
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("box %s: missing or invalid width/height", name)
		}

		fontName := attrs["font"]
		if fontName == "" {
			fontName = "Body"
		}
		font, ok := res.Fonts[fontName]
		if !ok {
			return nil, fmt.Errorf("box %s: undefined font %s", name, fontName)
		}

		size := float64(DefaultFontPixels)
		if v := attrs["size"]; v != "" {
			px, err := parsePixels(v)
			if err != nil || px <= 0 {
				return nil, fmt.Errorf("box %s: invalid size %q", name, v)
			}
			size = px
		}
		hidden := false
		if v := attrs["hidden"]; v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("box %s: invalid hidden %q", name, v)
			}
			hidden = b
		}

		content := binding.Interpolate(extractText(stmt.Command.Block), data)
		box := NewBox(BoxSpec{
			Name:       name,
			X:          page.Margin.Left + parseDimension(attrs["x"], contentW),
			Y:          page.Margin.Top + parseDimension(attrs["y"], contentH),
			Width:      width,
			Height:     height,
			Content:    content,
			Font:       font,
			FontPixels: size,
			LineHeight: ParseLineHeight(attrs["line-height"]),
			Wrap:       attrs["wrap"],
			Hidden:     hidden,
		}, ts)
		boxes = append(boxes, placedBox{
			box:    box,
			font:   font,
			color:  resolveColor(attrs["color"], res),
			align:  strings.ToLower(attrs["align"]),
			valign: strings.ToLower(attrs["valign"]),
		})
	}
	return boxes, nil
}

// applyOptions 用文档 options 段覆盖调用方传入的适配参数。
func applyOptions(doc *dsl.Document, base fit.Options) (fit.Options, error) {
	opts := base
	for _, section := range doc.Sections {
		if section.Options == nil || section.Options.Block == nil {
			continue
		}
		for _, stmt := range section.Options.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := strings.ToLower(stmt.Assignment.Key)
			raw := stmt.Assignment.Value.Text()
			var err error
			switch key {
			case "min-font":
				opts.MinFontPixels, err = parseFontBound(raw)
			case "max-font":
				opts.MaxFontPixels, err = parseFontBound(raw)
			case "width-only":
				opts.WidthOnly, err = strconv.ParseBool(raw)
			case "allow-overflow":
				opts.AllowOverflow, err = strconv.ParseBool(raw)
			case "change-line-height":
				opts.ChangeLineHeight, err = strconv.ParseBool(raw)
			case "explicit-width":
				opts.ExplicitWidth, err = parsePixels(raw)
			case "explicit-height":
				opts.ExplicitHeight, err = parsePixels(raw)
			default:
				return opts, fmt.Errorf("unknown option %s", stmt.Assignment.Key)
			}
			if err != nil {
				return opts, fmt.Errorf("option %s: invalid value %q: %w", stmt.Assignment.Key, raw, err)
			}
		}
	}
	return opts, nil
}

// parsePixels 把长度转换为 px；不带单位的数字按 px 处理。
func parsePixels(value string) (float64, error) {
	l := ParseRawLengthStr(value)
	if l.Unit == UnitNone {
		return strconv.ParseFloat(strings.TrimSpace(value), 64)
	}
	return l.ToPX(), nil
}

func parseFontBound(value string) (int, error) {
	px, err := parsePixels(value)
	if err != nil {
		return 0, err
	}
	return int(math.Round(px)), nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, err
				}
				res.Colors[name] = c
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			default:
				return res, fmt.Errorf("%s: unknown resource type %s", stmt.Command.Pos, stmt.Command.Name)
			}
		}
	}

	if _, ok := res.Fonts["Body"]; !ok {
		res.Fonts["Body"] = FontResource{Name: "Body", Src: "embed:go-regular", Family: "Body"}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "textfill",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = stmt.Assignment.Value.Text()
			case "author":
				meta.Author = stmt.Assignment.Value.Text()
			case "subject":
				meta.Subject = stmt.Assignment.Value.Text()
			case "creator":
				meta.Creator = stmt.Assignment.Value.Text()
			case "keywords":
				meta.Keywords = stmt.Assignment.Value.Strings()
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			font.Src = stmt.Assignment.Value.Text()
		case "style":
			font.Style = stmt.Assignment.Value.Text()
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := stmt.Assignment.Value.Text(); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("undefined style %s", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style %s extends itself through a cycle", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// resolvePage 解析 page 参数：预设纸张名或两个长度，可选 landscape 与 margin。
func resolvePage(params []*dsl.Lexeme) (Page, error) {
	page := Page{Width: 210, Height: 297}
	var dims []float64
	landscape := false
	for i := 0; i < len(params); i++ {
		token := params[i]
		switch {
		case token.Value == "landscape":
			landscape = true
		case token.Value == "portrait":
		case token.Value == "margin":
			n := 0
			page.Margin, n = resolveMargin(params[i+1:])
			i += n
		case token.Type == "Number":
			dims = append(dims, ParseRawLengthStr(token.Value).ToMM())
		case token.Type == "Ident":
			preset, ok := pagePresets[strings.ToUpper(token.Value)]
			if !ok {
				return page, fmt.Errorf("unsupported paper size %s", token.Value)
			}
			page.Width, page.Height = preset[0], preset[1]
		default:
			return page, fmt.Errorf("%s: unknown page parameter %s", token.Pos, token.Raw)
		}
	}
	switch len(dims) {
	case 0:
	case 2:
		page.Width, page.Height = dims[0], dims[1]
	default:
		return page, fmt.Errorf("page size needs a width and a height, got %d lengths", len(dims))
	}
	if landscape && page.Width < page.Height {
		page.Width, page.Height = page.Height, page.Width
	}
	if page.Width <= 0 || page.Height <= 0 {
		return page, fmt.Errorf("invalid page size %gx%g", page.Width, page.Height)
	}
	return page, nil
}

// resolveMargin 读取 margin 之后连续的长度，返回边距与消耗的参数个数。
// 1 个值：四边相同；2 个值：上下/左右；3 个值：上/左右/下；4 个值：上右下左。
// 超过 4 个的值被消耗但忽略。
func resolveMargin(params []*dsl.Lexeme) (Margin, int) {
	var vals []float64
	n := 0
	for _, p := range params {
		if p.Type != "Number" {
			break
		}
		n++
		if len(vals) < 4 {
			vals = append(vals, ParseRawLengthStr(p.Value).ToMM())
		}
	}
	switch len(vals) {
	case 1:
		v := vals[0]
		return Margin{Top: v, Right: v, Bottom: v, Left: v}, n
	case 2:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, n
	case 3:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, n
	case 4:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, n
	}
	return Margin{}, n
}

func firstPage(doc *dsl.Document) *dsl.PageSection {
	for _, section := range doc.Sections {
		if section.Page != nil {
			return section.Page
		}
	}
	return nil
}

// parseBoxArgs 拆分 box 参数。参数个数为奇数时第一个是名称，其余为 key value 对。
func parseBoxArgs(args []*dsl.Lexeme) (string, map[string]string) {
	result := map[string]string{}
	cursor := 0
	name := ""
	if len(args)%2 == 1 {
		name = args[0].Value
		cursor = 1
	}
	for cursor < len(args)-1 {
		result[strings.ToLower(args[cursor].Value)] = args[cursor+1].Value
		cursor += 2
	}
	return name, result
}

// mergeBlockAttributes 合并 box 块内的 key: value 写法，行内参数优先。
func mergeBlockAttributes(attrs map[string]string, block *dsl.Block) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		key := strings.ToLower(stmt.Assignment.Key)
		if _, ok := attrs[key]; !ok {
			attrs[key] = stmt.Assignment.Value.Text()
		}
	}
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

// parseDimension 解析长度（mm），百分比相对 reference 计算。
func parseDimension(value string, reference float64) float64 {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0
	}
	if strings.HasSuffix(v, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0
		}
		return reference * pct / 100
	}
	return ParseRawLengthStr(v).ToMM()
}

func resolveColor(value string, res ResourceSet) Color {
	if value == "" {
		return Color{R: 30, G: 30, B: 30}
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return Color{R: 30, G: 30, B: 30}
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{R: mustHex(r), G: mustHex(g), B: mustHex(b)}, nil
	case 6, 8:
		return Color{R: mustHex(value[0:2]), G: mustHex(value[2:4]), B: mustHex(value[4:6])}, nil
	default:
		return Color{}, fmt.Errorf("cannot parse color %s", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func normalizeWrap(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "", "auto", "anywhere", "overflow-wrap:anywhere", "overflow-anywhere":
		return "anywhere"
	case "break-word", "word-break:break-word":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	default:
		return "anywhere"
	}
}

func splitLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

// estimateTextWidth 在没有 Typesetter 时按字符数粗略估算宽度（mm）。
func estimateTextWidth(content string, fontSize float64) float64 {
	if fontSize <= 0 {
		fontSize = 12 * PtToMm
	}
	return fontSize * 0.55 * float64(utf8.RuneCountInString(content))
}
