package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// EmbedPrefix 标记内置字体的 src 前缀。
const EmbedPrefix = "embed:"

var builtin = map[string][]byte{
	"go-regular": goregular.TTF,
	"go-bold":    gobold.TTF,
	"go-italic":  goitalic.TTF,
	"go-mono":    gomono.TTF,
}

// IsEmbedded reports whether src names a built-in font.
func IsEmbedded(src string) bool {
	return strings.HasPrefix(src, EmbedPrefix)
}

// Load 返回内置字体的字节数据，name 可写为 "embed:go-regular" 或直接 "go-regular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, EmbedPrefix))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("unknown embedded font %s (available: %s)", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 列出全部内置字体名称。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for k := range builtin {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Resolve 读取字体 src：builtin:<name> 取调用方注入的字体，embed:<name> 取内置字体，
// 其余按相对 baseDir 的文件路径读取。
func Resolve(src, baseDir string, injected map[string][]byte) ([]byte, error) {
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := injected[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("no font registered as builtin:%s", name)
	}
	if IsEmbedded(src) {
		return Load(src)
	}
	path := src
	if baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("font path %s needs a base directory (use builtin: or embed: instead)", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", src, err)
	}
	return data, nil
}
