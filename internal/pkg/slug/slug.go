package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Fallback 标题无法生成 slug 时使用
const Fallback = "untitled"

// Generate 由标题生成 URL 友好的 slug："My First Story" -> "my-first-story"
func Generate(title string) string {
	s := strings.Map(normalizeSpace, strings.ToLower(title))
	s = strings.TrimSpace(s)
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// normalizeSpace 把 \v、NBSP、全角空格、BOM 等统一成 ' '，RE2 的 \s 只认 ASCII 空白
func normalizeSpace(r rune) rune {
	if r == '\uFEFF' || r != '\u0085' && unicode.IsSpace(r) {
		return ' '
	}
	return r
}

// Unique 在 base 已被占用时依次尝试 base-2、base-3 ...
func Unique(base string, exists func(candidate string) (bool, error)) (string, error) {
	if base == "" {
		base = Fallback
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
