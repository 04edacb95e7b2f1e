package htmltext

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func contentPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		// 富文本编辑器会输出对齐和高亮
		p.AllowAttrs("class").Globally()
		p.AllowStyles("text-align").MatchingEnum("left", "right", "center", "justify").Globally()
		p.AllowElements("mark", "u", "s")
		policy = p
	})
	return policy
}

// Sanitize 清理编辑器提交的 HTML，去除脚本和事件属性
func Sanitize(content string) string {
	return contentPolicy().Sanitize(content)
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "hr": true, "tr": true, "section": true,
}

// PlainText 提取 HTML 中的可见文本，块级元素之间以空格分隔，连续空白折叠
func PlainText(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip++
			}
			if blockTags[tag] {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				b.WriteByte(' ')
			}
		}
	}
}

// Truncate 按字符截断，超过 max 时保留 max-3 个字符并追加 "..."
func Truncate(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// Snippet 生成分享卡片摘要
func Snippet(content string, max int) string {
	return Truncate(PlainText(content), max)
}
