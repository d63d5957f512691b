package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify 生成 URL 安全的标识：小写、[a-z0-9-]、连续的其他字符折叠成单个 "-"。
// 先做 NFD 分解去掉组合符号，"Café" 这类标题能落到纯 ASCII。
func Slugify(s string) string {
	s = norm.NFD.String(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var out []rune
	lastDash := false

	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			// 组合符号直接丢弃，不算分隔
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			out = append(out, r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
			lastDash = false
		default:
			if !lastDash && len(out) > 0 {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
