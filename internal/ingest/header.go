package ingest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	domainerr "kiln/internal/domain/errors"
)

// SplitHeader 在第一个 "---" 处切一刀：前面是 header，后面是正文。
// 没有分隔符时整个内容都是正文，header 为空。
func SplitHeader(src string) (header, body string) {
	before, after, found := strings.Cut(src, "---")
	if !found {
		return "", src
	}
	return before, after
}

// ParseHeader 把 header 文本解析成键值映射。
// 空白 header 得到空映射；能解析但不是映射（比如顶层是列表）算格式错误。
func ParseHeader(header string) (map[string]any, error) {
	if strings.TrimSpace(header) == "" {
		return map[string]any{}, nil
	}

	var doc any
	if err := yaml.Unmarshal([]byte(header), &doc); err != nil {
		return nil, domainerr.NewPageError(domainerr.ErrMetadataParse, "", err)
	}
	if doc == nil {
		return map[string]any{}, nil
	}

	m, ok := doc.(map[string]any)
	if !ok {
		return nil, domainerr.NewPageError(domainerr.ErrMetadataParse, "",
			fmt.Errorf("header is %T, want a mapping", doc))
	}
	return m, nil
}
