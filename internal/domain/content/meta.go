package content

import (
	"strings"
	"time"
)

// Meta 是归一化之后的页面元数据。字段保证（无论 header 写了什么）：
//
//	Title     非空字符串
//	Slug      非空，正常情况匹配 [a-z0-9-]*
//	Author    总是存在，可能是零值
//	Category  非 nil 切片
//	Published 缺省 true
//	DateTime  非零时间
//	Tags      非 nil 切片
//	URL       /cat1/cat2/slug.html 形式，或 header 里的显式值
//
// 模板层只依赖这些保证，不做二次判空。
type Meta struct {
	Title     string
	Slug      string
	Author    Author
	Category  []string
	Published bool
	DateTime  time.Time
	Tags      []string
	URL       string

	// Type 选择模板名（<type>.html），空串表示 "default"
	Type string

	// 其余未识别的 header 键原样保留，模板可以通过 Field 取到
	Extra map[string]any
}

// Field 按名字取任意元数据字段。未定义的键返回 ok=false，不会 panic。
func (m *Meta) Field(name string) (any, bool) {
	switch name {
	case "title":
		return m.Title, true
	case "slug":
		return m.Slug, true
	case "author":
		return m.Author, true
	case "category":
		return m.Category, true
	case "published":
		return m.Published, true
	case "datetime":
		return m.DateTime, true
	case "tags":
		return m.Tags, true
	case "url":
		return m.URL, true
	case "type":
		if m.Type == "" {
			return nil, false
		}
		return m.Type, true
	}
	v, ok := m.Extra[name]
	return v, ok
}

// RawMap 把 Meta 还原成 header 形式的映射。
// 约定：Normalize(m.RawMap(), filename) 得到的结果和 m 完全一致（幂等）。
func (m *Meta) RawMap() map[string]any {
	raw := make(map[string]any, 8+len(m.Extra))
	for k, v := range m.Extra {
		raw[k] = v
	}
	raw["title"] = m.Title
	raw["slug"] = m.Slug
	if !m.Author.IsZero() {
		raw["author"] = m.Author.Raw
	}
	if len(m.Category) > 0 {
		raw["category"] = strings.Join(m.Category, "/")
	}
	raw["published"] = m.Published
	raw["datetime"] = m.DateTime
	if len(m.Tags) > 0 {
		raw["tags"] = append([]string(nil), m.Tags...)
	}
	raw["url"] = m.URL
	if m.Type != "" {
		raw["type"] = m.Type
	}
	return raw
}
