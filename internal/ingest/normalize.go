package ingest

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"kiln/internal/domain/content"
)

// Warning 是归一化过程的旁路诊断，不参与控制流
type Warning struct {
	Path string
	Msg  string
}

// header 里这些键有固定含义，其余进 Extra
var reservedKeys = map[string]struct{}{
	"title": {}, "slug": {}, "author": {}, "category": {},
	"published": {}, "datetime": {}, "time": {}, "date": {},
	"tags": {}, "url": {}, "type": {},
}

// Normalize 把原始 header 补齐成满足 content.Meta 保证的完整记录。
// 除了缺 datetime 时调用注入的时钟以外是纯函数，对已归一化的输入是不动点。
func Normalize(raw map[string]any, filename string, now func() time.Time) (content.Meta, []Warning) {
	if now == nil {
		now = time.Now
	}

	var warns []Warning
	warnf := func(format string, args ...any) {
		warns = append(warns, Warning{Msg: fmt.Sprintf(format, args...)})
	}

	m := content.Meta{
		Category: []string{},
		Tags:     []string{},
		Extra:    map[string]any{},
	}
	for k, v := range raw {
		if _, ok := reservedKeys[k]; !ok {
			m.Extra[k] = v
		}
	}

	// title：缺了就用文件名去掉最后一个扩展名，结果为空（比如点文件）退回整个文件名
	if t, ok := stringValue(raw["title"]); ok && t != "" {
		m.Title = t
	} else {
		m.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
		if m.Title == "" {
			m.Title = filename
		}
		warnf("no title in %s, using the file name", filename)
	}

	// slug：显式值照用，但不是规范形式要提醒
	if s, ok := stringValue(raw["slug"]); ok && s != "" {
		m.Slug = s
		if norm := Slugify(s); norm != s {
			warnf("slug %q is not normalized, expected %q", s, norm)
		}
	} else {
		m.Slug = Slugify(m.Title)
	}

	if a, ok := stringValue(raw["author"]); ok {
		m.Author = content.ParseAuthor(a)
	}

	// category：null 只清空这一个字段，绝不碰其他字段
	if c, ok := stringValue(raw["category"]); ok {
		for _, seg := range strings.Split(c, "/") {
			if seg = strings.TrimSpace(seg); seg != "" {
				m.Category = append(m.Category, seg)
			}
		}
	}

	m.Published = true
	if p, ok := raw["published"].(bool); ok {
		m.Published = p
	}

	// datetime：time、date 两个别名按序检查，后出现的生效
	dt := raw["datetime"]
	if v, ok := raw["time"]; ok {
		dt = v
	}
	if v, ok := raw["date"]; ok {
		dt = v
	}
	switch v := dt.(type) {
	case nil:
		m.DateTime = now()
	case time.Time:
		m.DateTime = v
	case string:
		if t := parseTime(v); !t.IsZero() {
			m.DateTime = t
		} else {
			warnf("cannot parse time %q, using current time", v)
			m.DateTime = now()
		}
	default:
		warnf("cannot parse time %v, using current time", v)
		m.DateTime = now()
	}

	// tags：逗号切分、去空白、丢空项；已经是列表的原样归一
	switch v := raw["tags"].(type) {
	case string:
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				m.Tags = append(m.Tags, t)
			}
		}
	case []string:
		for _, t := range v {
			if t = strings.TrimSpace(t); t != "" {
				m.Tags = append(m.Tags, t)
			}
		}
	case []any:
		for _, item := range v {
			if t, ok := stringValue(item); ok {
				if t = strings.TrimSpace(t); t != "" {
					m.Tags = append(m.Tags, t)
				}
			}
		}
	}

	if ty, ok := stringValue(raw["type"]); ok {
		m.Type = ty
	}

	// url：/cat1/cat2/slug.html，固定正斜杠，和宿主系统无关
	if u, ok := stringValue(raw["url"]); ok && u != "" {
		m.URL = u
	} else {
		parts := append([]string{"/"}, m.Category...)
		parts = append(parts, m.Slug+".html")
		m.URL = path.Join(parts...)
	}

	return m, warns
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		time.DateOnly,
		"2006-01-02 15:04",
		time.DateTime,
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
