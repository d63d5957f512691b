package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	domainerr "kiln/internal/domain/errors"
)

// TemplateEngine 一次构建、只读共享：整个构建过程里所有页面用同一个实例。
type TemplateEngine struct {
	tpl *template.Template
}

func NewTemplateEngine(templateDir string) (*TemplateEngine, error) {
	pattern := filepath.Join(templateDir, "*.html")
	tpl, err := template.New("").Funcs(templateFuncs()).ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("load templates(%s): %w", templateDir, err)
	}
	return &TemplateEngine{tpl: tpl}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date": func(t interface{}, layout string) string {
			switch v := t.(type) {
			case nil:
				return ""
			case string:
				return v
			case interface{ Format(string) string }:
				return v.Format(layout)
			default:
				return ""
			}
		},
		"nowYear": func() int {
			return time.Now().Year()
		},
		"join": func(items []string, sep string) string {
			var b bytes.Buffer
			for i, it := range items {
				if i > 0 {
					b.WriteString(sep)
				}
				b.WriteString(it)
			}
			return b.String()
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}
}

// Render 按名字找 <name>.html 并执行。模板不存在是 ErrTemplateNotFound。
func (e *TemplateEngine) Render(name string, vars map[string]any) ([]byte, error) {
	t := e.tpl.Lookup(name + ".html")
	if t == nil {
		return nil, domainerr.NewPageError(domainerr.ErrTemplateNotFound, "",
			fmt.Errorf("template %s.html not found", name))
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
