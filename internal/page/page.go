package page

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"kiln/internal/domain/config"
	"kiln/internal/domain/content"
	domainerr "kiln/internal/domain/errors"
	"kiln/internal/ingest"
	"kiln/internal/render"
)

// Page 是单个页面从源文件到输出文件的聚合：
// 读取 -> 切 header -> 归一化 -> 正文渲染 在 Load 里完成，
// Render / Write 由调用方分别触发。实例之间不共享可变状态，
// 驱动层可以一个 worker 一个页面地并发处理。
type Page struct {
	Path     string
	Filename string

	// Original 是去掉 header 之后的正文原文
	Original string
	Meta     content.Meta

	// Content 是渲染器输出的正文 HTML，HTML 是模板套完后的整页
	Content []byte
	HTML    []byte

	// Subpages 由外部按层级关系填充，核心流水线不管它
	Subpages []*Page

	cfg       config.Config
	renderer  render.Renderer
	templates *render.TemplateEngine
	now       func() time.Time
}

type Option func(*Page)

// WithClock 注入时钟，方便测试缺省 datetime 的行为
func WithClock(now func() time.Time) Option {
	return func(p *Page) { p.now = now }
}

// Load 读源文件并跑完归一化和正文渲染。
// 读不到文件是 ErrSourceRead，header 不是映射是 ErrMetadataParse。
func Load(path string, cfg config.Config, r render.Renderer, tpl *render.TemplateEngine, opts ...Option) (*Page, []ingest.Warning, error) {
	p := &Page{
		Path:      path,
		Filename:  filepath.Base(path),
		cfg:       cfg,
		renderer:  r,
		templates: tpl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, domainerr.NewPageError(domainerr.ErrSourceRead, path, err)
	}

	header, body := ingest.SplitHeader(string(data))
	p.Original = body

	raw, err := ingest.ParseHeader(header)
	if err != nil {
		var pe *domainerr.PageError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, nil, err
	}

	meta, warns := ingest.Normalize(raw, p.Filename, p.now)
	p.Meta = meta
	for i := range warns {
		warns[i].Path = path
	}

	log.Printf("[page] rendering %s with %s", p.Meta.Slug, r.Name())

	out, err := r.Render([]byte(body))
	if err != nil {
		return nil, warns, fmt.Errorf("render body(%s): %w", path, err)
	}
	p.Content = out

	return p, warns, nil
}

// Render 套模板生成整页 HTML。模板名取 meta 的 type，缺省 "default"。
// 注入的 page（以及调用方之后不该覆盖的键）写在调用方变量后面：
// 键冲突时 page 永远是真实页面，模板依赖这一点。
func (p *Page) Render(vars map[string]any) ([]byte, error) {
	name := p.Meta.Type
	if name == "" {
		name = "default"
	}

	merged := make(map[string]any, len(vars)+1)
	for k, v := range vars {
		merged[k] = v
	}
	merged["page"] = p

	html, err := p.templates.Render(name, merged)
	if err != nil {
		var pe *domainerr.PageError
		if errors.As(err, &pe) {
			pe.Path = p.Path
		}
		return nil, err
	}
	p.HTML = html
	return html, nil
}

// Write 把整页 HTML 写到 output_dir + meta.URL。
// 目录已存在不算错（MkdirAll 本身幂等），其余创建/写入失败都是 ErrWrite。
func (p *Page) Write() error {
	dest := filepath.Join(p.cfg.Build.OutputDir, filepath.FromSlash(p.Meta.URL))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return domainerr.NewPageError(domainerr.ErrWrite, dest, err)
	}
	if err := os.WriteFile(dest, p.HTML, 0o644); err != nil {
		return domainerr.NewPageError(domainerr.ErrWrite, dest, err)
	}
	return nil
}

// OutputPath 是 Write 的目标路径
func (p *Page) OutputPath() string {
	return filepath.Join(p.cfg.Build.OutputDir, filepath.FromSlash(p.Meta.URL))
}

// ContentHTML 给模板用：正文 HTML 不再二次转义
func (p *Page) ContentHTML() template.HTML {
	return template.HTML(p.Content)
}

// Field 透明读取任意元数据字段，未定义的键 ok=false
func (p *Page) Field(name string) (any, bool) {
	return p.Meta.Field(name)
}

// Get 是 Field 的模板友好版本：未定义返回 nil
func (p *Page) Get(name string) any {
	v, ok := p.Meta.Field(name)
	if !ok {
		return nil
	}
	return v
}
