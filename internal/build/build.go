package build

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"

	"kiln/internal/domain/config"
	"kiln/internal/index"
	"kiln/internal/ingest"
	"kiln/internal/page"
	"kiln/internal/render"
)

type Builder struct {
	Cfg       config.Config
	IndexPath string
}

// Failure 是单个页面的失败记录。按错误模型，它不会中断整批构建。
type Failure struct {
	Path string
	Err  error
}

type Result struct {
	Pages    int
	Warnings []ingest.Warning
	Failures []Failure
}

type jobResult struct {
	record   index.Record
	warns    []ingest.Warning
	failure  *Failure
	skip     bool
	skipNote string
}

// Run 发现源文件并逐页跑流水线：一个 worker 一个页面。
// 页面之间不共享可变状态，模板引擎构建一次、只读共享。
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	renderer, err := render.Lookup(b.Cfg.Build.Renderer)
	if err != nil {
		return nil, err
	}
	tpl, err := render.NewTemplateEngine(b.Cfg.Build.TemplateDir)
	if err != nil {
		return nil, err
	}

	files, err := ingest.DiscoverSource(b.Cfg.Build.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("discover source(%s): %w", b.Cfg.Build.ContentDir, err)
	}

	workers := runtime.GOMAXPROCS(0)
	jobs := make(chan ingest.SourceFile)
	results := make(chan jobResult)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sf := range jobs {
				results <- b.buildOne(sf, renderer, tpl)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- f:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	res := &Result{}
	var records []index.Record
	for r := range results {
		res.Warnings = append(res.Warnings, r.warns...)
		if r.failure != nil {
			res.Failures = append(res.Failures, *r.failure)
			continue
		}
		if r.skip {
			log.Printf("[build] skip %s: %s", r.record.SourcePath, r.skipNote)
			continue
		}
		records = append(records, r.record)
		res.Pages++
	}

	st, err := index.Open(index.OpenOptions{Path: b.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer st.Close()
	if err := st.Rebuild(records); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	return res, nil
}

func (b *Builder) buildOne(sf ingest.SourceFile, r render.Renderer, tpl *render.TemplateEngine) jobResult {
	p, warns, err := page.Load(sf.Path, b.Cfg, r, tpl)
	if err != nil {
		return jobResult{warns: warns, failure: &Failure{Path: sf.Path, Err: err}}
	}

	rec := index.Record{SourcePath: sf.Path, Meta: p.Meta}

	if !p.Meta.Published {
		return jobResult{record: rec, warns: warns, skip: true, skipNote: "not published"}
	}

	if _, err := p.Render(b.templateVars()); err != nil {
		return jobResult{warns: warns, failure: &Failure{Path: sf.Path, Err: err}}
	}
	if err := p.Write(); err != nil {
		return jobResult{warns: warns, failure: &Failure{Path: sf.Path, Err: err}}
	}

	return jobResult{record: rec, warns: warns}
}

func (b *Builder) templateVars() map[string]any {
	return map[string]any{
		"site": b.Cfg.Site,
	}
}
