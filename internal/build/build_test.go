package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kiln/internal/domain/config"
	"kiln/internal/index"
)

func testSite(t *testing.T, sources map[string]string) (config.Config, string) {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Build.ContentDir = filepath.Join(root, "content")
	cfg.Build.TemplateDir = filepath.Join(root, "templates")
	cfg.Build.OutputDir = filepath.Join(root, "public")

	if err := os.MkdirAll(cfg.Build.ContentDir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.MkdirAll(cfg.Build.TemplateDir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tpl := `<html><body>{{.page.ContentHTML}}</body></html>`
	if err := os.WriteFile(filepath.Join(cfg.Build.TemplateDir, "default.html"), []byte(tpl), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	for name, body := range sources {
		path := filepath.Join(cfg.Build.ContentDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	return cfg, filepath.Join(root, "index.db")
}

func TestBuilderRun(t *testing.T) {
	t.Parallel()

	cfg, indexPath := testSite(t, map[string]string{
		"hi.md":          "title: Hi\n---\nHello",
		"nested/deep.md": "title: Deep\ncategory: a/b\n---\nDown here",
	})

	b := &Builder{Cfg: cfg, IndexPath: indexPath}
	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}
	if len(res.Failures) != 0 {
		t.Errorf("Failures = %v", res.Failures)
	}

	for _, rel := range []string{"hi.html", "a/b/deep.html"} {
		if _, err := os.Stat(filepath.Join(cfg.Build.OutputDir, rel)); err != nil {
			t.Errorf("missing output %s: %v", rel, err)
		}
	}

	st, err := index.Open(index.OpenOptions{Path: indexPath})
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer st.Close()
	if _, err := st.Get("/a/b/deep.html"); err != nil {
		t.Errorf("index miss: %v", err)
	}
}

func TestBuilderSkipsUnpublished(t *testing.T) {
	t.Parallel()

	cfg, indexPath := testSite(t, map[string]string{
		"draft.md": "title: Draft\npublished: false\n---\nnot yet",
	})

	b := &Builder{Cfg: cfg, IndexPath: indexPath}
	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Pages != 0 {
		t.Errorf("Pages = %d, want 0", res.Pages)
	}
	if _, err := os.Stat(filepath.Join(cfg.Build.OutputDir, "draft.html")); !os.IsNotExist(err) {
		t.Errorf("unpublished page was written: %v", err)
	}
}

func TestBuilderIsolatesPageFailures(t *testing.T) {
	t.Parallel()

	cfg, indexPath := testSite(t, map[string]string{
		"good.md": "title: Good\n---\nfine",
		"bad.md":  "- not\n- a\n- mapping\n---\nbody",
	})

	b := &Builder{Cfg: cfg, IndexPath: indexPath}
	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Pages != 1 {
		t.Errorf("Pages = %d, want the good page built", res.Pages)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("Failures = %v, want exactly one", res.Failures)
	}
	if res.Failures[0].Path != filepath.Join(cfg.Build.ContentDir, "bad.md") {
		t.Errorf("failure path = %q", res.Failures[0].Path)
	}
	if _, err := os.Stat(filepath.Join(cfg.Build.OutputDir, "good.html")); err != nil {
		t.Errorf("good page missing: %v", err)
	}
}

func TestBuilderUnknownRenderer(t *testing.T) {
	t.Parallel()

	cfg, indexPath := testSite(t, nil)
	cfg.Build.Renderer = "restructuredtext"

	b := &Builder{Cfg: cfg, IndexPath: indexPath}
	if _, err := b.Run(context.Background()); err == nil {
		t.Error("Run() with unknown renderer should fail")
	}
}

func TestBuilderCollectsWarnings(t *testing.T) {
	t.Parallel()

	cfg, indexPath := testSite(t, map[string]string{
		"untitled.md": "tags: a, b\n---\nbody",
	})

	b := &Builder{Cfg: cfg, IndexPath: indexPath}
	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a derived-title warning")
	}
	if res.Warnings[0].Path == "" {
		t.Error("warning should carry the source path")
	}
}
