package serve

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"kiln/internal/domain/config"
	"kiln/internal/index"
	"kiln/internal/ingest"
	"kiln/internal/page"
	"kiln/internal/render"
)

// Server 是开发预览：请求路径经索引找回源文件，现场跑一遍页面流水线。
// 不落盘，落盘是 build 的事。
type Server struct {
	cfg       config.Config
	indexPath string
	idx       *index.Store
	renderer  render.Renderer

	mu  sync.RWMutex
	tpl *render.TemplateEngine

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, indexPath string) (*Server, error) {
	r, err := render.Lookup(cfg.Build.Renderer)
	if err != nil {
		return nil, err
	}
	tpl, err := render.NewTemplateEngine(cfg.Build.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("serve: %w", err)
	}
	st, err := index.Open(index.OpenOptions{Path: indexPath})
	if err != nil {
		return nil, fmt.Errorf("serve: failed to open index: %w", err)
	}

	return &Server{
		cfg:       cfg,
		indexPath: indexPath,
		idx:       st,
		renderer:  r,
		tpl:       tpl,
		sseConns:  make(map[chan string]struct{}),
	}, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.idx != nil {
		return s.idx.Close()
	}
	return nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.rebuild(); err != nil {
		return err
	}
	if err := s.startWatch(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/dev/events", s.handleSSE)

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// 支持 ctx 取消
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("[serve] listening on %s", addr)
	return srv.ListenAndServe()
}

// rebuild 重读源目录、重建索引、重新加载模板
func (s *Server) rebuild() error {
	files, err := ingest.DiscoverSource(s.cfg.Build.ContentDir)
	if err != nil {
		return fmt.Errorf("discover source: %w", err)
	}

	tpl, err := render.NewTemplateEngine(s.cfg.Build.TemplateDir)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tpl = tpl
	s.mu.Unlock()

	var records []index.Record
	for _, sf := range files {
		p, warns, err := page.Load(sf.Path, s.cfg, s.renderer, tpl)
		for _, w := range warns {
			log.Printf("[warn] %s: %s", w.Path, w.Msg)
		}
		if err != nil {
			// 单个页面出错不拖垮其他页面
			log.Printf("[warn] %s: %v", sf.Path, err)
			continue
		}
		records = append(records, index.Record{SourcePath: sf.Path, Meta: p.Meta})
	}

	if err := s.idx.Rebuild(records); err != nil {
		return fmt.Errorf("index rebuild: %w", err)
	}
	log.Printf("[serve] indexed %d pages", len(records))
	s.broadcastSSE("reload")
	return nil
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		for _, root := range []string{s.cfg.Build.ContentDir, s.cfg.Build.TemplateDir} {
			walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					return w.Add(path)
				}
				return nil
			})
			if walkErr != nil {
				err = walkErr
				return
			}
		}
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	log.Printf("[serve] watching for file changes ...")
	debounce := time.NewTicker(time.Hour)
	debounce.Stop()

	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(200 * time.Millisecond)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[warn] watcher error: %v", err)
		case <-debounce.C:
			if err := s.rebuild(); err != nil {
				log.Printf("[serve] rebuild error: %v", err)
			}
		}
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		s.handleListing(w, r)
		return
	}

	rec, err := s.idx.Get(r.URL.Path)
	if errors.Is(err, index.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "index query error", http.StatusInternalServerError)
		return
	}

	s.mu.RLock()
	tpl := s.tpl
	s.mu.RUnlock()

	p, _, err := page.Load(rec.SourcePath, s.cfg, s.renderer, tpl)
	if err != nil {
		log.Printf("load page error: %v", err)
		http.Error(w, "load page error", http.StatusInternalServerError)
		return
	}
	htmlBytes, err := p.Render(map[string]any{"site": s.cfg.Site})
	if err != nil {
		log.Printf("render page error: %v", err)
		http.Error(w, "render page error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, htmlBytes)
}

// 根路径给一个简单的页面清单，纯开发用
func (s *Server) handleListing(w http.ResponseWriter, _ *http.Request) {
	records, err := s.idx.List()
	if err != nil {
		http.Error(w, "index query error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<h1>%s</h1>\n<ul>\n", html.EscapeString(s.cfg.Site.Title))
	for _, rec := range records {
		fmt.Fprintf(w, "<li><a href=%q>%s</a></li>\n",
			rec.Meta.URL, html.EscapeString(rec.Meta.Title))
	}
	fmt.Fprint(w, "</ul>\n")
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		close(ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
