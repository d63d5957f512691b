package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"kiln/internal/build"
	"kiln/internal/domain/config"
	"kiln/internal/index"
	"kiln/internal/serve"
)

func main() {
	sub := "build"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		sub = args[0]
		args = args[1:]
	}

	fs := pflag.NewFlagSet("kiln "+sub, pflag.ExitOnError)
	configPath := fs.String("config", "site.yaml", "site config file")
	indexPath := fs.String("index", ".kiln/index.db", "page index path")
	addr := fs.String("addr", ":8080", "dev server address (serve)")
	outputDir := fs.String("output", "", "override build.output_dir")
	renderer := fs.String("renderer", "", "override build.renderer")
	_ = fs.Parse(args)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if *outputDir != "" {
		cfg.Build.OutputDir = *outputDir
	}
	if *renderer != "" {
		cfg.Build.Renderer = *renderer
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	switch sub {
	case "build":
		os.Exit(runBuild(cfg, *indexPath))
	case "serve":
		os.Exit(runServe(cfg, *indexPath, *addr))
	case "list":
		os.Exit(runList(*indexPath))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want build, serve or list)\n", sub)
		os.Exit(2)
	}
}

func runBuild(cfg config.Config, indexPath string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &build.Builder{Cfg: cfg, IndexPath: indexPath}
	res, err := b.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build error:", err.Error())
		return 1
	}

	for _, w := range res.Warnings {
		log.Printf("[warn] %s: %s", w.Path, w.Msg)
	}
	for _, f := range res.Failures {
		log.Printf("[error] %s: %v", f.Path, f.Err)
	}
	log.Printf("[build] %d pages written to %s", res.Pages, cfg.Build.OutputDir)

	if len(res.Failures) > 0 {
		return 1
	}
	return 0
}

func runServe(cfg config.Config, indexPath, addr string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := serve.New(cfg, indexPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "serve init error:", err.Error())
		return 1
	}
	defer s.Close()

	if err := s.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintln(os.Stderr, "serve error:", err.Error())
		return 1
	}
	return 0
}

func runList(indexPath string) int {
	st, err := index.Open(index.OpenOptions{Path: indexPath})
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index error:", err.Error())
		return 1
	}
	defer st.Close()

	records, err := st.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, "list error:", err.Error())
		return 1
	}
	for _, r := range records {
		fmt.Printf("%-40s %-20s %s\n", r.Meta.URL, r.Meta.Slug, r.Meta.Title)
	}
	return 0
}
