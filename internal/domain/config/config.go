package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	domainerr "kiln/internal/domain/errors"
)

type Config struct {
	Site  SiteConfig  `yaml:"site"`
	Build BuildConfig `yaml:"build"`
}

type SiteConfig struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	BaseURL string `yaml:"base_url"`
}

type BuildConfig struct {
	ContentDir  string `yaml:"content_dir"`
	TemplateDir string `yaml:"template_dir"`
	OutputDir   string `yaml:"output_dir"`
	Renderer    string `yaml:"renderer"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title: "Kiln",
		},
		Build: BuildConfig{
			ContentDir:  "content",
			TemplateDir: "templates",
			OutputDir:   ".",
			Renderer:    "plain",
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Build.ContentDir) == "" {
		ve.Add("build.content_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.TemplateDir) == "" {
		ve.Add("build.template_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.OutputDir) == "" {
		ve.Add("build.output_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.Renderer) == "" {
		ve.Add("build.renderer", "must not be empty")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// 直接 Unmarshal 到 cfg 上：文件里写到的字段覆盖默认值，其他保留 Default
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
