package render

import (
	"fmt"
	"sort"
	"sync"
)

// Renderer 把正文原文转成 HTML 片段。实现必须可以被多个页面并发使用。
type Renderer interface {
	Name() string
	Render(src []byte) ([]byte, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Renderer{}
)

func Register(r Renderer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[r.Name()] = r
}

func Lookup(name string) (Renderer, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if r, ok := registry[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("unknown renderer %q (have %v)", name, names())
}

func names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Plain 是缺省渲染器：原文直接透传
type Plain struct{}

func (Plain) Name() string { return "plain" }

func (Plain) Render(src []byte) ([]byte, error) {
	return src, nil
}

func init() {
	Register(Plain{})
	Register(NewMarkdown())
}
