package ingest

import (
	"io/fs"
	"path/filepath"
	"strings"
)

type SourceFile struct {
	Path string
}

var sourceExts = map[string]struct{}{
	".md":       {},
	".markdown": {},
	".txt":      {},
}

func DiscoverSource(root string) ([]SourceFile, error) {
	var out []SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// 隐藏目录（.git 之类）整个跳过
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if _, ok := sourceExts[ext]; ok {
			out = append(out, SourceFile{Path: path})
		}
		return nil
	})
	return out, err
}
