package index

import (
	"encoding/json"
	"strings"

	bolt "go.etcd.io/bbolt"

	"kiln/internal/domain/content"
)

// Record 是一条索引记录：归一化后的元数据加上它来自哪个源文件
type Record struct {
	SourcePath string       `json:"source_path"`
	Meta       content.Meta `json:"meta"`
}

// Rebuild 全量重建索引。同一个 URL 后写的覆盖先写的，和落盘行为一致。
func (s *Store) Rebuild(records []Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_ = tx.DeleteBucket(bPages)
		_ = tx.DeleteBucket(bSlugs)

		pagesB, err := tx.CreateBucket(bPages)
		if err != nil {
			return err
		}
		slugsB, err := tx.CreateBucket(bSlugs)
		if err != nil {
			return err
		}

		for _, r := range records {
			url := strings.TrimSpace(r.Meta.URL)
			if url == "" {
				continue
			}
			rb, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := pagesB.Put([]byte(url), rb); err != nil {
				return err
			}
			if slug := strings.TrimSpace(r.Meta.Slug); slug != "" {
				if err := slugsB.Put([]byte(slug), []byte(url)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
