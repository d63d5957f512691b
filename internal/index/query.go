package index

import (
	"encoding/json"
	"errors"
	"strings"

	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("not found")

func (s *Store) Get(url string) (Record, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Record{}, ErrNotFound
	}
	var r Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bPages)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(url))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &r)
	})
	return r, err
}

func (s *Store) GetBySlug(slug string) (Record, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Record{}, ErrNotFound
	}
	var url string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bSlugs)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(slug))
		if v == nil {
			return ErrNotFound
		}
		url = string(v)
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return s.Get(url)
}

// List 按 URL 字典序返回所有记录
func (s *Store) List() ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bPages)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, r)
			return nil
		})
	})
	return out, err
}
