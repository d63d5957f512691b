package index

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"kiln/internal/domain/content"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(OpenOptions{Path: filepath.Join(t.TempDir(), "index.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testRecord(slug, url string) Record {
	return Record{
		SourcePath: "content/" + slug + ".md",
		Meta: content.Meta{
			Title:     slug,
			Slug:      slug,
			Category:  []string{},
			Published: true,
			DateTime:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Tags:      []string{},
			URL:       url,
		},
	}
}

func TestRebuildAndGet(t *testing.T) {
	t.Parallel()

	st := testStore(t)
	if err := st.Rebuild([]Record{
		testRecord("one", "/one.html"),
		testRecord("two", "/a/two.html"),
	}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	r, err := st.Get("/a/two.html")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if r.Meta.Slug != "two" {
		t.Errorf("Slug = %q, want %q", r.Meta.Slug, "two")
	}
	if r.SourcePath != "content/two.md" {
		t.Errorf("SourcePath = %q", r.SourcePath)
	}

	if _, err := st.Get("/missing.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetBySlug(t *testing.T) {
	t.Parallel()

	st := testStore(t)
	if err := st.Rebuild([]Record{testRecord("one", "/one.html")}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	r, err := st.GetBySlug("one")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if r.Meta.URL != "/one.html" {
		t.Errorf("URL = %q", r.Meta.URL)
	}

	if _, err := st.GetBySlug("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRebuildReplacesEverything(t *testing.T) {
	t.Parallel()

	st := testStore(t)
	if err := st.Rebuild([]Record{testRecord("old", "/old.html")}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if err := st.Rebuild([]Record{testRecord("new", "/new.html")}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	if _, err := st.Get("/old.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale record survived rebuild: %v", err)
	}
	records, err := st.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Meta.Slug != "new" {
		t.Errorf("records = %+v", records)
	}
}

func TestRebuildLastWriterWinsOnSameURL(t *testing.T) {
	t.Parallel()

	st := testStore(t)
	a := testRecord("a", "/same.html")
	b := testRecord("b", "/same.html")
	if err := st.Rebuild([]Record{a, b}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	r, err := st.Get("/same.html")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if r.Meta.Slug != "b" {
		t.Errorf("Slug = %q, want the last writer", r.Meta.Slug)
	}
}

func TestListSortedByURL(t *testing.T) {
	t.Parallel()

	st := testStore(t)
	if err := st.Rebuild([]Record{
		testRecord("z", "/z.html"),
		testRecord("a", "/a.html"),
	}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	records, err := st.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 || records[0].Meta.URL != "/a.html" || records[1].Meta.URL != "/z.html" {
		t.Errorf("records out of order: %+v", records)
	}
}
