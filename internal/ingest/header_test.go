package ingest

import (
	"errors"
	"strings"
	"testing"

	domainerr "kiln/internal/domain/errors"
)

func TestSplitHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		src        string
		wantHeader string
		wantBody   string
	}{
		{
			name:       "header and body",
			src:        "title: Hi\n---\nHello",
			wantHeader: "title: Hi\n",
			wantBody:   "\nHello",
		},
		{
			name:       "no delimiter means no header",
			src:        "just body text",
			wantHeader: "",
			wantBody:   "just body text",
		},
		{
			name:       "only the first delimiter splits",
			src:        "title: Hi\n---\nbefore\n---\nafter",
			wantHeader: "title: Hi\n",
			wantBody:   "\nbefore\n---\nafter",
		},
		{
			name:       "empty file",
			src:        "",
			wantHeader: "",
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			header, body := SplitHeader(tt.src)
			if header != tt.wantHeader {
				t.Errorf("header = %q, want %q", header, tt.wantHeader)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParseHeader(t *testing.T) {
	t.Parallel()

	t.Run("mapping", func(t *testing.T) {
		t.Parallel()
		m, err := ParseHeader("title: Hi\ntags: a, b\n")
		if err != nil {
			t.Fatalf("ParseHeader() error = %v", err)
		}
		if m["title"] != "Hi" {
			t.Errorf("title = %v", m["title"])
		}
	})

	t.Run("blank header is an empty mapping", func(t *testing.T) {
		t.Parallel()
		m, err := ParseHeader("  \n\t\n")
		if err != nil {
			t.Fatalf("ParseHeader() error = %v", err)
		}
		if len(m) != 0 {
			t.Errorf("m = %v, want empty", m)
		}
	})

	t.Run("non-mapping header is a metadata parse error", func(t *testing.T) {
		t.Parallel()
		_, err := ParseHeader("- just\n- a\n- list\n")
		if !errors.Is(err, domainerr.ErrMetadataParse) {
			t.Errorf("error = %v, want ErrMetadataParse", err)
		}
	})

	t.Run("broken yaml is a metadata parse error", func(t *testing.T) {
		t.Parallel()
		_, err := ParseHeader("title: [unclosed\n")
		if !errors.Is(err, domainerr.ErrMetadataParse) {
			t.Errorf("error = %v, want ErrMetadataParse", err)
		}
	})
}

func TestSplitThenParse(t *testing.T) {
	t.Parallel()

	header, body := SplitHeader("title: Hi\n---\nHello")
	raw, err := ParseHeader(header)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	m, _ := Normalize(raw, "x.md", testClock)
	if m.Title != "Hi" || m.Slug != "hi" || m.URL != "/hi.html" {
		t.Errorf("meta = %+v", m)
	}
	if !strings.Contains(body, "Hello") {
		t.Errorf("body = %q", body)
	}
}
