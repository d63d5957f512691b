package content

import (
	"regexp"
	"strings"
)

// "Name <addr@host>"，email 部分可选
var authorRe = regexp.MustCompile(`^([^<>]*?)\s+<([^<>\s]+@[^<>\s]+)>\s*$`)

type Author struct {
	Raw   string
	Name  string
	Email string
}

// ParseAuthor 总是成功：不符合 "name <email>" 形式时整串当作 Name
func ParseAuthor(raw string) Author {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Author{}
	}
	a := Author{Raw: raw}
	if m := authorRe.FindStringSubmatch(raw); m != nil {
		a.Name = strings.TrimSpace(m[1])
		a.Email = m[2]
	} else {
		a.Name = raw
	}
	return a
}

func (a Author) IsZero() bool {
	return a.Raw == "" && a.Name == "" && a.Email == ""
}

func (a Author) String() string {
	if a.Name == "" {
		return a.Raw
	}
	if a.Email == "" {
		return a.Name
	}
	return a.Name + " <" + a.Email + ">"
}
