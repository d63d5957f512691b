package errors

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid")

// 页面流水线的错误分类：全部只影响单个页面，批量构建不会因此中断
var (
	ErrSourceRead       = errors.New("source read")
	ErrMetadataParse    = errors.New("metadata parse")
	ErrTemplateNotFound = errors.New("template not found")
	ErrWrite            = errors.New("write")
)

// PageError 把底层错误归到上面的分类里，并记录出错的源文件
type PageError struct {
	Kind error
	Path string
	Err  error
}

func (e *PageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *PageError) Is(target error) bool {
	return target == e.Kind
}

func (e *PageError) Unwrap() error {
	return e.Err
}

func NewPageError(kind error, path string, err error) *PageError {
	return &PageError{Kind: kind, Path: path, Err: err}
}

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed:\n")
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}
