// Package reader converts files into stories for the upload set.
package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/metcalfc/moonriver/internal/catalog"
)

// ErrUnsupported is returned for files that hold no readable text.
var ErrUnsupported = errors.New("unsupported file")

// UnknownAuthor is used when a file carries no author metadata.
const UnknownAuthor = "Unknown"

// Format converts files with the given extensions into stories.
type Format interface {
	Name() string
	Extensions() []string
	Import(filename string) (catalog.Story, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Import converts filename using a registered format, or as plain text when
// no format claims the extension. The returned story has no id yet.
func Import(filename string) (catalog.Story, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f.Import(filename)
			}
		}
	}
	return (&TextFormat{}).Import(filename)
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// TextFormat imports plain text. Text stories are never split into chapters.
type TextFormat struct{}

func init() {
	Register(&TextFormat{})
}

func (f *TextFormat) Name() string         { return "Text" }
func (f *TextFormat) Extensions() []string { return []string{".txt", ".text"} }

func (f *TextFormat) Import(filename string) (catalog.Story, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return catalog.Story{}, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return catalog.Story{}, fmt.Errorf("%w: %s has no text", ErrUnsupported, filename)
	}
	return catalog.Story{
		Title:   TitleFromFilename(filename),
		Author:  UnknownAuthor,
		Content: string(data),
	}, nil
}

// TitleFromFilename turns "the-old-man_and_the-sea.txt" into "The Old Man And The Sea".
func TitleFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	if len(words) == 0 {
		return "Untitled"
	}
	return strings.Join(words, " ")
}
