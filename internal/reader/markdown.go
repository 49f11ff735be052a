package reader

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/metcalfc/moonriver/internal/catalog"
	"github.com/metcalfc/moonriver/internal/segment"
	"github.com/yuin/goldmark"
)

// MarkdownFormat imports Markdown files. Headers at the chapter level start
// a new chapter: level 1 when the file has two or more, level 2 otherwise.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

// headerRegex matches markdown headers (# to ######)
var headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

func (f *MarkdownFormat) Import(filename string) (catalog.Story, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return catalog.Story{}, err
	}
	src := string(data)
	if strings.TrimSpace(src) == "" {
		return catalog.Story{}, fmt.Errorf("%w: %s has no text", ErrUnsupported, filename)
	}

	title, prologue, chapters := splitMarkdown(src)
	if title == "" {
		title = TitleFromFilename(filename)
	}

	story := catalog.Story{
		Title:  title,
		Author: UnknownAuthor,
		IsHTML: true,
	}

	if len(chapters) == 0 {
		body, err := renderMarkdown(prologue)
		if err != nil {
			return catalog.Story{}, err
		}
		story.Content = body
		return story, nil
	}

	head, err := renderMarkdown(prologue)
	if err != nil {
		return catalog.Story{}, err
	}
	rendered := make([]string, len(chapters))
	for i, ch := range chapters {
		if rendered[i], err = renderMarkdown(ch); err != nil {
			return catalog.Story{}, err
		}
	}
	story.Content = segment.Join(head, rendered, "")
	return story, nil
}

// splitMarkdown cuts src into chapter sources at the chapter header level.
// A lone level-1 header is taken as the document title and removed. Text
// before the first chapter header is returned as the prologue.
func splitMarkdown(src string) (title, prologue string, chapters []string) {
	lines := strings.Split(src, "\n")

	var h1 []int
	var h2 int
	inFence := false
	for i, line := range lines {
		if isFence(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headerRegex.FindStringSubmatch(line); m != nil {
			switch len(m[1]) {
			case 1:
				h1 = append(h1, i)
			case 2:
				h2++
			}
		}
	}

	level := 1
	if len(h1) < 2 {
		level = 2
		if len(h1) == 1 {
			title = strings.TrimSpace(headerRegex.FindStringSubmatch(lines[h1[0]])[2])
			lines = append(lines[:h1[0]:h1[0]], lines[h1[0]+1:]...)
		}
		if h2 == 0 {
			return title, strings.Join(lines, "\n"), nil
		}
	}

	var cur []string
	started := false
	inFence = false
	flush := func() {
		if started {
			chapters = append(chapters, strings.Join(cur, "\n"))
		} else {
			prologue = strings.Join(cur, "\n")
		}
		cur = nil
	}
	for _, line := range lines {
		if isFence(line) {
			inFence = !inFence
		} else if !inFence {
			if m := headerRegex.FindStringSubmatch(line); m != nil && len(m[1]) == level {
				flush()
				started = true
			}
		}
		cur = append(cur, line)
	}
	flush()
	return title, prologue, chapters
}

func isFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return removeRules(buf.String()), nil
}

// removeRules drops thematic breaks so they cannot split a chapter.
func removeRules(s string) string {
	return strings.TrimSpace(segment.Strip(s))
}
