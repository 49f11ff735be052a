// Package segment splits story content into chapters.
package segment

import (
	"regexp"
	"strings"
)

// Separator is the marker written between chapters by Join.
const Separator = "<hr>"

// separatorRegex matches <hr>, <hr/>, <hr /> and <hr class="..."> in any case.
var separatorRegex = regexp.MustCompile(`(?i)<hr\b[^>]*>`)

// Result is the chapter layout of one story.
type Result struct {
	Chapters []string
	Footer   string
}

// Segmented reports whether the content has navigable chapters. Unsegmented
// content is rendered whole, in free-scroll mode.
func (r Result) Segmented() bool {
	return len(r.Chapters) > 0
}

// Split segments content. HTML content is cut at every separator: the
// segment before the first separator is a prologue and is dropped, the
// segment after the last one is the footer, and everything between is a
// chapter. k separators therefore yield k-1 chapters. Plain text is never
// segmented and is returned whole as the footer.
//
// Fragments are trimmed of surrounding whitespace.
func Split(content string, isHTML bool) Result {
	if !isHTML {
		return Result{Footer: content}
	}

	parts := separatorRegex.Split(content, -1)
	if len(parts) < 2 {
		return Result{Footer: strings.TrimSpace(content)}
	}

	chapters := make([]string, 0, len(parts)-2)
	for _, p := range parts[1 : len(parts)-1] {
		chapters = append(chapters, strings.TrimSpace(p))
	}
	return Result{
		Chapters: chapters,
		Footer:   strings.TrimSpace(parts[len(parts)-1]),
	}
}

// Join is the inverse of Split: it lays out a prologue, chapters and footer
// with a separator before every chapter and before the footer.
func Join(prologue string, chapters []string, footer string) string {
	var sb strings.Builder
	sb.WriteString(prologue)
	for _, ch := range chapters {
		sb.WriteString("\n" + Separator + "\n")
		sb.WriteString(ch)
	}
	sb.WriteString("\n" + Separator + "\n")
	sb.WriteString(footer)
	return sb.String()
}

// Strip removes every separator from s, so s can be embedded as a single
// chapter.
func Strip(s string) string {
	return separatorRegex.ReplaceAllString(s, "")
}
