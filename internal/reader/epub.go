package reader

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/metcalfc/moonriver/internal/catalog"
	"github.com/metcalfc/moonriver/internal/segment"
	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// EPUBFormat imports EPUB books. Every spine item with text becomes one chapter.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Import(filename string) (catalog.Story, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return catalog.Story{}, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return catalog.Story{}, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	tocByHref := buildTOCHrefMap(filename, book)

	var chapters []string
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}

		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		body := chapterBody(string(data))
		if strings.TrimSpace(segment.Text(body)) == "" {
			continue
		}

		if segment.Heading(body) == "" {
			if title := lookupTitle(tocByHref, ref.Item.HREF); title != "" {
				body = "<h2>" + html.EscapeString(title) + "</h2>\n" + body
			}
		}
		chapters = append(chapters, body)
	}

	if len(chapters) == 0 {
		return catalog.Story{}, fmt.Errorf("%w: %s has no readable chapters", ErrUnsupported, filename)
	}

	title := strings.TrimSpace(book.Metadata.Title)
	if title == "" {
		title = TitleFromFilename(filename)
	}
	author := strings.TrimSpace(book.Metadata.Creator)
	if author == "" {
		author = UnknownAuthor
	}

	return catalog.Story{
		Title:   title,
		Author:  author,
		Content: segment.Join("", chapters, ""),
		IsHTML:  true,
	}, nil
}

// chapterBody returns the markup inside <body> of an XHTML spine item, with
// any <hr> elements dropped so they cannot split the chapter.
func chapterBody(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}
	removeSeparators(doc)
	body, err := innerBody(doc)
	if err != nil {
		return ""
	}
	return body
}

func removeSeparators(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && strings.EqualFold(c.Data, "hr") {
			n.RemoveChild(c)
		} else {
			removeSeparators(c)
		}
		c = next
	}
}

func lookupTitle(tocByHref map[string]string, href string) string {
	if href == "" {
		return ""
	}
	if t, ok := tocByHref[href]; ok {
		return t
	}
	return tocByHref[path.Base(href)]
}

