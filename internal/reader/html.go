package reader

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/metcalfc/moonriver/internal/catalog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLFormat imports HTML documents. Chapters are marked by <hr> separators
// in the body, exactly as in built-in stories.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Name() string         { return "HTML" }
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (f *HTMLFormat) Import(filename string) (catalog.Story, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return catalog.Story{}, err
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return catalog.Story{}, fmt.Errorf("failed to parse html: %w", err)
	}

	body, err := innerBody(doc)
	if err != nil {
		return catalog.Story{}, err
	}
	if strings.TrimSpace(body) == "" {
		return catalog.Story{}, fmt.Errorf("%w: %s has an empty body", ErrUnsupported, filename)
	}

	title := documentTitle(doc)
	if title == "" {
		title = TitleFromFilename(filename)
	}
	author := metaContent(doc, "author")
	if author == "" {
		author = UnknownAuthor
	}

	return catalog.Story{
		Title:   title,
		Author:  author,
		Content: body,
		IsHTML:  true,
	}, nil
}

// innerBody renders the children of <body>.
func innerBody(doc *html.Node) (string, error) {
	body := findElement(doc, atom.Body)
	if body == nil {
		return "", nil
	}
	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render body: %w", err)
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func documentTitle(doc *html.Node) string {
	t := findElement(doc, atom.Title)
	if t == nil {
		return ""
	}
	var sb strings.Builder
	for c := t.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func metaContent(doc *html.Node, name string) string {
	var out string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if out != "" {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			var isName bool
			var content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					isName = strings.EqualFold(a.Val, name)
				case "content":
					content = a.Val
				}
			}
			if isName {
				out = strings.TrimSpace(content)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
