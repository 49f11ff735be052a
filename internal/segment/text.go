package segment

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Block is one paragraph of rendered text. Level is 1-6 for headings and 0
// for body text.
type Block struct {
	Text  string
	Level int
}

// Entry is one line of a table of contents.
type Entry struct {
	Index   int
	Title   string
	Preview string
}

const previewWords = 10

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true,
	atom.Pre: true, atom.Section: true, atom.Article: true, atom.Header: true,
	atom.Footer: true, atom.Hr: true, atom.Br: true, atom.Tr: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Figure: true,
}

// Blocks flattens an HTML fragment into paragraphs of plain text. Script and
// style content is skipped.
func Blocks(fragment string) []Block {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var blocks []Block
	var cur []string
	level := 0

	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, Block{Text: strings.Join(cur, " "), Level: level})
		}
		cur = nil
		level = 0
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			if l, ok := headingLevels[n.DataAtom]; ok {
				flush()
				level = l
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				flush()
				return
			}
			if blockElements[n.DataAtom] {
				flush()
			}
		}
		if n.Type == html.TextNode {
			cur = append(cur, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			flush()
		}
	}
	walk(doc)
	flush()
	return blocks
}

// Text renders an HTML fragment as blank-line separated paragraphs.
func Text(fragment string) string {
	blocks := Blocks(fragment)
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text
	}
	return strings.Join(out, "\n\n")
}

// Heading returns the text of the first heading in fragment, or "".
func Heading(fragment string) string {
	for _, b := range Blocks(fragment) {
		if b.Level > 0 {
			return b.Text
		}
	}
	return ""
}

// TOC builds a table of contents for chapters. Chapters without a heading
// are titled "Chapter N".
func TOC(chapters []string) []Entry {
	entries := make([]Entry, 0, len(chapters))
	for i, ch := range chapters {
		title := ""
		var words []string
		for _, b := range Blocks(ch) {
			if b.Level > 0 && title == "" {
				title = b.Text
				continue
			}
			if len(words) < previewWords {
				words = append(words, strings.Fields(b.Text)...)
			}
		}
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}

		preview := ""
		if len(words) > 0 {
			if len(words) > previewWords {
				words = words[:previewWords]
			}
			preview = strings.Join(words, " ") + "..."
		}

		entries = append(entries, Entry{Index: i, Title: title, Preview: preview})
	}
	return entries
}
