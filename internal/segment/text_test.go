package segment

import (
	"strings"
	"testing"
)

func TestSanitizeRemovesScript(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		forbidden []string
		keep      []string
	}{
		{
			name:      "script element",
			input:     `<p>hello</p><script>alert(1)</script>`,
			forbidden: []string{"<script", "alert(1)"},
			keep:      []string{"<p>hello</p>"},
		},
		{
			name:      "event handler",
			input:     `<img src="x.png" onerror="alert(1)"><p onclick="steal()">text</p>`,
			forbidden: []string{"onerror", "onclick", "alert", "steal"},
			keep:      []string{"text"},
		},
		{
			name:      "javascript url",
			input:     `<a href="javascript:alert(1)">link</a>`,
			forbidden: []string{"javascript:"},
			keep:      []string{"link"},
		},
		{
			name:      "iframe and style",
			input:     `<iframe src="https://evil.example"></iframe><style>body{}</style><h2>Title</h2>`,
			forbidden: []string{"<iframe", "<style", "body{}"},
			keep:      []string{"<h2>Title</h2>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, f := range tt.forbidden {
				if strings.Contains(got, f) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, f)
				}
			}
			for _, k := range tt.keep {
				if !strings.Contains(got, k) {
					t.Errorf("Sanitize(%q) = %q, should contain %q", tt.input, got, k)
				}
			}
		})
	}
}

func TestSanitizeKeepsSeparators(t *testing.T) {
	input := "<p>intro</p><hr><h2>Ch1</h2><p>text1</p><script>x()</script><hr><p>end</p>"

	got := Split(Sanitize(input), true)

	if len(got.Chapters) != 1 {
		t.Fatalf("Expected 1 chapter after sanitizing, got %q", got.Chapters)
	}
	if strings.Contains(got.Chapters[0], "script") {
		t.Errorf("Chapter kept script: %q", got.Chapters[0])
	}
}

func TestBlocks(t *testing.T) {
	fragment := `
		<h2>Chapter One</h2>
		<p>This is the <b>first</b>
		   paragraph.</p>
		<div>Some <span>nested</span> text.</div>
		<script>ignored()</script>
		<p>Last.</p>`

	blocks := Blocks(fragment)

	want := []Block{
		{Text: "Chapter One", Level: 2},
		{Text: "This is the first paragraph."},
		{Text: "Some nested text."},
		{Text: "Last."},
	}
	if len(blocks) != len(want) {
		t.Fatalf("Blocks = %+v, want %+v", blocks, want)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Errorf("Block %d = %+v, want %+v", i, blocks[i], want[i])
		}
	}

	if got := Text(fragment); !strings.HasPrefix(got, "Chapter One\n\nThis is the first paragraph.") {
		t.Errorf("Text = %q", got)
	}
}

func TestHeading(t *testing.T) {
	tests := []struct {
		fragment string
		want     string
	}{
		{"<h2>Ch1</h2>text1", "Ch1"},
		{"<p>no heading</p>", ""},
		{"<p>a</p><h3>Later <em>title</em></h3>", "Later title"},
	}
	for _, tt := range tests {
		if got := Heading(tt.fragment); got != tt.want {
			t.Errorf("Heading(%q) = %q, want %q", tt.fragment, got, tt.want)
		}
	}
}

func TestTOC(t *testing.T) {
	chapters := []string{
		"<h2>Departure</h2><p>one two three four five six seven eight nine ten eleven</p>",
		"<p>untitled body</p>",
	}

	toc := TOC(chapters)

	if len(toc) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(toc))
	}
	if toc[0].Title != "Departure" || toc[0].Index != 0 {
		t.Errorf("Entry 0 = %+v", toc[0])
	}
	if toc[0].Preview != "one two three four five six seven eight nine ten..." {
		t.Errorf("Preview = %q", toc[0].Preview)
	}
	if toc[1].Title != "Chapter 2" {
		t.Errorf("Fallback title = %q, want Chapter 2", toc[1].Title)
	}
}
