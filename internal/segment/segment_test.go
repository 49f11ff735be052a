package segment

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitScenario(t *testing.T) {
	content := "<p>intro</p><hr><h2>Ch1</h2>text1<hr><h2>Ch2</h2>text2<hr><p>end</p>"

	got := Split(content, true)

	want := []string{"<h2>Ch1</h2>text1", "<h2>Ch2</h2>text2"}
	if !reflect.DeepEqual(got.Chapters, want) {
		t.Errorf("Chapters = %q, want %q", got.Chapters, want)
	}
	if got.Footer != "<p>end</p>" {
		t.Errorf("Footer = %q, want %q", got.Footer, "<p>end</p>")
	}
	if !got.Segmented() {
		t.Error("Expected segmented result")
	}
}

func TestSplitSeparatorCount(t *testing.T) {
	for k := 0; k <= 8; k++ {
		var sb strings.Builder
		sb.WriteString("<p>prologue</p>")
		for i := 0; i < k; i++ {
			sb.WriteString("<hr>")
			sb.WriteString("<p>part</p>")
		}

		got := Split(sb.String(), true)

		want := k - 1
		if k == 0 {
			want = 0
		}
		if len(got.Chapters) != want {
			t.Errorf("%d separators: got %d chapters, want %d", k, len(got.Chapters), want)
		}
	}
}

func TestSplitSeparatorVariants(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain", "a<hr>b<hr>c"},
		{"self closing", "a<hr/>b<hr/>c"},
		{"spaced", "a<hr />b<hr />c"},
		{"upper case", "a<HR>b<Hr>c"},
		{"attributes", `a<hr class="chapter">b<hr id="x">c`},
		{"whitespace", "a\n<hr>\n  b  \n<hr>\nc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.content, true)
			if len(got.Chapters) != 1 || got.Chapters[0] != "b" {
				t.Errorf("Chapters = %q, want [b]", got.Chapters)
			}
			if got.Footer != "c" {
				t.Errorf("Footer = %q, want c", got.Footer)
			}
		})
	}
}

func TestSplitUnsegmented(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		isHTML     bool
		wantFooter string
	}{
		{"html without separators", "<p>only</p>", true, "<p>only</p>"},
		{"empty html", "", true, ""},
		{"single separator", "<p>a</p><hr><p>b</p>", true, "<p>b</p>"},
		{"plain text", "Call me Ishmael.\n\nSome years ago", false, "Call me Ishmael.\n\nSome years ago"},
		{"plain text with marker", "a<hr>b<hr>c", false, "a<hr>b<hr>c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.content, tt.isHTML)
			if got.Segmented() {
				t.Errorf("Expected no chapters, got %q", got.Chapters)
			}
			if got.Footer != tt.wantFooter {
				t.Errorf("Footer = %q, want %q", got.Footer, tt.wantFooter)
			}
		})
	}
}

func TestSplitDeterministic(t *testing.T) {
	content := "<p>x</p><hr><h1>One</h1><p>1</p><hr><h1>Two</h1><hr><h1>Three</h1><p>3</p><hr>"

	first := Split(content, true)
	for i := 0; i < 10; i++ {
		if again := Split(content, true); !reflect.DeepEqual(first, again) {
			t.Fatalf("Split not deterministic: %q vs %q", first, again)
		}
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	chapters := []string{"<h2>One</h2><p>a</p>", "<h2>Two</h2><p>b</p>", "<h2>Three</h2>"}

	got := Split(Join("<p>front</p>", chapters, "<p>back</p>"), true)

	if !reflect.DeepEqual(got.Chapters, chapters) {
		t.Errorf("Chapters = %q, want %q", got.Chapters, chapters)
	}
	if got.Footer != "<p>back</p>" {
		t.Errorf("Footer = %q", got.Footer)
	}
}

func BenchmarkSplit(b *testing.B) {
	content := strings.Repeat("<h2>Chapter</h2><p>Some paragraph text here.</p><hr>", 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Split(content, true)
	}
}

func TestStrip(t *testing.T) {
	got := Strip("<p>a</p><hr><p>b</p><HR class=\"x\"/><p>c</p>")
	if got != "<p>a</p><p>b</p><p>c</p>" {
		t.Errorf("Strip = %q", got)
	}
	if r := Split(Strip("x<hr>y<hr>z"), true); r.Segmented() {
		t.Errorf("stripped content still segmented: %+v", r)
	}
}
