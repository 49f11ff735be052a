package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metcalfc/moonriver/internal/app"
	"github.com/spf13/pflag"
)

// run executes the root command against a state dir private to the test.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("MOONRIVER_LOG", "off")
	t.Setenv("MOONRIVER_BACKEND", "")
	t.Setenv("MOONRIVER_STATE_DIR", "")

	resetFlags()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append([]string{"--state-dir", dir}, args...))
	t.Cleanup(resetFlags)

	err := RootCmd.Execute()
	return out.String(), err
}

// resetFlags restores flags changed by a previous Execute; cobra keeps
// parsed values between runs.
func resetFlags() {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				f.Value.Set(f.DefValue)
				f.Changed = false
			}
		})
	}
	reset(RootCmd.PersistentFlags())
	for _, c := range RootCmd.Commands() {
		reset(c.Flags())
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, id := range []string{"moon-river", "moby-dick", "to-the-lighthouse"} {
		if !strings.Contains(out, id) {
			t.Errorf("list output missing %s:\n%s", id, out)
		}
	}
	if strings.Index(out, "moon-river") > strings.Index(out, "moby-dick") {
		t.Errorf("built-ins out of catalog order:\n%s", out)
	}
}

func TestSearch(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "search", "WHALE")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "moby-dick") || strings.Contains(out, "moon-river") {
		t.Errorf("search output:\n%s", out)
	}
}

func TestImportAndListUploads(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "evening-walk.txt")
	if err := os.WriteFile(file, []byte("The lamps came on one by one."), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dir, "import", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.HasPrefix(out, "uploaded-") || !strings.Contains(out, "Evening Walk") {
		t.Errorf("import output = %q", out)
	}

	out, err = run(t, dir, "import", file)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !strings.Contains(out, "already in library") {
		t.Errorf("duplicate import output = %q", out)
	}

	out, err = run(t, dir, "list", "--uploads", "--format", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var views []storyView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(views) != 1 {
		t.Fatalf("uploads = %d, want 1", len(views))
	}
	if !views[0].Uploaded || views[0].Title != "Evening Walk" || views[0].Preview != "The lamps came on one by one." {
		t.Errorf("upload = %+v", views[0])
	}
}

func TestImportMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "import", filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error")
	}
}

func TestSettings(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "settings")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if !strings.Contains(out, "font size:   18") || !strings.Contains(out, "theme:       light") {
		t.Errorf("defaults:\n%s", out)
	}

	if _, err := run(t, dir, "settings", "--font-size", "99", "--line-height", "1.0", "--theme", "dark"); err != nil {
		t.Fatalf("settings update: %v", err)
	}

	out, err = run(t, dir, "settings")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	for _, want := range []string{"font size:   32", "line height: 1.2", "theme:       dark"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, dir, "settings", "--reset")
	if err != nil {
		t.Fatalf("settings reset: %v", err)
	}
	if !strings.Contains(out, "font size:   18") {
		t.Errorf("reset:\n%s", out)
	}
}

func TestSettingsUnknownTheme(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "settings", "--theme", "neon"); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestBookmark(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "bookmark")
	if err != nil {
		t.Fatalf("bookmark: %v", err)
	}
	if !strings.Contains(out, "No bookmarks.") {
		t.Errorf("empty list = %q", out)
	}

	out, err = run(t, dir, "bookmark", "moon-river", "--chapter", "3")
	if err != nil {
		t.Fatalf("bookmark set: %v", err)
	}
	if !strings.Contains(out, "chapter 3 of 4") {
		t.Errorf("set output = %q", out)
	}

	out, err = run(t, dir, "bookmark", "moon-river")
	if err != nil {
		t.Fatalf("bookmark show: %v", err)
	}
	if !strings.Contains(out, "chapter 3 of 4") {
		t.Errorf("show output = %q", out)
	}

	if _, err := run(t, dir, "bookmark", "moby-dick", "--scroll", "240"); err != nil {
		t.Fatalf("bookmark scroll: %v", err)
	}

	out, err = run(t, dir, "bookmark")
	if err != nil {
		t.Fatalf("bookmark list: %v", err)
	}
	if !strings.Contains(out, "moon-river\t2") || !strings.Contains(out, "moby-dick\t240") {
		t.Errorf("list output = %q", out)
	}
}

func TestBookmarkErrors(t *testing.T) {
	dir := t.TempDir()
	tests := [][]string{
		{"bookmark", "no-such-story"},
		{"bookmark", "moon-river", "--chapter", "9"},
		{"bookmark", "moon-river", "--scroll", "10"},
		{"bookmark", "moby-dick", "--chapter", "1"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, err := run(t, dir, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	var gotID string
	var called bool
	prev := RunViewer
	RunViewer = func(ctx context.Context, a *app.App, storyID string) error {
		called = true
		gotID = storyID
		if _, err := a.Catalog.Get("moon-river"); err != nil {
			t.Errorf("catalog not wired: %v", err)
		}
		return nil
	}
	t.Cleanup(func() { RunViewer = prev })

	if _, err := run(t, dir, "read", "moby-dick"); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !called || gotID != "moby-dick" {
		t.Errorf("viewer called = %v with %q", called, gotID)
	}

	called = false
	if _, err := run(t, dir); err != nil {
		t.Fatalf("root: %v", err)
	}
	if !called || gotID != "" {
		t.Errorf("root should open the library, got called = %v id %q", called, gotID)
	}
}

func TestReadUnknownStoryReachesViewer(t *testing.T) {
	var gotID string
	prev := RunViewer
	RunViewer = func(ctx context.Context, a *app.App, storyID string) error {
		gotID = storyID
		return nil
	}
	t.Cleanup(func() { RunViewer = prev })

	if _, err := run(t, t.TempDir(), "read", "no-such-story"); err != nil {
		t.Fatalf("read: %v", err)
	}
	if gotID != "no-such-story" {
		t.Errorf("viewer got %q, want no-such-story", gotID)
	}
}

func TestRunPassesContextToViewer(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("MOONRIVER_LOG", "off")
	t.Setenv("MOONRIVER_BACKEND", "")
	t.Setenv("MOONRIVER_STATE_DIR", "")
	resetFlags()
	t.Cleanup(resetFlags)
	RootCmd.SetArgs([]string{"--state-dir", dir})

	prev := RunViewer
	t.Cleanup(func() { RunViewer = prev })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var gotErr error
	err := Run(ctx, func(ctx context.Context, a *app.App, storyID string) error {
		gotErr = ctx.Err()
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(gotErr, context.Canceled) {
		t.Errorf("viewer ctx.Err() = %v, want context.Canceled", gotErr)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "moonriver dev") {
		t.Errorf("version = %q", out)
	}
}
