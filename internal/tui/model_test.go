package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/metcalfc/moonriver/internal/app"
	"github.com/metcalfc/moonriver/internal/clock"
	"github.com/metcalfc/moonriver/internal/config"
	"github.com/metcalfc/moonriver/internal/session"
	"github.com/metcalfc/moonriver/internal/storage"
)

func newTestApp(t *testing.T) (*app.App, *storage.MemoryStore, *clock.Manual) {
	t.Helper()
	store := storage.NewMemoryStore()
	clk := clock.NewManual()
	a, err := app.New(config.Default(), store, clk, nil)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return a, store, clk
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestOpenFromLibrary(t *testing.T) {
	a, store, _ := newTestApp(t)
	m := New(a, "")
	send(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	if m.screen != screenLibrary {
		t.Fatalf("screen = %v, want library", m.screen)
	}

	send(m, key("enter"))
	if m.screen != screenReading {
		t.Fatalf("screen = %v, want reading", m.screen)
	}
	if got := m.ctl.Story().ID; got != "moon-river" {
		t.Fatalf("opened %q, want the first story", got)
	}
	if m.ctl.Chapter() != 0 {
		t.Errorf("chapter = %d, want 0", m.ctl.Chapter())
	}

	send(m, key("n"), key("n"))
	if m.ctl.Chapter() != 2 {
		t.Errorf("chapter = %d, want 2", m.ctl.Chapter())
	}
	if v, _ := store.Get(storage.BookmarkKey("moon-river")); v != "2" {
		t.Errorf("bookmark = %q, want 2", v)
	}

	send(m, key("p"))
	if m.ctl.Chapter() != 1 {
		t.Errorf("chapter = %d, want 1", m.ctl.Chapter())
	}
	if !strings.Contains(m.View(), "Chapter 2/4") {
		t.Errorf("status missing chapter:\n%s", m.View())
	}

	send(m, key("esc"))
	if m.screen != screenLibrary {
		t.Errorf("screen = %v, want library after esc", m.screen)
	}
}

func TestResumeSavedChapter(t *testing.T) {
	a, store, _ := newTestApp(t)
	store.Set(storage.BookmarkKey("moon-river"), "3")

	m := New(a, "moon-river")
	if m.ctl.Chapter() != 3 {
		t.Errorf("chapter = %d, want 3", m.ctl.Chapter())
	}
	if m.ctl.CanNext() {
		t.Error("CanNext on last chapter")
	}
	send(m, key("n"))
	if m.ctl.Chapter() != 3 {
		t.Errorf("chapter = %d after next on last chapter", m.ctl.Chapter())
	}
}

func TestNotFoundRedirects(t *testing.T) {
	a, _, clk := newTestApp(t)
	m := New(a, "no-such-story")

	if m.ctl.State() != session.StateNotFound {
		t.Fatalf("state = %v, want not found", m.ctl.State())
	}
	if !strings.Contains(m.View(), "Story not found.") {
		t.Errorf("view:\n%s", m.View())
	}

	wait := m.Init()
	if wait == nil {
		t.Fatal("Init returned no redirect command")
	}

	clk.Advance(999 * time.Millisecond)
	select {
	case <-m.redirects:
		t.Fatal("redirected before one second")
	default:
	}

	clk.Advance(time.Millisecond)
	msg := wait()
	if _, ok := msg.(redirectMsg); !ok {
		t.Fatalf("msg = %T, want redirectMsg", msg)
	}
	send(m, msg)
	if m.screen != screenLibrary {
		t.Errorf("screen = %v, want library", m.screen)
	}

	clk.Advance(5 * time.Second)
	if len(m.redirects) != 0 {
		t.Error("redirect fired more than once")
	}
}

func TestLeavingNotFoundEndsRedirectWait(t *testing.T) {
	a, _, clk := newTestApp(t)
	m := New(a, "no-such-story")
	wait := m.Init()
	if wait == nil {
		t.Fatal("Init returned no redirect command")
	}

	send(m, key("esc"))
	if m.screen != screenLibrary {
		t.Fatalf("screen = %v, want library", m.screen)
	}

	got := make(chan tea.Msg, 1)
	go func() { got <- wait() }()
	select {
	case msg := <-got:
		if msg != nil {
			t.Errorf("msg = %T, want nil", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("redirect wait still blocked after leaving")
	}

	clk.Advance(5 * time.Second)
	if len(m.redirects) != 0 {
		t.Error("redirect fired after leaving")
	}
}

func TestScrollModeSavesOffset(t *testing.T) {
	a, store, clk := newTestApp(t)
	m := New(a, "")
	send(m, tea.WindowSizeMsg{Width: 80, Height: 12})
	m.open("moby-dick")

	if m.ctl.Mode() != session.ModeScroll {
		t.Fatalf("mode = %v, want scroll", m.ctl.Mode())
	}

	send(m, key("down"), key("down"), key("down"))
	if m.viewport.YOffset != 3 {
		t.Fatalf("YOffset = %d, want 3", m.viewport.YOffset)
	}
	if _, ok := store.Get(storage.BookmarkKey("moby-dick")); ok {
		t.Error("scroll saved before the quiet period")
	}

	clk.Advance(500 * time.Millisecond)
	if v, _ := store.Get(storage.BookmarkKey("moby-dick")); v != "3" {
		t.Errorf("bookmark = %q, want 3", v)
	}

	send(m, key("esc"))
	m.open("moby-dick")
	if m.viewport.YOffset != 3 {
		t.Errorf("restored YOffset = %d, want 3", m.viewport.YOffset)
	}
}

func TestQuitFlushesScroll(t *testing.T) {
	a, store, _ := newTestApp(t)
	m := New(a, "moby-dick")
	send(m, tea.WindowSizeMsg{Width: 80, Height: 12})

	send(m, key("down"))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if v, _ := store.Get(storage.BookmarkKey("moby-dick")); v != "1" {
		t.Errorf("bookmark = %q, want 1 after quit", v)
	}
}

func TestSettingsKeys(t *testing.T) {
	a, _, _ := newTestApp(t)
	m := New(a, "moon-river")

	send(m, key("+"), key("+"), key("]"), key("t"))
	want := session.Settings{FontSize: 20, LineHeight: 1.8, Theme: session.ThemeSepia}
	if m.settings != want {
		t.Errorf("settings = %+v, want %+v", m.settings, want)
	}
	if got := a.Settings.Load(); got != want {
		t.Errorf("saved settings = %+v, want %+v", got, want)
	}

	for i := 0; i < 40; i++ {
		send(m, key("-"))
	}
	if m.settings.FontSize != session.MinFontSize {
		t.Errorf("font size = %g, want clamped to %d", m.settings.FontSize, session.MinFontSize)
	}
}

func TestContentsJump(t *testing.T) {
	a, store, _ := newTestApp(t)
	m := New(a, "moon-river")
	send(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	send(m, key("tab"))
	if m.screen != screenContents {
		t.Fatalf("screen = %v, want contents", m.screen)
	}
	if n := len(m.contents.Items()); n != 4 {
		t.Fatalf("contents items = %d, want 4", n)
	}

	send(m, key("down"), key("down"), key("enter"))
	if m.screen != screenReading {
		t.Errorf("screen = %v, want reading", m.screen)
	}
	if m.ctl.Chapter() != 2 {
		t.Errorf("chapter = %d, want 2", m.ctl.Chapter())
	}
	if v, _ := store.Get(storage.BookmarkKey("moon-river")); v != "2" {
		t.Errorf("bookmark = %q, want 2", v)
	}
}
