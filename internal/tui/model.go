// Package tui is the terminal reader: a library list and a reading view.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/metcalfc/moonriver/internal/app"
	"github.com/metcalfc/moonriver/internal/catalog"
	"github.com/metcalfc/moonriver/internal/segment"
	"github.com/metcalfc/moonriver/internal/session"
	"go.uber.org/zap"
)

type screen int

const (
	screenLibrary screen = iota
	screenReading
	screenContents
)

// Lines reserved above and below the viewport.
const (
	headerHeight = 2
	footerHeight = 2
)

// redirectMsg is sent when a missing story's redirect fires.
type redirectMsg struct{}

type storyItem struct {
	story catalog.Story
}

func (i storyItem) Title() string { return i.story.Title }
func (i storyItem) Description() string {
	return "by " + i.story.Author + " · " + i.story.Preview()
}
func (i storyItem) FilterValue() string {
	return i.story.Title + " " + i.story.Author + " " + strings.Join(i.story.Keywords, " ")
}

type chapterItem struct {
	entry segment.Entry
}

func (i chapterItem) Title() string       { return fmt.Sprintf("%d. %s", i.entry.Index+1, i.entry.Title) }
func (i chapterItem) Description() string { return i.entry.Preview }
func (i chapterItem) FilterValue() string { return i.entry.Title }

// scroller lets the controller reset the reading viewport.
type scroller struct {
	vp *viewport.Model
}

func (s scroller) ScrollToTop() { s.vp.GotoTop() }

// Model is the bubbletea model of the reader.
type Model struct {
	app       *app.App
	ctl       *session.Controller
	redirects chan struct{}
	waiting   chan struct{}
	settings  session.Settings

	screen   screen
	library  list.Model
	contents list.Model
	viewport viewport.Model
	width    int
	height   int
	err      error
	quitting bool
}

// New returns a reader model. A non-empty storyID opens that story first.
func New(a *app.App, storyID string) *Model {
	m := &Model{
		app:       a,
		redirects: make(chan struct{}, 1),
		settings:  a.Settings.Load(),
		width:     80,
		height:    24,
	}

	m.library = list.New(nil, list.NewDefaultDelegate(), m.width, m.height)
	m.library.Title = "Moonriver"
	m.refreshLibrary()

	m.contents = list.New(nil, list.NewDefaultDelegate(), m.width, m.height)
	m.contents.Title = "Contents"
	m.contents.SetFilteringEnabled(false)

	m.viewport = viewport.New(m.width, m.height-headerHeight-footerHeight)

	router := session.RouterFunc(func() {
		select {
		case m.redirects <- struct{}{}:
		default:
		}
	})
	m.ctl = a.NewController(router, scroller{vp: &m.viewport})

	if storyID != "" {
		m.open(storyID)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.screen == screenReading && m.ctl.State() == session.StateNotFound {
		return m.waitRedirect()
	}
	return nil
}

// waitRedirect returns a command that delivers redirectMsg when the
// controller redirects, or nil once the wait is abandoned by stopWaiting.
func (m *Model) waitRedirect() tea.Cmd {
	m.stopWaiting()
	ch, done := m.redirects, make(chan struct{})
	m.waiting = done
	return func() tea.Msg {
		select {
		case <-ch:
			return redirectMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) stopWaiting() {
	if m.waiting != nil {
		close(m.waiting)
		m.waiting = nil
	}
}

func (m *Model) refreshLibrary() {
	stories := m.app.Catalog.List()
	items := make([]list.Item, len(stories))
	for i, s := range stories {
		items[i] = storyItem{story: s}
	}
	m.library.SetItems(items)
}

// open starts reading storyID and returns the command that waits for a
// not-found redirect, if any.
func (m *Model) open(storyID string) tea.Cmd {
	m.stopWaiting()
	m.screen = screenReading
	state := m.ctl.Open(storyID)
	m.app.Log.Debug("open story", zap.String("story", storyID), zap.Stringer("state", state))
	if state == session.StateNotFound {
		m.viewport.SetContent("")
		return m.waitRedirect()
	}
	m.renderPage()
	if m.ctl.Mode() == session.ModeScroll {
		m.viewport.SetYOffset(int(m.ctl.ScrollOffset()))
	} else {
		m.viewport.GotoTop()
	}
	return nil
}

// leave returns to the library, committing any pending scroll position.
func (m *Model) leave() {
	m.stopWaiting()
	m.ctl.Flush()
	m.ctl.Close()
	m.screen = screenLibrary
}

func (m *Model) renderPage() {
	story := m.ctl.Story()
	m.viewport.SetContent(renderPage(m.ctl.Page(), story.IsHTML, m.settings, m.viewport.Width))
}

func (m *Model) updateSettings(fn func(session.Settings) session.Settings) {
	s, err := m.app.Settings.Update(fn)
	m.settings = s
	m.err = err
	m.renderPage()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.library.SetSize(msg.Width, msg.Height)
		m.contents.SetSize(msg.Width, msg.Height)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-headerHeight-footerHeight)
		if m.screen != screenLibrary && m.ctl.State() == session.StateReady {
			m.renderPage()
		}
		return m, nil

	case redirectMsg:
		m.waiting = nil
		m.ctl.Close()
		m.screen = screenLibrary
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.screen {
		case screenLibrary:
			return m.updateLibrary(msg)
		case screenContents:
			return m.updateContents(msg)
		default:
			return m.updateReading(msg)
		}
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenLibrary:
		m.library, cmd = m.library.Update(msg)
	case screenContents:
		m.contents, cmd = m.contents.Update(msg)
	default:
		cmd = m.scroll(msg)
	}
	return m, cmd
}

// scroll passes msg to the viewport and records any change of offset.
func (m *Model) scroll(msg tea.Msg) tea.Cmd {
	if m.ctl.State() != session.StateReady {
		return nil
	}
	before := m.viewport.YOffset
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if m.viewport.YOffset != before {
		m.ctl.Scroll(float64(m.viewport.YOffset))
	}
	return cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.stopWaiting()
	m.ctl.Flush()
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.library.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.library, cmd = m.library.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "enter":
		item, ok := m.library.SelectedItem().(storyItem)
		if !ok {
			return m, nil
		}
		return m, m.open(item.story.ID)
	}

	var cmd tea.Cmd
	m.library, cmd = m.library.Update(msg)
	return m, cmd
}

func (m *Model) updateContents(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "tab":
		m.screen = screenReading
		return m, nil
	case "enter":
		if item, ok := m.contents.SelectedItem().(chapterItem); ok {
			m.ctl.GoToChapter(item.entry.Index)
			m.renderPage()
		}
		m.screen = screenReading
		return m, nil
	}

	var cmd tea.Cmd
	m.contents, cmd = m.contents.Update(msg)
	return m, cmd
}

func (m *Model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "esc", "backspace":
		m.leave()
		return m, nil
	}

	if m.ctl.State() != session.StateReady {
		return m, nil
	}

	switch msg.String() {
	case "n", "right":
		if m.ctl.Next() {
			m.renderPage()
		}
		return m, nil
	case "p", "left":
		if m.ctl.Prev() {
			m.renderPage()
		}
		return m, nil
	case "tab":
		if m.ctl.Mode() != session.ModeChapters {
			return m, nil
		}
		toc := m.ctl.TOC()
		items := make([]list.Item, len(toc))
		for i, e := range toc {
			items[i] = chapterItem{entry: e}
		}
		cmd := m.contents.SetItems(items)
		m.contents.Select(m.ctl.Chapter())
		m.screen = screenContents
		return m, cmd
	case "+", "=":
		m.updateSettings(func(s session.Settings) session.Settings { return s.StepFontSize(1) })
		return m, nil
	case "-":
		m.updateSettings(func(s session.Settings) session.Settings { return s.StepFontSize(-1) })
		return m, nil
	case "]":
		m.updateSettings(func(s session.Settings) session.Settings { return s.StepLineHeight(1) })
		return m, nil
	case "[":
		m.updateSettings(func(s session.Settings) session.Settings { return s.StepLineHeight(-1) })
		return m, nil
	case "t":
		m.updateSettings(func(s session.Settings) session.Settings { return s.NextTheme() })
		return m, nil
	}

	return m, m.scroll(msg)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenLibrary:
		return m.library.View()
	case screenContents:
		return m.contents.View()
	}

	switch m.ctl.State() {
	case session.StateNotFound:
		return "\n" + notFoundStyle.Render("  Story not found.") + "\n\n" +
			controlsStyle.Render("  Returning to the library...")
	case session.StateLoading:
		return "\n  Loading..."
	}

	story := m.ctl.Story()
	header := titleStyle.Render(story.Title) + authorStyle.Render("by "+story.Author)

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.status())
	sb.WriteString("\n")

	controls := "ESC: library  +/-: font  [/]: spacing  T: theme  Q: quit"
	if m.ctl.Mode() == session.ModeChapters {
		controls = "N/P: chapter  TAB: contents  " + controls
	}
	sb.WriteString(controlsStyle.Render(controls))
	return sb.String()
}

func (m *Model) status() string {
	var where string
	if m.ctl.Mode() == session.ModeChapters {
		where = fmt.Sprintf("Chapter %d/%d", m.ctl.Chapter()+1, m.ctl.ChapterCount())
	} else {
		where = fmt.Sprintf("%.0f%%", m.viewport.ScrollPercent()*100)
	}
	line := fmt.Sprintf("%s | Font: %g | Line: %.1f | %s",
		where, m.settings.FontSize, m.settings.LineHeight, m.settings.Theme)
	if m.err != nil {
		line += " | settings not saved"
	}
	return statusStyle.Render(line)
}
