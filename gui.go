//go:build gui

package main

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/metcalfc/moonriver/internal/app"
	"github.com/metcalfc/moonriver/internal/catalog"
	"github.com/metcalfc/moonriver/internal/cli"
	"github.com/metcalfc/moonriver/internal/segment"
	"github.com/metcalfc/moonriver/internal/session"
)

func main() {
	cli.Execute(runGUI)
}

var palettes = map[session.Theme][2]string{
	session.ThemeLight: {"#F0E6D2", "#4A403A"},
	session.ThemeSepia: {"#FBF0D9", "#5B4636"},
	session.ThemeDark:  {"#1E1E1E", "#D4D4D4"},
}

func hexColor(s string) color.Color {
	var r, g, b uint8
	fmt.Sscanf(strings.TrimPrefix(s, "#"), "%02x%02x%02x", &r, &g, &b)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// readerTheme applies reading settings on top of the default theme.
type readerTheme struct {
	settings session.Settings
}

func (t readerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	p, ok := palettes[t.settings.Theme]
	if !ok {
		p = palettes[session.ThemeLight]
	}
	switch name {
	case theme.ColorNameBackground:
		return hexColor(p[0])
	case theme.ColorNameForeground:
		return hexColor(p[1])
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t readerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t readerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t readerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return float32(t.settings.FontSize)
	case theme.SizeNameLineSpacing:
		return float32(t.settings.FontSize) * float32(t.settings.LineHeight-1)
	}
	return theme.DefaultTheme().Size(name)
}

func pageSegments(page string, isHTML bool) []widget.RichTextSegment {
	var blocks []segment.Block
	if isHTML {
		blocks = segment.Blocks(page)
	} else {
		for _, p := range strings.Split(page, "\n\n") {
			if text := strings.Join(strings.Fields(p), " "); text != "" {
				blocks = append(blocks, segment.Block{Text: text})
			}
		}
	}

	segs := make([]widget.RichTextSegment, 0, len(blocks))
	for _, b := range blocks {
		style := widget.RichTextStyleParagraph
		if b.Level > 0 {
			style = widget.RichTextStyleSubHeading
		}
		segs = append(segs, &widget.TextSegment{Text: b.Text, Style: style})
	}
	return segs
}

func runGUI(ctx context.Context, a *app.App, storyID string) error {
	fa := fyneapp.New()
	w := fa.NewWindow("Moonriver")

	settings := a.Settings.Load()
	fa.Settings().SetTheme(readerTheme{settings: settings})

	stories := a.Catalog.List()

	page := widget.NewRichText()
	page.Wrapping = fyne.TextWrapWord
	scroll := container.NewVScroll(page)

	titleLabel := widget.NewLabel("")
	titleLabel.TextStyle.Bold = true
	statusLabel := widget.NewLabel("")
	statusLabel.Alignment = fyne.TextAlignCenter

	var showLibrary func()
	ctl := a.NewController(session.RouterFunc(func() {
		fyne.Do(func() { showLibrary() })
	}), scroll)

	updateStatus := func() {
		where := ""
		if ctl.Mode() == session.ModeChapters {
			where = fmt.Sprintf("Chapter %d/%d | ", ctl.Chapter()+1, ctl.ChapterCount())
		}
		statusLabel.SetText(fmt.Sprintf("%sFont: %g | Line: %.1f | %s",
			where, settings.FontSize, settings.LineHeight, settings.Theme))
	}

	prevButton := widget.NewButton("Previous", nil)
	nextButton := widget.NewButton("Next", nil)

	render := func() {
		story := ctl.Story()
		page.Segments = pageSegments(ctl.Page(), story.IsHTML)
		page.Refresh()
		if ctl.CanPrev() {
			prevButton.Enable()
		} else {
			prevButton.Disable()
		}
		if ctl.CanNext() {
			nextButton.Enable()
		} else {
			nextButton.Disable()
		}
		updateStatus()
	}

	prevButton.OnTapped = func() {
		if ctl.Prev() {
			render()
		}
	}
	nextButton.OnTapped = func() {
		if ctl.Next() {
			render()
		}
	}

	changeSettings := func(fn func(session.Settings) session.Settings) {
		s, err := a.Settings.Update(fn)
		settings = s
		fa.Settings().SetTheme(readerTheme{settings: s})
		if err != nil {
			statusLabel.SetText("settings not saved: " + err.Error())
			return
		}
		updateStatus()
	}

	backButton := widget.NewButton("Library", func() { showLibrary() })
	fontDown := widget.NewButton("A-", func() {
		changeSettings(func(s session.Settings) session.Settings { return s.StepFontSize(-1) })
	})
	fontUp := widget.NewButton("A+", func() {
		changeSettings(func(s session.Settings) session.Settings { return s.StepFontSize(1) })
	})
	themeButton := widget.NewButton("Theme", func() {
		changeSettings(func(s session.Settings) session.Settings { return s.NextTheme() })
	})

	header := container.NewHBox(backButton, titleLabel)
	footer := container.NewBorder(nil, nil,
		container.NewHBox(prevButton, fontDown, fontUp, themeButton),
		nextButton,
		statusLabel,
	)
	reading := container.NewBorder(header, footer, nil, nil, scroll)

	scroll.OnScrolled = func(p fyne.Position) {
		ctl.Scroll(float64(p.Y))
	}

	openStory := func(id string) {
		state := ctl.Open(id)
		if state == session.StateNotFound {
			titleLabel.SetText("Story not found")
			page.Segments = []widget.RichTextSegment{
				&widget.TextSegment{Text: "Returning to the library...", Style: widget.RichTextStyleEmphasis},
			}
			page.Refresh()
			prevButton.Disable()
			nextButton.Disable()
			w.SetContent(reading)
			return
		}
		story := ctl.Story()
		titleLabel.SetText(story.Title + " by " + story.Author)
		render()
		w.SetContent(reading)
		if ctl.Mode() == session.ModeScroll {
			scroll.Offset = fyne.NewPos(0, float32(ctl.ScrollOffset()))
			scroll.Refresh()
		} else {
			scroll.ScrollToTop()
		}
	}

	library := widget.NewList(
		func() int { return len(stories) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabel("Title"),
				widget.NewLabel("Preview"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			s := stories[id]
			vbox := obj.(*fyne.Container)
			titleLabel := vbox.Objects[0].(*widget.Label)
			previewLabel := vbox.Objects[1].(*widget.Label)
			titleLabel.SetText(s.Title + " by " + s.Author)
			titleLabel.TextStyle.Bold = true
			previewLabel.SetText(shorten(s, 80))
		},
	)
	library.OnSelected = func(id widget.ListItemID) {
		library.UnselectAll()
		openStory(stories[id].ID)
	}
	libraryView := container.NewBorder(widget.NewLabel("Library"), nil, nil, nil, library)

	showLibrary = func() {
		ctl.Flush()
		ctl.Close()
		stories = a.Catalog.List()
		library.Refresh()
		w.SetContent(libraryView)
	}

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyRight:
			nextButton.OnTapped()
		case fyne.KeyLeft:
			prevButton.OnTapped()
		case fyne.KeyEscape:
			showLibrary()
		case fyne.KeyQ:
			ctl.Flush()
			fa.Quit()
		}
	})
	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case '+', '=':
			fontUp.OnTapped()
		case '-':
			fontDown.OnTapped()
		case ']':
			changeSettings(func(s session.Settings) session.Settings { return s.StepLineHeight(1) })
		case '[':
			changeSettings(func(s session.Settings) session.Settings { return s.StepLineHeight(-1) })
		case 't', 'T':
			themeButton.OnTapped()
		}
	})

	w.SetOnClosed(func() {
		ctl.Flush()
	})

	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(fa.Quit)
		case <-closed:
		}
	}()

	w.Resize(fyne.NewSize(800, 600))
	w.SetContent(libraryView)
	if storyID != "" {
		openStory(storyID)
	}
	w.ShowAndRun()
	return nil
}

func shorten(s catalog.Story, n int) string {
	p := []rune(s.Preview())
	if len(p) <= n {
		return string(p)
	}
	return string(p[:n]) + "..."
}
