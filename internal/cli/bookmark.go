package cli

import (
	"errors"
	"fmt"

	"github.com/metcalfc/moonriver/internal/catalog"
	"github.com/metcalfc/moonriver/internal/session"
	"github.com/metcalfc/moonriver/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "bookmark [id]",
		Short: "Show or move the saved reading position",
		Long: "With no id, lists every saved position. With an id, shows the position\n" +
			"in that story, or moves it with --chapter (1-based) or --scroll.",
		Args: cobra.MaximumNArgs(1),
		RunE: runBookmark,
	}

	cmd.Flags().Int("chapter", 0, "Move to this chapter (1-based)")
	cmd.Flags().Float64("scroll", -1, "Set the scroll offset of an unchaptered story")

	RootCmd.AddCommand(cmd)
}

type bookmarkView struct {
	ID       string  `json:"id"`
	Title    string  `json:"title,omitempty"`
	Chapter  int     `json:"chapter,omitempty"`
	Chapters int     `json:"chapters,omitempty"`
	Scroll   float64 `json:"scroll,omitempty"`
}

func runBookmark(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(a)

	if len(args) == 0 {
		return listBookmarks(cmd, a.Store, a.Positions)
	}

	ctl := a.NewController(nil, nil)
	defer ctl.Close()

	id := args[0]
	if ctl.Open(id) != session.StateReady {
		return fmt.Errorf("bookmark %s: %w", id, catalog.ErrNotFound)
	}

	chapter, _ := cmd.Flags().GetInt("chapter")
	scroll, _ := cmd.Flags().GetFloat64("scroll")
	switch {
	case cmd.Flags().Changed("chapter"):
		if ctl.Mode() != session.ModeChapters {
			return fmt.Errorf("bookmark %s: story has no chapters", id)
		}
		if !ctl.GoToChapter(chapter - 1) {
			return fmt.Errorf("bookmark %s: chapter %d out of range 1-%d", id, chapter, ctl.ChapterCount())
		}
	case cmd.Flags().Changed("scroll"):
		if ctl.Mode() != session.ModeScroll {
			return fmt.Errorf("bookmark %s: story is read by chapter, use --chapter", id)
		}
		if scroll < 0 {
			return errors.New("scroll offset must not be negative")
		}
		ctl.Scroll(scroll)
		ctl.Flush()
	}

	v := bookmarkView{ID: id, Title: ctl.Story().Title}
	if ctl.Mode() == session.ModeChapters {
		v.Chapter = ctl.Chapter() + 1
		v.Chapters = ctl.ChapterCount()
	} else {
		v.Scroll = ctl.ScrollOffset()
	}
	return printBookmarks(cmd, []bookmarkView{v})
}

func listBookmarks(cmd *cobra.Command, store storage.Store, positions *session.PositionTracker) error {
	lister, ok := store.(storage.Lister)
	if !ok {
		return errors.New("storage backend cannot list bookmarks")
	}
	keys, err := lister.Keys()
	if err != nil {
		return fmt.Errorf("list bookmarks: %w", err)
	}

	var views []bookmarkView
	for _, key := range keys {
		id, ok := storage.StoryIDFromKey(key)
		if !ok {
			continue
		}
		v, ok := positions.Load(id)
		if !ok {
			continue
		}
		views = append(views, bookmarkView{ID: id, Scroll: v})
	}
	return printBookmarks(cmd, views)
}

func printBookmarks(cmd *cobra.Command, views []bookmarkView) error {
	out := cmd.OutOrStdout()
	if formatFlag == "json" {
		if views == nil {
			views = []bookmarkView{}
		}
		return writeJSON(out, views)
	}
	if len(views) == 0 {
		fmt.Fprintln(out, "No bookmarks.")
		return nil
	}
	for _, v := range views {
		switch {
		case v.Chapters > 0:
			fmt.Fprintf(out, "%s\tchapter %d of %d\n", v.ID, v.Chapter, v.Chapters)
		default:
			fmt.Fprintf(out, "%s\t%g\n", v.ID, v.Scroll)
		}
	}
	return nil
}
