package cli

import (
	"fmt"
	"io"

	"github.com/metcalfc/moonriver/internal/catalog"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories in the library",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().BoolP("uploads", "u", false, "Only list imported stories")

	RootCmd.AddCommand(cmd)
}

// storyView is the listing form of a story; content is replaced by a preview.
type storyView struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Keywords []string `json:"keywords,omitempty"`
	Uploaded bool     `json:"uploaded"`
	Preview  string   `json:"preview"`
}

func runList(cmd *cobra.Command, args []string) error {
	uploadsOnly, _ := cmd.Flags().GetBool("uploads")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(a)

	stories := a.Catalog.List()
	if uploadsOnly {
		stories = a.Catalog.Uploads()
	}
	return printStories(cmd.OutOrStdout(), stories)
}

func printStories(w io.Writer, stories []catalog.Story) error {
	if formatFlag == "json" {
		views := make([]storyView, len(stories))
		for i, s := range stories {
			views[i] = storyView{
				ID:       s.ID,
				Title:    s.Title,
				Author:   s.Author,
				Keywords: s.Keywords,
				Uploaded: s.Uploaded(),
				Preview:  s.Preview(),
			}
		}
		return writeJSON(w, views)
	}

	if len(stories) == 0 {
		fmt.Fprintln(w, "No stories.")
		return nil
	}
	for _, s := range stories {
		fmt.Fprintf(w, "%-40s %s by %s\n", s.ID, s.Title, s.Author)
	}
	return nil
}
