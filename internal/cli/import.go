package cli

import (
	"fmt"
	"strings"

	"github.com/metcalfc/moonriver/internal/reader"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Add text, Markdown, HTML or EPUB files to the library",
		Long: "Import converts each file into a story and adds it to the upload set.\n" +
			"Files whose content is already in the library are skipped.\n\n" +
			"Supported formats:\n  " + strings.Join(reader.SupportedFormats(), "\n  ") +
			"\n\nOther extensions are read as plain text.",
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("title", "t", "", "Title to use instead of the file's own")
	cmd.Flags().StringP("author", "a", "", "Author to use instead of the file's own")
	cmd.Flags().StringSliceP("keywords", "k", nil, "Keywords for search (comma-separated)")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(a)

	out := cmd.OutOrStdout()
	for _, filename := range args {
		story, err := reader.Import(filename)
		if err != nil {
			return fmt.Errorf("import %s: %w", filename, err)
		}
		if title != "" && len(args) == 1 {
			story.Title = title
		}
		if author != "" {
			story.Author = author
		}
		if len(keywords) > 0 {
			story.Keywords = keywords
		}

		stored, added, err := a.Catalog.AddUpload(story)
		if err != nil {
			return fmt.Errorf("import %s: %w", filename, err)
		}
		a.Log.Info("story imported",
			zap.String("file", filename),
			zap.String("story", stored.ID),
			zap.Bool("added", added))

		if added {
			fmt.Fprintf(out, "%s\t%s\n", stored.ID, stored.Title)
		} else {
			fmt.Fprintf(out, "%s\t%s (already in library)\n", stored.ID, stored.Title)
		}
	}
	return nil
}
