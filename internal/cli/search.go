package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stories by title, author or keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(a)

	return printStories(cmd.OutOrStdout(), a.Catalog.Search(strings.Join(args, " ")))
}
