package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "read [id]",
		Short: "Open the reader, at the library or at a story",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRead,
	}

	RootCmd.AddCommand(cmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	if RunViewer == nil {
		return errors.New("this build has no reader")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(a)

	// Unknown ids go to the viewer, which shows its own not-found page.
	var id string
	if len(args) > 0 {
		id = args[0]
	}
	a.Log.Debug("starting reader", zap.String("story", id))
	return RunViewer(cmd.Context(), a, id)
}
