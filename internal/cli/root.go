// Package cli implements the moonriver commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/metcalfc/moonriver/internal/app"
	"github.com/metcalfc/moonriver/internal/config"
	"github.com/spf13/cobra"
)

// Version info (injected via ldflags)
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Viewer runs an interactive reader. An empty storyID starts at the catalog.
type Viewer func(ctx context.Context, a *app.App, storyID string) error

// RunViewer is the reader used by the read command. Each build sets its own.
var RunViewer Viewer

var (
	configPath  string
	stateDir    string
	backendFlag string
	formatFlag  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "moonriver",
	Short: "A quiet reader for short fiction",
	Long: "Moonriver keeps a small library of stories, remembers your place in each one\n" +
		"and lets you read them chapter by chapter in the terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRead(cmd, nil)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/moonriver/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "State directory (default: $MOONRIVER_STATE_DIR or $XDG_STATE_HOME/moonriver)")
	RootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Storage backend: file, sqlite or memory")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text or json")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if stateDir != "" {
		cfg.StateDir = stateDir
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	return cfg, nil
}

func openApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.Open(cfg)
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Execute runs the command line with viewer as the reader and exits non-zero
// on failure. SIGINT and SIGTERM cancel the command context.
func Execute(viewer Viewer) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Run(ctx, viewer)
	stop()
	if err != nil {
		exitErr(err)
	}
}

// Run executes the command line under ctx with viewer as the reader.
func Run(ctx context.Context, viewer Viewer) error {
	RunViewer = viewer
	return RootCmd.ExecuteContext(ctx)
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
