package cli

import (
	"fmt"

	"github.com/metcalfc/moonriver/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change reading preferences",
		Long: fmt.Sprintf("Font size is kept within %d-%d and line height within %.1f-%.1f;\n"+
			"out of range values are clamped. Themes: light, sepia, dark.",
			session.MinFontSize, session.MaxFontSize, session.MinLineHeight, session.MaxLineHeight),
		Args: cobra.NoArgs,
		RunE: runSettings,
	}

	cmd.Flags().Int("font-size", 0, "Font size")
	cmd.Flags().Float64("line-height", 0, "Line height")
	cmd.Flags().String("theme", "", "Theme: light, sepia or dark")
	cmd.Flags().Bool("reset", false, "Restore the defaults")

	RootCmd.AddCommand(cmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	fontSize, _ := flags.GetInt("font-size")
	lineHeight, _ := flags.GetFloat64("line-height")
	theme, _ := flags.GetString("theme")
	reset, _ := flags.GetBool("reset")

	if flags.Changed("theme") && !session.Theme(theme).Valid() {
		return fmt.Errorf("unknown theme %q", theme)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp(a)

	settings := a.Settings.Load()
	if reset || flags.Changed("font-size") || flags.Changed("line-height") || flags.Changed("theme") {
		settings, err = a.Settings.Update(func(s session.Settings) session.Settings {
			if reset {
				s = session.DefaultSettings()
			}
			if flags.Changed("font-size") {
				s = s.WithFontSize(float64(fontSize))
			}
			if flags.Changed("line-height") {
				s = s.WithLineHeight(lineHeight)
			}
			if flags.Changed("theme") {
				s = s.WithTheme(session.Theme(theme))
			}
			return s
		})
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if formatFlag == "json" {
		return writeJSON(out, settings)
	}
	fmt.Fprintf(out, "font size:   %g\n", settings.FontSize)
	fmt.Fprintf(out, "line height: %.1f\n", settings.LineHeight)
	fmt.Fprintf(out, "theme:       %s\n", settings.Theme)
	return nil
}
