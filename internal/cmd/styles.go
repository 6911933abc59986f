package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mapboxutil/internal/mapbox"
	"github.com/MeKo-Tech/mapboxutil/internal/style"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "Manage styles through the Mapbox Styles API",
}

var stylesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the styles of --username",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		styles, err := newClient().ListStyles(cmd.Context(), viper.GetString("username"), viper.GetBool("styles.draft"))
		if err != nil {
			return err
		}
		return printJSON(cmd, styles)
	},
}

var stylesGetCmd = &cobra.Command{
	Use:   "get STYLE_ID",
	Short: "Print a style document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newClient().GetStyle(cmd.Context(), viper.GetString("username"), args[0], viper.GetBool("styles.draft"))
		if err != nil {
			return err
		}
		return printJSON(cmd, s)
	},
}

var stylesDeleteCmd = &cobra.Command{
	Use:   "delete STYLE_ID",
	Short: "Delete a style",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteStyle(cmd.Context(), viper.GetString("username"), args[0]); err != nil {
			return err
		}
		logger.Info("Style deleted", "id", args[0])
		return nil
	},
}

var stylesIDCmd = &cobra.Command{
	Use:   "id NAME",
	Short: "Print the id of the style called NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := newClient().StyleIDByName(cmd.Context(), args[0], nil, viper.GetString("username"), viper.GetBool("styles.draft"))
		if err != nil {
			return fmt.Errorf("style %q: %w", args[0], err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
		return err
	},
}

var stylesBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Print the style document described by the \"style\" config section",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := configuredStyle()
		if err != nil {
			return err
		}
		return printJSON(cmd, s)
	},
}

var stylesPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Create or update the configured style",
	Long: `Build the style from the "style" config section and upload it. An existing
style with the same name is updated, otherwise a new style is created.`,
	Args: cobra.NoArgs,
	RunE: runStylesPush,
}

func init() {
	rootCmd.AddCommand(stylesCmd)
	stylesCmd.AddCommand(stylesListCmd, stylesGetCmd, stylesDeleteCmd, stylesIDCmd, stylesBuildCmd, stylesPushCmd)

	stylesCmd.PersistentFlags().Bool("draft", false, "Use the draft version of styles")
	if err := viper.BindPFlag("styles.draft", stylesCmd.PersistentFlags().Lookup("draft")); err != nil {
		panic(fmt.Sprintf("failed to bind flag draft: %v", err))
	}
}

// configuredStyle builds the style document of the "style" config section.
func configuredStyle() (style.Style, error) {
	if !viper.IsSet("style") {
		return style.Style{}, fmt.Errorf("no style configured (add a \"style\" section to the config file)")
	}

	var def style.Definition
	if err := viper.UnmarshalKey("style", &def); err != nil {
		return style.Style{}, fmt.Errorf("failed to decode style config: %w", err)
	}
	if viper.GetBool("styles.draft") {
		def.Draft = true
	}
	return def.Build()
}

func runStylesPush(cmd *cobra.Command, args []string) error {
	s, err := configuredStyle()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := newClient()
	username := viper.GetString("username")

	id, err := client.StyleIDByName(ctx, s.Name, nil, username, false)
	var resp map[string]any
	switch {
	case errors.Is(err, mapbox.ErrStyleNotFound):
		resp, err = client.CreateStyle(ctx, username, s)
		if err != nil {
			return fmt.Errorf("failed to create style %q: %w", s.Name, err)
		}
		logger.Info("Style created", "name", s.Name, "id", resp["id"], "layers", len(s.Layers))
	case err != nil:
		return err
	default:
		resp, err = client.UpdateStyle(ctx, username, id, s)
		if err != nil {
			return fmt.Errorf("failed to update style %q: %w", s.Name, err)
		}
		logger.Info("Style updated", "name", s.Name, "id", id, "layers", len(s.Layers))
	}

	return printJSON(cmd, resp)
}
