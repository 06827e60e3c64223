package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codr1/chroma/internal/app"
	"github.com/codr1/chroma/internal/models"
)

const savedOnLayout = "Jan 2, 2006"

type exportOptions struct {
	output string
}

func newThemesCmd(env *cliEnv, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Manage saved themes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved themes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThemesList(cmd, env, flags)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThemesDelete(cmd, env, flags, args[0])
		},
	})

	opts := &exportOptions{}
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write saved themes as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThemesExport(cmd, env, flags, opts)
		},
	}
	exportCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to this file instead of stdout")
	cmd.AddCommand(exportCmd)

	return cmd
}

func runThemesList(cmd *cobra.Command, env *cliEnv, flags *rootFlags) error {
	application, err := openApp(cmd, env, flags, app.Options{})
	if err != nil {
		return err
	}
	defer application.Close()

	out := cmd.OutOrStdout()
	swatches := newSwatchRenderer(out)
	state := application.Controller.State()
	printWarning(cmd, swatches, state.Warning)

	if len(state.Themes) == 0 {
		fmt.Fprintln(out, "You haven't saved any themes yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSAVED\tCOLORS")
	for _, theme := range state.Themes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", theme.ID, theme.Name, savedOn(theme), swatches.palette(theme.Colors))
	}
	return tw.Flush()
}

func runThemesDelete(cmd *cobra.Command, env *cliEnv, flags *rootFlags, id string) error {
	application, err := openApp(cmd, env, flags, app.Options{})
	if err != nil {
		return err
	}
	defer application.Close()

	out := cmd.OutOrStdout()
	if application.Controller.Delete(cmd.Context(), id) {
		fmt.Fprintf(out, "Deleted theme %s\n", id)
	} else {
		fmt.Fprintf(out, "No saved theme with id %s\n", id)
	}
	printWarning(cmd, newSwatchRenderer(out), application.Controller.State().Warning)
	return nil
}

func runThemesExport(cmd *cobra.Command, env *cliEnv, flags *rootFlags, opts *exportOptions) error {
	application, err := openApp(cmd, env, flags, app.Options{})
	if err != nil {
		return err
	}
	defer application.Close()

	data, err := application.Store.Snapshot()
	if err != nil {
		return newCommandError("export themes", "encoding theme list", err, "Report this as a bug.")
	}

	if opts.output == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(opts.output, append(data, '\n'), 0o644); err != nil {
		return newCommandError("export themes", opts.output, err, "Check that the directory exists and is writable.")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d themes to %s\n", application.Store.Len(), opts.output)
	return nil
}

func savedOn(theme models.ColorTheme) string {
	created, err := theme.CreatedTime()
	if err != nil {
		return theme.CreatedAt
	}
	return created.Format(savedOnLayout)
}

func printWarning(cmd *cobra.Command, swatches swatchRenderer, warning string) {
	if warning != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), swatches.warning(warning))
	}
}
