package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codr1/chroma/internal/ai"
	"github.com/codr1/chroma/internal/app"
	"github.com/codr1/chroma/internal/studio"
)

type extractOptions struct {
	save bool
	name string
}

func newExtractCmd(env *cliEnv, flags *rootFlags) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a five-color palette from CSS, a website URL, or an image",
	}

	cmd.PersistentFlags().BoolVar(&opts.save, "save", false, "Save the palette as a theme after extraction")
	cmd.PersistentFlags().StringVar(&opts.name, "name", "", "Theme name to save under instead of prompting")

	cmd.AddCommand(&cobra.Command{
		Use:   "css <file|->",
		Short: "Extract from a CSS file, or from stdin with -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			css, err := readSource(env.stdin, args[0])
			if err != nil {
				return newCommandError("read CSS", args[0], err, "Pass a readable CSS file or - for stdin.")
			}
			return runExtract(cmd, env, flags, opts, ai.CSSInput(string(css)))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "url <url>",
		Short: "Suggest a palette for a website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, env, flags, opts, ai.URLInput(args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "image <file>",
		Short: "Extract from a PNG, JPEG, or WEBP image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(env.stdin, args[0])
			if err != nil {
				return newCommandError("read image", args[0], err, "Pass a readable image file or - for stdin.")
			}
			return runExtract(cmd, env, flags, opts, ai.ImageInput(data, ""))
		},
	})

	return cmd
}

func readSource(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runExtract(cmd *cobra.Command, env *cliEnv, flags *rootFlags, opts *extractOptions, in ai.Input) error {
	application, err := openApp(cmd, env, flags, app.Options{WithAI: true})
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	swatches := newSwatchRenderer(out)

	state := application.Controller.Extract(ctx, in)
	if state.Error != "" {
		return newCommandError("extract palette", string(in.Kind), errors.New(state.Error), "Try a different input.")
	}
	printPalette(out, swatches, state.Palette)

	if !opts.save {
		return nil
	}

	var prompter studio.NamePrompter = newTerminalPrompter(env.stdin, out)
	if opts.name != "" {
		prompter = fixedPrompter{name: opts.name}
	}

	theme, saved, err := application.Controller.Save(ctx, prompter)
	if err != nil {
		return newCommandError("save theme", string(in.Kind), err, "Run the extraction again and retry the save.")
	}
	if !saved {
		fmt.Fprintln(out, "Save cancelled.")
		return nil
	}

	fmt.Fprintf(out, "Saved %s (%s)\n", swatches.title(theme.Name), theme.ID)
	if warning := application.Controller.State().Warning; warning != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), swatches.warning(warning))
	}
	return nil
}
