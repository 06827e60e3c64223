package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/chroma/internal/app"
	"github.com/codr1/chroma/internal/config"
)

const defaultConfigPath = "config.yaml"

type rootFlags struct {
	configPath string
	verbose    bool
}

// cliEnv holds the process boundaries so commands can run against buffers in tests.
type cliEnv struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	open   func(ctx context.Context, cfg *config.Config, opts app.Options) (*app.App, error)
}

func defaultEnv() *cliEnv {
	return &cliEnv{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		open:   app.Open,
	}
}

func newRootCmd(env *cliEnv) *cobra.Command {
	flags := &rootFlags{}

	defaultPath := os.Getenv("CHROMA_CONFIG")
	if defaultPath == "" {
		defaultPath = defaultConfigPath
	}

	cmd := &cobra.Command{
		Use:           "chromactl",
		Short:         "Extract color palettes with AI and manage saved themes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(env.stderr, flags.verbose)
		},
	}

	cmd.SetIn(env.stdin)
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", defaultPath, "Path to config.yaml (a .env beside it is loaded too)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newExtractCmd(env, flags))
	cmd.AddCommand(newThemesCmd(env, flags))
	cmd.AddCommand(newDBCmd(env, flags))

	return cmd
}

func setupLogger(w io.Writer, verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

// openApp loads configuration and opens the application for one command.
func openApp(cmd *cobra.Command, env *cliEnv, flags *rootFlags, opts app.Options) (*app.App, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, newCommandError("load configuration", flags.configPath, err, "Check the config file and your .env, or pass --config.")
	}

	ctx := log.Logger.WithContext(cmd.Context())
	application, err := env.open(ctx, cfg, opts)
	if err != nil {
		suggestion := "Check the database path in your config file."
		if opts.WithAI {
			suggestion = "Set GEMINI_API_KEY in the environment or in a .env file beside the config."
		}
		return nil, newCommandError("open chroma", cfg.Database.Filename, err, suggestion)
	}
	return application, nil
}
