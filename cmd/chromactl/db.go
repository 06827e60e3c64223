package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codr1/chroma/internal/app"
)

var errDownNotConfirmed = errors.New("refusing to roll back without --yes")

func newDBCmd(env *cliEnv, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and maintain the theme database",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBVersion(cmd, env, flags)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "slots",
		Short: "List stored slot keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSlots(cmd, env, flags)
		},
	})

	var confirmed bool
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations, dropping saved themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return newCommandError("roll back migrations", flags.configPath, errDownNotConfirmed, "Export your themes first, then rerun with --yes.")
			}
			return runDBDown(cmd, env, flags)
		},
	}
	downCmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm that saved themes will be dropped")
	cmd.AddCommand(downCmd)

	return cmd
}

func runDBVersion(cmd *cobra.Command, env *cliEnv, flags *rootFlags) error {
	application, err := openApp(cmd, env, flags, app.Options{})
	if err != nil {
		return err
	}
	defer application.Close()

	version, dirty, err := application.DB.SchemaVersion()
	if err != nil {
		return newCommandError("read schema version", application.Config.Database.Filename, err, "Check the database path in your config file.")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Version: %d, Dirty: %v\n", version, dirty)
	return nil
}

func runDBSlots(cmd *cobra.Command, env *cliEnv, flags *rootFlags) error {
	application, err := openApp(cmd, env, flags, app.Options{})
	if err != nil {
		return err
	}
	defer application.Close()

	keys, err := application.DB.Slots().Keys(cmd.Context())
	if err != nil {
		return newCommandError("list slots", application.Config.Database.Filename, err, "Check the database path in your config file.")
	}
	out := cmd.OutOrStdout()
	if len(keys) == 0 {
		fmt.Fprintln(out, "No slots stored.")
		return nil
	}
	for _, key := range keys {
		fmt.Fprintln(out, key)
	}
	return nil
}

func runDBDown(cmd *cobra.Command, env *cliEnv, flags *rootFlags) error {
	application, err := openApp(cmd, env, flags, app.Options{})
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.DB.MigrateDown(); err != nil {
		return newCommandError("roll back migrations", application.Config.Database.Filename, err, "Check the database path in your config file.")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Rolled back all migrations")
	return nil
}
