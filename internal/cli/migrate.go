package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/pathreplay/internal/store"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Database string
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate up|down|status",
		Short: "Manage the recording database schema",
		Long: `Apply, roll back or inspect the recording database migrations. play and
sessions apply pending migrations automatically; down rolls back one step.

Examples:
  pathreplay migrate status --db replay.db
  pathreplay migrate down --db replay.db`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command, action string) error {
	st, err := store.OpenUnmigrated(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	switch action {
	case "up":
		err = st.MigrateUp()
	case "down":
		err = st.MigrateDown()
	case "status":
	default:
		return fmt.Errorf("unknown migrate action %q (want up, down or status)", action)
	}
	if err != nil {
		return err
	}

	version, dirty, err := st.MigrateVersion()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
	return nil
}
