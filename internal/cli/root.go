// Package cli implements the pathreplay command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/pathreplay/internal/config"
	"github.com/banshee-data/pathreplay/internal/monitoring"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string

	// Config is loaded in PersistentPreRunE.
	Config *config.ViewerConfig
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pathreplay",
		Short: "Replay planar robot trajectories",
		Long: `pathreplay plays back a sequence of timed 2D trajectories in a loop and
shows the sampled pose, the global start and end poses, and the relative
transforms between them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "viewer config JSON (defaults apply when empty)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "debug|info|warn|error (overrides config)")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func (o *RootOptions) load() error {
	cfg := config.EmptyViewerConfig()
	if o.ConfigPath != "" {
		loaded, err := config.LoadViewerConfig(o.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	o.Config = cfg

	level := cfg.GetLogLevel()
	if o.LogLevel != "" {
		level = o.LogLevel
	}
	return monitoring.SetLevel(level)
}

// viewerConfig returns the loaded config, or defaults when a subcommand runs
// without the root's pre-run hook (as in tests).
func (o *RootOptions) viewerConfig() *config.ViewerConfig {
	if o.Config == nil {
		return config.EmptyViewerConfig()
	}
	return o.Config
}
