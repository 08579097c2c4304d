package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/pathreplay/internal/store"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Database string
	Frames   string // session ID whose frames to list
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions or the frames of one session",
		Long: `Examples:
  pathreplay sessions --db replay.db
  pathreplay sessions --db replay.db --frames 6f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Frames, "frames", "", "list frames of this session ID")

	return cmd
}

func runSessions(opts *SessionsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if opts.Frames != "" {
		frames, err := st.Frames(ctx, opts.Frames)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "SEQ\tT\tSEGMENT\tOFFSET\tX\tY\tHEADING\tEVENT")
		for _, f := range frames {
			event := ""
			switch {
			case f.CycleCompleted:
				event = "cycle"
			case f.SegmentAdvanced:
				event = "segment"
			}
			fmt.Fprintf(w, "%d\t%.3f\t%d\t%.3f\t%.2f\t%.2f\t%.2f\t%s\n",
				f.Seq, f.Now, f.Index, f.LocalOffset, f.Pose.X, f.Pose.Y, f.Pose.Heading, event)
		}
		return nil
	}

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded")
		return nil
	}
	fmt.Fprintln(w, "ID\tNAME\tSEGMENTS\tDURATION\tFRAMES\tSTARTED\tPLAN")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%d\t%s\t%s\n",
			s.ID, s.Name, s.Segments, s.TotalDuration, s.Frames, s.StartedAt.Local().Format(time.DateTime), s.Plan)
	}
	return nil
}
