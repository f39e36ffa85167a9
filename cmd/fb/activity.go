package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/harborcrm/flowboard/internal/activity"
	"github.com/harborcrm/flowboard/internal/project"
	"github.com/spf13/cobra"
)

func newActivityCmd() *cobra.Command {
	var (
		configPath string
		kind       string
		issueID    string
		byActor    string
		since      string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "activity <project-id>",
		Short: "Show the project activity feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			if err := project.RequireMember(gormDB, args[0], actorID); err != nil {
				return err
			}

			filters := activity.ListFilters{
				Kind:    kind,
				IssueID: issueID,
				ActorID: byActor,
				Limit:   limit,
			}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("--since must be YYYY-MM-DD: %q", since)
				}
				filters.Since = &t
			}

			events, err := activity.List(gormDB, args[0], filters)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tKIND\tACTOR\tISSUE")
			for _, ev := range events {
				issueCol := ev.IssueID
				if issueCol == "" {
					issueCol = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					ev.CreatedAt.Format("2006-01-02 15:04"), ev.Kind, ev.ActorID, issueCol)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by event kind")
	cmd.Flags().StringVar(&issueID, "issue", "", "filter by issue")
	cmd.Flags().StringVar(&byActor, "by", "", "filter by acting user")
	cmd.Flags().StringVar(&since, "since", "", "only events on or after this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum events to show")
	return cmd
}
