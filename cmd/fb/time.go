package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/harborcrm/flowboard/internal/project"
	"github.com/harborcrm/flowboard/internal/timeentry"
	"github.com/spf13/cobra"
)

func newTimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Time tracking commands",
	}

	cmd.AddCommand(newTimeLogCmd())
	cmd.AddCommand(newTimeDeleteCmd())
	cmd.AddCommand(newTimeRollupCmd())
	return cmd
}

func newTimeLogCmd() *cobra.Command {
	var (
		configPath string
		minutes    int
		billable   bool
		note       string
		workDate   string
	)

	cmd := &cobra.Command{
		Use:   "log <issue-id>",
		Short: "Log time against an issue",
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

			opts := timeentry.LogOpts{Minutes: minutes, Billable: billable, Note: note}
			if workDate != "" {
				day, err := parseDateFlag(workDate, "--date")
				if err != nil {
					return err
				}
				opts.WorkDate = *day
			}

			entry, err := timeentry.Log(gormDB, actorID, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %d minutes on %s (%s)\n",
				entry.Minutes, entry.WorkDate.Format("2006-01-02"), entry.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "minutes worked, 1-1440 (required)")
	cmd.Flags().BoolVar(&billable, "billable", false, "mark the entry billable")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	cmd.Flags().StringVar(&workDate, "date", "", "work date (YYYY-MM-DD, defaults to today)")
	cmd.MarkFlagRequired("minutes")
	return cmd
}

func newTimeDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a time entry (author or owner)",
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

			if err := timeentry.Delete(gormDB, actorID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted time entry %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newTimeRollupCmd() *cobra.Command {
	var (
		configPath string
		userID     string
		issueID    string
		from       string
		to         string
	)

	cmd := &cobra.Command{
		Use:   "rollup <project-id>",
		Short: "Show per-user per-day time totals",
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

			filters := timeentry.RollupFilters{UserID: userID, IssueID: issueID}
			if filters.From, err = parseDateFlag(from, "--from"); err != nil {
				return err
			}
			if filters.To, err = parseDateFlag(to, "--to"); err != nil {
				return err
			}

			rollups, err := timeentry.Rollups(gormDB, args[0], filters)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tUSER\tMINUTES\tBILLABLE")
			for _, r := range rollups {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
					r.WorkDate.Format("2006-01-02"), r.UserID, r.TotalMinutes, r.BillableMinutes)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&userID, "user", "", "filter by user")
	cmd.Flags().StringVar(&issueID, "issue", "", "filter by issue")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	return cmd
}
