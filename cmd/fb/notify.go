package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/harborcrm/flowboard/internal/issue"
	"github.com/harborcrm/flowboard/internal/notify"
	"github.com/harborcrm/flowboard/internal/project"
	"github.com/spf13/cobra"
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Watch and notification commands",
	}

	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newNotifyListCmd())
	cmd.AddCommand(newNotifyReadCmd())
	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		configPath string
		issueID    string
		off        bool
	)

	cmd := &cobra.Command{
		Use:   "watch <project-id>",
		Short: "Watch a project or a single issue",
		Long:  "Subscribes the acting user to activity. With --issue, only that issue; with --off, unsubscribes.",
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

			projectID := args[0]
			if issueID != "" {
				iss, err := issue.Get(gormDB, issueID, actorID)
				if err != nil {
					return err
				}
				projectID = iss.ProjectID
			} else if err := project.RequireMember(gormDB, projectID, actorID); err != nil {
				return err
			}

			if err := notify.SetWatch(gormDB, projectID, actorID, issueID, !off); err != nil {
				return err
			}

			verb := "Watching"
			if off {
				verb = "Unwatched"
			}
			if issueID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s issue %s\n", verb, issueID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s project %s\n", verb, projectID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&issueID, "issue", "", "watch a single issue instead of the whole project")
	cmd.Flags().BoolVar(&off, "off", false, "remove the watch")
	return cmd
}

func newNotifyListCmd() *cobra.Command {
	var (
		configPath string
		unreadOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List your notifications",
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
			notifications, err := notify.List(gormDB, args[0], actorID, unreadOnly)
			if err != nil {
				return err
			}
			unread, err := notify.UnreadCount(gormDB, args[0], actorID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d unread\n", unread)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tREAD\tTITLE")
			for _, n := range notifications {
				read := " "
				if n.ReadAt != nil {
					read = "y"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Kind, read, truncate(n.Title, titleWidth()))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
	return cmd
}

func newNotifyReadCmd() *cobra.Command {
	var (
		configPath string
		all        string
	)

	cmd := &cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark notifications read",
		Long:  "Marks one notification read, or every notification in a project with --all <project-id>.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			if all != "" {
				marked, err := notify.MarkAllRead(gormDB, all, actorID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notifications read\n", marked)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("pass a notification ID or --all <project-id>")
			}
			if err := notify.MarkRead(gormDB, args[0], actorID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s read\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&all, "all", "", "mark every notification in this project read")
	return cmd
}
