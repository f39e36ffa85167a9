package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/harborcrm/flowboard/internal/issue"
	"github.com/harborcrm/flowboard/internal/models"
	"github.com/harborcrm/flowboard/internal/project"
	"github.com/spf13/cobra"
)

func newIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue management commands",
	}

	cmd.AddCommand(newIssueCreateCmd())
	cmd.AddCommand(newIssueListCmd())
	cmd.AddCommand(newIssueShowCmd())
	cmd.AddCommand(newIssueMoveCmd())
	cmd.AddCommand(newIssueLinkCmd())
	cmd.AddCommand(newIssueCommentCmd())
	cmd.AddCommand(newIssueEpicsCmd())
	return cmd
}

func newIssueCreateCmd() *cobra.Command {
	var (
		configPath  string
		boardID     string
		columnID    string
		title       string
		description string
		issueType   string
		priority    string
		acceptance  string
		points      int
		sprintID    string
		epicID      string
		labels      []string
		components  []string
		assigneeID  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new issue",
		Long:  "Creates an issue at the bottom of the target column. Omit --column to use the board's first column.",
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			opts := issue.CreateOpts{
				BoardID:            boardID,
				ColumnID:           columnID,
				Title:              title,
				Description:        description,
				Type:               issueType,
				Priority:           priority,
				AcceptanceCriteria: acceptance,
				SprintID:           sprintID,
				EpicID:             epicID,
				Labels:             labels,
				Components:         components,
				AssigneeID:         assigneeID,
			}
			if cmd.Flags().Changed("points") {
				opts.StoryPoints = &points
			}

			iss, err := issue.Create(gormDB, actorID, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created issue %s in column %s\n", iss.ID, iss.ColumnID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&boardID, "board", "", "board ID (required)")
	cmd.Flags().StringVar(&columnID, "column", "", "column ID (defaults to the board's first column)")
	cmd.Flags().StringVar(&title, "title", "", "issue title (required)")
	cmd.Flags().StringVar(&description, "description", "", "detailed description")
	cmd.Flags().StringVar(&issueType, "type", models.TypeTask, "issue type (epic, story, task, defect, spike)")
	cmd.Flags().StringVar(&priority, "priority", models.PriorityMedium, "priority (highest, high, medium, low)")
	cmd.Flags().StringVar(&acceptance, "acceptance", "", "acceptance criteria")
	cmd.Flags().IntVar(&points, "points", 0, "story points")
	cmd.Flags().StringVar(&sprintID, "sprint", "", "sprint ID")
	cmd.Flags().StringVar(&epicID, "epic", "", "parent epic issue ID")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "label (repeatable)")
	cmd.Flags().StringSliceVar(&components, "component", nil, "component (repeatable)")
	cmd.Flags().StringVar(&assigneeID, "assignee", "", "assignee user ID")
	cmd.MarkFlagRequired("board")
	cmd.MarkFlagRequired("title")
	return cmd
}

func newIssueListCmd() *cobra.Command {
	var (
		configPath string
		boardID    string
		columnID   string
		sprintID   string
		epicID     string
		issueType  string
		statusKey  string
		assigneeID string
	)

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List issues",
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
			issues, err := issue.List(gormDB, args[0], issue.ListFilters{
				BoardID:    boardID,
				ColumnID:   columnID,
				SprintID:   sprintID,
				EpicID:     epicID,
				Type:       issueType,
				StatusKey:  statusKey,
				AssigneeID: assigneeID,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tPRI\tASSIGNEE\tTITLE")
			for _, iss := range issues {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					iss.ID, iss.Type, iss.StatusKey, iss.Priority,
					formatStrPtr(iss.AssigneeID), truncate(iss.Title, titleWidth()))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&boardID, "board", "", "filter by board")
	cmd.Flags().StringVar(&columnID, "column", "", "filter by column")
	cmd.Flags().StringVar(&sprintID, "sprint", "", "filter by sprint")
	cmd.Flags().StringVar(&epicID, "epic", "", "filter by epic")
	cmd.Flags().StringVar(&issueType, "type", "", "filter by type")
	cmd.Flags().StringVar(&statusKey, "status", "", "filter by status key")
	cmd.Flags().StringVar(&assigneeID, "assignee", "", "filter by assignee")
	return cmd
}

func newIssueShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <issue-id>",
		Short: "Show issue details",
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

			iss, err := issue.Get(gormDB, args[0], actorID)
			if err != nil {
				return err
			}
			blocked, err := issue.IsBlocked(gormDB, iss.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Issue:    %s\n", iss.ID)
			fmt.Fprintf(out, "Title:    %s\n", iss.Title)
			fmt.Fprintf(out, "Type:     %s\n", iss.Type)
			fmt.Fprintf(out, "Status:   %s\n", iss.StatusKey)
			fmt.Fprintf(out, "Priority: %s\n", iss.Priority)
			fmt.Fprintf(out, "Assignee: %s\n", formatStrPtr(iss.AssigneeID))
			fmt.Fprintf(out, "Sprint:   %s\n", formatStrPtr(iss.SprintID))
			fmt.Fprintf(out, "Epic:     %s\n", formatStrPtr(iss.EpicID))
			fmt.Fprintf(out, "Labels:   %s\n", joinOrDash(models.DecodeStrings(iss.Labels)))
			fmt.Fprintf(out, "Blocked:  %v\n", blocked)
			if iss.Description != "" {
				fmt.Fprintf(out, "\n%s\n", iss.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newIssueMoveCmd() *cobra.Command {
	var (
		configPath string
		index      int
	)

	cmd := &cobra.Command{
		Use:   "move <issue-id> <column-id>",
		Short: "Move an issue to a column position",
		Long:  "Moves an issue within its board. Without --index the issue lands at the bottom of the column.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			if err := issue.Move(gormDB, actorID, args[0], args[1], index); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to column %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().IntVar(&index, "index", 1<<30, "target position within the column (past-the-end = bottom)")
	return cmd
}

func newIssueLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage issue links",
	}

	cmd.AddCommand(newIssueLinkAddCmd())
	cmd.AddCommand(newIssueLinkRemoveCmd())
	return cmd
}

func newIssueLinkAddCmd() *cobra.Command {
	var (
		configPath string
		linkType   string
	)

	cmd := &cobra.Command{
		Use:   "add <issue-id> <other-issue-id>",
		Short: "Link two issues",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			if err := issue.AddLink(gormDB, actorID, args[0], linkType, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", args[0], linkType, args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&linkType, "type", models.LinkRelatesTo, "link type (blocks, blocked_by, relates_to)")
	return cmd
}

func newIssueLinkRemoveCmd() *cobra.Command {
	var (
		configPath string
		linkType   string
	)

	cmd := &cobra.Command{
		Use:   "remove <issue-id> <other-issue-id>",
		Short: "Remove a link between two issues",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			if err := issue.RemoveLink(gormDB, actorID, args[0], linkType, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s link %s -> %s\n", linkType, args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&linkType, "type", models.LinkRelatesTo, "link type (blocks, blocked_by, relates_to)")
	return cmd
}

func newIssueCommentCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "comment <issue-id> <body>",
		Short: "Comment on an issue",
		Long:  "Adds a comment. @mentions of project members create notifications.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			comment, err := issue.AddComment(gormDB, actorID, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added comment %s\n", comment.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newIssueEpicsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "epics <project-id>",
		Short: "Show epic progress rollups",
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
			rollups, err := issue.EpicRollups(gormDB, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EPIC\tDONE\tTOTAL\tPOINTS\tTITLE")
			for _, r := range rollups {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d/%d\t%s\n",
					r.EpicID, r.DoneIssues, r.TotalIssues, r.DonePoints, r.TotalPoints,
					truncate(r.EpicTitle, titleWidth()))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}
