package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/harborcrm/flowboard/internal/board"
	"github.com/harborcrm/flowboard/internal/project"
	"github.com/spf13/cobra"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Board and column commands",
	}

	cmd.AddCommand(newBoardListCmd())
	cmd.AddCommand(newBoardShowCmd())
	cmd.AddCommand(newBoardWIPCmd())
	return cmd
}

func newBoardListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's boards",
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
			boards, err := board.ListForProject(gormDB, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tNAME")
			for _, b := range boards {
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Kind, b.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newBoardShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <board-id>",
		Short: "Show a board and its columns",
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

			b, err := board.Get(gormDB, args[0])
			if err != nil {
				return err
			}
			if err := project.RequireMember(gormDB, b.ProjectID, actorID); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Board: %s (%s, %s)\n", b.Name, b.ID, b.Kind)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tSTATUS\tWIP\tID")
			for _, col := range b.Columns {
				wip := "-"
				if col.WIPLimit != nil {
					wip = strconv.Itoa(*col.WIPLimit)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", col.Name, col.StatusKey, wip, col.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newBoardWIPCmd() *cobra.Command {
	var (
		configPath string
		clear      bool
	)

	cmd := &cobra.Command{
		Use:   "wip <column-id> [limit]",
		Short: "Set or clear a column's WIP limit (owner only)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			col, err := board.GetColumn(gormDB, args[0])
			if err != nil {
				return err
			}
			b, err := board.Get(gormDB, col.BoardID)
			if err != nil {
				return err
			}
			if err := project.RequireOwner(gormDB, b.ProjectID, actorID); err != nil {
				return err
			}

			var limit *int
			switch {
			case clear:
			case len(args) == 2:
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("limit must be an integer: %q", args[1])
				}
				limit = &n
			default:
				return fmt.Errorf("pass a limit or --clear")
			}

			if err := board.SetWIPLimit(gormDB, col.ID, limit); err != nil {
				return err
			}
			if limit == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared WIP limit on %s\n", col.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Set WIP limit %d on %s\n", *limit, col.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().BoolVar(&clear, "clear", false, "remove the WIP limit")
	return cmd
}
