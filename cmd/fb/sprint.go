package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/harborcrm/flowboard/internal/project"
	"github.com/harborcrm/flowboard/internal/sprint"
	"github.com/spf13/cobra"
)

func newSprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Sprint lifecycle commands",
	}

	cmd.AddCommand(newSprintCreateCmd())
	cmd.AddCommand(newSprintListCmd())
	cmd.AddCommand(newSprintActivateCmd())
	cmd.AddCommand(newSprintCloseCmd())
	return cmd
}

func parseDateFlag(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD: %q", name, value)
	}
	return &t, nil
}

func newSprintCreateCmd() *cobra.Command {
	var (
		configPath string
		name       string
		goal       string
		start      string
		end        string
		capacity   int
	)

	cmd := &cobra.Command{
		Use:   "create <project-id>",
		Short: "Create a sprint in the planned state",
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

			startDate, err := parseDateFlag(start, "--start")
			if err != nil {
				return err
			}
			endDate, err := parseDateFlag(end, "--end")
			if err != nil {
				return err
			}

			opts := sprint.CreateOpts{
				Name:      name,
				Goal:      goal,
				StartDate: startDate,
				EndDate:   endDate,
			}
			if cmd.Flags().Changed("capacity") {
				opts.CapacityPoints = &capacity
			}

			s, err := sprint.Create(gormDB, args[0], actorID, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created sprint %s (%s)\n", s.ID, s.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&name, "name", "", "sprint name (required)")
	cmd.Flags().StringVar(&goal, "goal", "", "sprint goal")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "capacity in story points")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newSprintListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's sprints",
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
			sprints, err := sprint.List(gormDB, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATE\tSTART\tEND\tNAME")
			for _, s := range sprints {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.State, formatDate(s.StartDate), formatDate(s.EndDate),
					truncate(s.Name, titleWidth()))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newSprintActivateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "activate <sprint-id>",
		Short: "Activate a sprint",
		Long:  "Promotes a planned sprint to active. Any other active sprint in the project drops back to planned.",
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

			if err := sprint.SetActive(gormDB, args[0], actorID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sprint %s is now active\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newSprintCloseCmd() *cobra.Command {
	var (
		configPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "close <sprint-id>",
		Short: "Close a sprint (owner only)",
		Long:  "Closes a sprint. Fails while not-done issues remain unless --force is given.",
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

			if err := sprint.Close(gormDB, args[0], actorID, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed sprint %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().BoolVar(&force, "force", false, "close even with open issues remaining")
	return cmd
}
