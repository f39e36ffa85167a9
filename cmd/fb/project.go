package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/harborcrm/flowboard/internal/project"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())
	cmd.AddCommand(newProjectDeleteCmd())
	cmd.AddCommand(newMemberCmd())
	cmd.AddCommand(newComponentCmd())
	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		key         string
		projectType string
		email       string
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Long:  "Creates a project with its template boards. The acting user becomes the owner.",
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			proj, boardID, err := project.Create(gormDB, project.CreateOpts{
				Name: name,
				Key:  key,
				Type: projectType,
				Owner: project.MemberInfo{
					UserID:      actorID,
					Email:       email,
					DisplayName: displayName,
				},
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created project %s (%s)\n", proj.ID, proj.Key)
			fmt.Fprintf(out, "Default board: %s\n", boardID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&name, "name", "", "project name (required)")
	cmd.Flags().StringVar(&key, "key", "", "project key, e.g. CRM (required)")
	cmd.Flags().StringVar(&projectType, "type", "", "project type (scrum, kanban, traditional, hybrid)")
	cmd.Flags().StringVar(&email, "email", "", "owner email, used for @mention resolution")
	cmd.Flags().StringVar(&displayName, "display-name", "", "owner display name")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("key")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects you are a member of",
		RunE: func(cmd *cobra.Command, args []string) error {
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			projects, err := project.List(gormDB, actorID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKEY\tTYPE\tNAME")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Key, p.Type, truncate(p.Name, titleWidth()))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newProjectShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show project details",
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

			proj, err := project.Get(gormDB, args[0], actorID)
			if err != nil {
				return err
			}
			members, err := project.Members(gormDB, proj.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project: %s\n", proj.ID)
			fmt.Fprintf(out, "Key:     %s\n", proj.Key)
			fmt.Fprintf(out, "Name:    %s\n", proj.Name)
			fmt.Fprintf(out, "Type:    %s\n", proj.Type)
			fmt.Fprintf(out, "Owner:   %s\n", proj.OwnerID)
			fmt.Fprintf(out, "Members: %d\n", len(members))
			for _, m := range members {
				fmt.Fprintf(out, "  %s (%s)\n", m.UserID, m.Role)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newProjectDeleteCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete project without --yes")
			}
			actorID, err := actorFrom(cmd)
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			if err := project.RequireOwner(gormDB, args[0], actorID); err != nil {
				return err
			}
			counts, err := project.CascadeDelete(gormDB, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted project %s\n", args[0])
			for collection, n := range counts {
				if n > 0 {
					fmt.Fprintf(out, "  %s: %d\n", collection, n)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm destructive delete")
	return cmd
}

func newMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage project membership",
	}

	cmd.AddCommand(newMemberAddCmd())
	cmd.AddCommand(newMemberRemoveCmd())
	return cmd
}

func newMemberAddCmd() *cobra.Command {
	var (
		configPath  string
		email       string
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "add <project-id> <user-id>",
		Short: "Add a member to a project (owner only)",
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

			err = project.AddMember(gormDB, args[0], actorID, project.MemberInfo{
				UserID:      args[1],
				Email:       email,
				DisplayName: displayName,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	cmd.Flags().StringVar(&email, "email", "", "member email, used for @mention resolution")
	cmd.Flags().StringVar(&displayName, "display-name", "", "member display name")
	return cmd
}

func newMemberRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <project-id> <user-id>",
		Short: "Remove a member from a project (owner only)",
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

			if err := project.RemoveMember(gormDB, args[0], actorID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newComponentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "component",
		Short: "Manage the project component registry",
	}

	cmd.AddCommand(newComponentAddCmd())
	cmd.AddCommand(newComponentListCmd())
	return cmd
}

func newComponentAddCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "add <project-id> <name>",
		Short: "Register a component",
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

			comp, err := project.AddComponent(gormDB, args[0], actorID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered component %s (%s)\n", comp.Name, comp.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newComponentListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List registered components",
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
			components, err := project.Components(gormDB, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, comp := range components {
				fmt.Fprintf(w, "%s\t%s\n", comp.ID, comp.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}
