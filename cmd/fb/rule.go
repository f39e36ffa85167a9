package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/harborcrm/flowboard/internal/automation"
	"github.com/harborcrm/flowboard/internal/project"
	"github.com/spf13/cobra"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Automation rule commands",
	}

	cmd.AddCommand(newRuleCreateCmd())
	cmd.AddCommand(newRuleListCmd())
	cmd.AddCommand(newRuleDeleteCmd())
	return cmd
}

func ruleFlags(cmd *cobra.Command, opts *automation.RuleOpts) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "rule name (required)")
	cmd.Flags().BoolVar(&opts.Enabled, "enabled", true, "whether the rule is active")
	cmd.Flags().StringVar(&opts.TriggerKind, "trigger", "", "trigger kind (issue_moved, issue_link_added, issue_link_removed, sprint_closed)")
	cmd.Flags().StringVar(&opts.TriggerToStatusKey, "to-status", "", "issue_moved only: fire when entering this status key")
	cmd.Flags().StringVar(&opts.TriggerLinkType, "link-type", "", "link triggers only: fire for this link type")
	cmd.Flags().StringVar(&opts.CondIssueType, "if-type", "", "condition: issue type")
	cmd.Flags().StringVar(&opts.CondHasLabel, "if-label", "", "condition: issue has this label")
	cmd.Flags().StringVar(&opts.CondNotHasLabel, "if-not-label", "", "condition: issue lacks this label")
	cmd.Flags().StringSliceVar(&opts.AddLabels, "add-label", nil, "action: add label (repeatable)")
	cmd.Flags().StringSliceVar(&opts.RemoveLabels, "remove-label", nil, "action: remove label (repeatable)")
	cmd.Flags().BoolVar(&opts.MoveOpenToBacklog, "move-open-to-backlog", false, "sprint_closed only: sweep open issues off the sprint")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("trigger")
}

func newRuleCreateCmd() *cobra.Command {
	var (
		configPath string
		opts       automation.RuleOpts
		blocked    bool
	)

	cmd := &cobra.Command{
		Use:   "create <project-id>",
		Short: "Create an automation rule (owner only)",
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

			if cmd.Flags().Changed("if-blocked") {
				opts.CondIsBlocked = &blocked
			}
			rule, err := automation.CreateRule(gormDB, args[0], actorID, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s (%s)\n", rule.ID, rule.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	ruleFlags(cmd, &opts)
	cmd.Flags().BoolVar(&blocked, "if-blocked", false, "condition: issue blocked state must match")
	return cmd
}

func newRuleListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's automation rules",
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
			rules, err := automation.ListRules(gormDB, args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tENABLED\tTRIGGER\tNAME")
			for _, r := range rules {
				fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", r.ID, r.Enabled, r.TriggerKind, truncate(r.Name, titleWidth()))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}

func newRuleDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete an automation rule (owner only)",
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

			if err := automation.DeleteRule(gormDB, args[0], actorID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "flowboard.yaml", "path to Flowboard config file")
	return cmd
}
