package main

import (
	"fmt"
	"os"

	"github.com/harborcrm/flowboard/internal/config"
	"github.com/harborcrm/flowboard/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fb",
		Short: "Flowboard — delivery tracking engine",
		Long:  "Flowboard tracks projects, boards, sprints, and issues, with rule-driven automation and notification fan-out.",
	}

	cmd.PersistentFlags().String("actor", os.Getenv("FB_ACTOR"), "acting user ID (defaults to $FB_ACTOR)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newProjectCmd())
	cmd.AddCommand(newBoardCmd())
	cmd.AddCommand(newIssueCmd())
	cmd.AddCommand(newSprintCmd())
	cmd.AddCommand(newRuleCmd())
	cmd.AddCommand(newTimeCmd())
	cmd.AddCommand(newNotifyCmd())
	cmd.AddCommand(newActivityCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fb %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// connectFromConfig loads the YAML config and opens the MySQL connection.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Database.Name, err)
	}

	return cfg, gormDB, nil
}

// actorFrom resolves the acting user from --actor or $FB_ACTOR.
func actorFrom(cmd *cobra.Command) (string, error) {
	actor, _ := cmd.Flags().GetString("actor")
	if actor == "" {
		return "", fmt.Errorf("acting user required: pass --actor or set FB_ACTOR")
	}
	return actor, nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
