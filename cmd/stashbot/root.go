package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/mixelka/stashbot/internal/categorize"
	"github.com/mixelka/stashbot/internal/config"
)

// version is set at build time via ldflags
var version = ""

func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// NewRootCmd creates the root command. Without a subcommand it runs the bot.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Telegram bot that sorts and keeps your passwords, logins, links and notes",
		Long: `stashbot reads the messages, screenshots and documents you send it and
stores what it finds: login credentials, standalone passwords, email
addresses, links and free-text notes.

Configuration is read from the environment and an optional .env file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context())
		},
	}

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewClassifyCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRules returns the classification rules with the environment overrides applied
func loadRules(cfg *config.Config) (categorize.Rules, error) {
	rules := categorize.DefaultRules()
	if cfg.RulesPath != "" {
		var err error
		if rules, err = categorize.LoadRules(cfg.RulesPath); err != nil {
			return rules, err
		}
	}

	rules.MaxContentLength = cfg.MaxContentLength
	rules.CommandPrefix = cfg.CommandPrefix
	return rules, nil
}
