package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mixelka/stashbot/internal/categorize"
	"github.com/mixelka/stashbot/internal/config"
	applog "github.com/mixelka/stashbot/internal/log"
	"github.com/mixelka/stashbot/pkg/models"
)

const maskedPassword = "********"

type classifyOutput struct {
	Normalized string           `yaml:"normalized"`
	Findings   []models.Finding `yaml:"findings"`
}

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Print the findings extracted from a text",
		Long: `Run the categorization engine over a file (or stdin when no file or "-"
is given) and print the findings as YAML. Nothing is stored.
Passwords are masked unless --reveal is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rules, err := loadRules(cfg)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}

			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			logger := applog.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			engine := categorize.NewEngine(rules, logger)

			out := classifyOutput{
				Normalized: engine.Normalize(text),
				Findings:   engine.Extract(text),
			}
			if !reveal {
				for i := range out.Findings {
					if out.Findings[i].IsSecret() {
						out.Findings[i].Password = maskedPassword
					}
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("failed to write findings: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print passwords in clear text")

	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
