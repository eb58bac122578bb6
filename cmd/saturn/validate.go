package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vantage-hq/saturn/pkg/config"
	"vantage-hq/saturn/pkg/fraud"
)

var validateFlags struct {
	rulesPath string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and rules files",
	Long: `Validate the configuration file and, when configured, the fraud
ruleset file, without starting the server.

Examples:
  # Validate the default config
  saturn validate

  # Validate a specific config
  saturn validate --config /etc/saturn/config.yaml

  # Also validate an explicit rules file
  saturn validate --rules /etc/saturn/rules.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.rulesPath, "rules", "", "rules file to validate (defaults to the configured path)")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ Configuration invalid: %s\n", cfgFile)
			for _, fieldErr := range verr.Errors {
				fmt.Printf("  - %s: %s\n", fieldErr.Field, fieldErr.Message)
			}
			return fmt.Errorf("%d configuration errors", len(verr.Errors))
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)

	rulesPath := validateFlags.rulesPath
	if rulesPath == "" {
		rulesPath = cfg.Fraud.RulesPath
	}
	if rulesPath != "" {
		if _, err := fraud.LoadRuleset(rulesPath); err != nil {
			fmt.Printf("✗ Rules invalid: %s\n", rulesPath)
			return err
		}
		fmt.Printf("✓ Rules valid: %s\n", rulesPath)
	}

	return nil
}
