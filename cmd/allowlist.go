package cmd

import (
	"fmt"
	"strings"

	"mulligan/core/config"
	"mulligan/feature/catalog"

	"github.com/spf13/cobra"
)

var allowlistFile string

// allowlistCmd prints the allow-list a sync would use.
var allowlistCmd = &cobra.Command{
	Use:   "allowlist",
	Short: "Show the active standard format allow-list",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if allowlistFile != "" {
			cfg.Sync.AllowlistPath = allowlistFile
		}

		a, err := catalog.LoadAllowlist(cfg.Sync)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		source := cfg.Sync.AllowlistPath
		if source == "" {
			source = "configuration"
		}
		fmt.Fprintf(out, "version: %s\nsource:  %s\nsets:    %s\n", a.Version, source, strings.Join(a.Sets(), ", "))
		return nil
	},
}

func init() {
	allowlistCmd.Flags().StringVar(&allowlistFile, "allowlist", "", "Path to the YAML allow-list")
	RootCmd.AddCommand(allowlistCmd)
}
