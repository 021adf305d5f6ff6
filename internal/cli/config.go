package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdejongh/ftpdeploy/pkg/config"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the deploy configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Project Root: %s\n", cfg.ProjectRoot)
			fmt.Fprintf(w, "Source: %s\n", cfg.LocalRoot())
			fmt.Fprintf(w, "Destination: %s\n", cfg.RemoteRoot())
			fmt.Fprintf(w, "Host: %s:%d\n", cfg.Auth.Host, cfg.Auth.Port)
			fmt.Fprintf(w, "Auth Key: %s\n", cfg.Auth.AuthKey)
			fmt.Fprintf(w, "TLS: %t\n", cfg.Auth.TLS)
			fmt.Fprintf(w, "Timeout: %s\n", cfg.Auth.Timeout)
			fmt.Fprintf(w, "Hash Algorithm: %s\n", cfg.HashAlgorithm)
			fmt.Fprintf(w, "Exclude: %v\n", cfg.Exclude)
			if cfg.Performance.BandwidthLimit != "" {
				fmt.Fprintf(w, "Bandwidth Limit: %s/s\n", cfg.Performance.BandwidthLimit)
			}
			fmt.Fprintf(w, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(w, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(w, "Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a deploy.yaml template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileNames[0])

			if _, err := os.Stat(path); err == nil && !overwrite {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.SaveToFile(config.Template(), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Add credentials to %s\n", filepath.Join(dir, config.CredentialsFileName))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing file")

	return cmd
}
