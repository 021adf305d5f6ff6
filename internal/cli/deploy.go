package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/ftpdeploy/pkg/config"
	"github.com/sdejongh/ftpdeploy/pkg/logging"
	"github.com/sdejongh/ftpdeploy/pkg/models"
	"github.com/sdejongh/ftpdeploy/pkg/output"
	"github.com/sdejongh/ftpdeploy/pkg/sync"
	"github.com/spf13/cobra"
)

// DeployFlags holds deploy command flags
type DeployFlags struct {
	DryRun     bool
	Force      bool
	Hash       string
	Exclude    []string
	Bandwidth  string
	Output     string
	NoProgress bool
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var deployFlags DeployFlags

// NewDeployCommand creates the deploy command
func NewDeployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload changed directories to the FTP server",
		Long: `Scan the configured source directory, hash every directory and upload
the directories whose hash differs from the last successful deploy.
Hashes are kept in .hashes.json next to the config file.`,
		Args: cobra.NoArgs,
		RunE: runDeploy,
	}

	cmd.Flags().BoolVar(&deployFlags.DryRun, "dry-run", false, "report what would be uploaded without connecting")
	cmd.Flags().BoolVar(&deployFlags.Force, "force", false, "upload every directory regardless of cached hashes")
	cmd.Flags().StringVar(&deployFlags.Hash, "hash", "", "hash algorithm: sha1, sha256, md5")
	cmd.Flags().StringSliceVar(&deployFlags.Exclude, "exclude", []string{}, "glob patterns to exclude (added to the config)")
	cmd.Flags().StringVarP(&deployFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"512K\", \"10M\")")
	cmd.Flags().StringVarP(&deployFlags.Output, "output", "o", "", "summary format: human, json")
	cmd.Flags().BoolVar(&deployFlags.NoProgress, "no-progress", false, "disable the progress bar")

	// Logging flags
	cmd.Flags().StringVar(&deployFlags.LogFile, "log-file", "", "also write logs to file")
	cmd.Flags().StringVar(&deployFlags.LogFormat, "log-format", "", "log file format: text, json")
	cmd.Flags().StringVar(&deployFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlagsToConfig(cfg)

	if err := validateDeploy(cfg); err != nil {
		return err
	}

	operation, err := createDeployOperation(cfg)
	if err != nil {
		return fmt.Errorf("failed to create deploy operation: %w", err)
	}

	var cred config.Credential
	if !operation.DryRun {
		c, err := config.LoadCredentials(cfg.CredentialsPath(), cfg.Auth.AuthKey)
		if err != nil {
			return err
		}
		cred = *c
	}

	level := consoleLevel(cfg)
	logger, err := createLogger(cfg, level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger = logger.WithFields(logging.Fields{"run_id": operation.ID})

	reporter := output.NewReporter(output.ReporterOptions{
		Logger:     logger,
		Level:      level,
		NoProgress: !cfg.Output.Progress,
	})

	engine := sync.NewEngine(sync.EngineConfig{
		Operation: operation,
		CachePath: cfg.CachePath(),
		SkipPaths: []string{cfg.CachePath(), cfg.CredentialsPath()},
		Remote:    cfg.RemoteOptions(),
		Username:  cred.Username,
		Password:  cred.Password,
		Reporter:  reporter,
	})

	report, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}

	return writeSummary(cmd, cfg, report)
}

// writeSummary prints the run report in the configured format
func writeSummary(cmd *cobra.Command, cfg *config.Config, report *models.RunReport) error {
	w := cmd.OutOrStdout()
	switch {
	case cfg.Output.Format == "json":
		return output.WriteJSON(w, report)
	case cfg.Output.Quiet:
		return nil
	default:
		output.PrintSummary(w, report)
		return nil
	}
}

// loadConfig loads the configuration named by --config or discovers it
// from the working directory
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.Load(globalFlags.ConfigFile, cwd)
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) {
	if deployFlags.Hash != "" {
		cfg.HashAlgorithm = models.HashAlgorithm(deployFlags.Hash)
	}

	// Exclude patterns extend the configured list
	if len(deployFlags.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, deployFlags.Exclude...)
	}

	if deployFlags.Bandwidth != "" {
		cfg.Performance.BandwidthLimit = deployFlags.Bandwidth
	}

	if deployFlags.Output != "" {
		cfg.Output.Format = deployFlags.Output
	}

	if deployFlags.LogFile != "" {
		cfg.Logging.File = deployFlags.LogFile
	}
	if deployFlags.LogFormat != "" {
		cfg.Logging.Format = deployFlags.LogFormat
	}
	if deployFlags.LogLevel != "" {
		cfg.Logging.Level = deployFlags.LogLevel
	}

	if deployFlags.NoProgress {
		cfg.Output.Progress = false
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Debug lines would tear the bar
	if globalFlags.Verbose {
		cfg.Output.Progress = false
	}
}

// createDeployOperation creates a deploy operation from configuration
func createDeployOperation(cfg *config.Config) (*models.DeployOperation, error) {
	bandwidth, err := cfg.BandwidthLimit()
	if err != nil {
		return nil, err
	}

	operation := &models.DeployOperation{
		ID:              uuid.New().String(),
		LocalRoot:       cfg.LocalRoot(),
		RemoteRoot:      cfg.RemoteRoot(),
		HashAlgorithm:   cfg.HashAlgorithm,
		ExcludePatterns: cfg.Exclude,
		DryRun:          deployFlags.DryRun,
		Force:           deployFlags.Force,
		BandwidthLimit:  bandwidth,
		BufferSize:      cfg.Performance.BufferSize,
		CreatedAt:       time.Now(),
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}

// consoleLevel returns the console log level after -v and -q
func consoleLevel(cfg *config.Config) logging.Level {
	switch {
	case globalFlags.Verbose:
		return logging.DebugLevel
	case globalFlags.Quiet:
		return logging.ErrorLevel
	default:
		return logging.ParseLevel(cfg.Logging.Level)
	}
}

// createLogger builds the console logger and, when configured, a file logger
func createLogger(cfg *config.Config, level logging.Level) (logging.Logger, error) {
	console := logging.NewConsoleLogger(os.Stderr, level)
	if cfg.Logging.File == "" {
		return console, nil
	}

	file, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     logging.Format(cfg.Logging.Format),
		Level:      logging.ParseLevel(cfg.Logging.Level),
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, err
	}

	return logging.Multi(console, file), nil
}
