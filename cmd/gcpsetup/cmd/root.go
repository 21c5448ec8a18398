package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wajahatashraf/gcp-setup/internal/config"
	"github.com/wajahatashraf/gcp-setup/internal/constants"
	"github.com/wajahatashraf/gcp-setup/internal/gcp"
	"github.com/wajahatashraf/gcp-setup/internal/ledger"
	"github.com/wajahatashraf/gcp-setup/internal/logger"
	"github.com/wajahatashraf/gcp-setup/internal/output"
)

var (
	credsPath     string
	debug         bool
	verbose       bool
	timeout       string
	timeoutCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   constants.ProjectName,
	Short: constants.ProjectName,
	Long: fmt.Sprintf(`%s - %s
Provision and tear down a disposable GCP demo environment`,
		constants.ProjectName, *constants.GetVersion()),
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		startTime := time.Now().UTC()
		cmd.SetContext(context.WithValue(cmd.Context(), constants.StartTimeCtxKey, startTime))
		printHeader(cmd)

		if verbose {
			output.Infof("CLI build: " + output.Bold(*constants.GetVersion()))
			output.Infof("Verbose output enabled")
		}

		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		log := logger.Initialize(constants.CLI, logLevel)

		if timeout != "0" {
			// NOTICE: this runs after flags are parsed but before the command runs
			timeoutDuration, err := parseTimeout(timeout)
			if err != nil {
				return fmt.Errorf("error parsing timeout: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutDuration)
			timeoutCancel = cancel // Store for cleanup in Execute()
			cmd.SetContext(ctx)

			if verbose {
				output.Infof("Timeout: %s", timeoutDuration)
			}
		} else if verbose {
			output.Infof("Timeout disabled")
		}

		cfg, err := config.Load()
		if err != nil {
			log.Warn("failed to load configuration", "error", err)
			return nil
		}

		cmd.SetContext(context.WithValue(cmd.Context(), constants.ConfigCtxKey, cfg))
		if verbose {
			configPath, err := config.GetConfigPath()
			if err == nil {
				output.Infof("Configuration file: %s", output.Bold(configPath))
			}
			output.Infof("Region: %s", output.Bold(cfg.Region))
			output.Infof("Ledger: %s", output.Bold(cfg.LedgerPath))
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if verbose {
			startTime := getStartTimeFromContext(cmd)
			if !startTime.IsZero() {
				output.Infof("Time elapsed: %s", output.Bold(time.Since(startTime).String()))
			}
		}
		if timeoutCancel != nil {
			timeoutCancel()
		}
	},
}

// Execute runs the root command and handles cleanup of timeout context.
func Execute() {
	err := rootCmd.Execute()
	if timeoutCancel != nil {
		timeoutCancel()
	}

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&credsPath, "creds", "",
		"Path to a service account JSON key file")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "30m",
		"Timeout for command execution (e.g., 10m, 30s, 1h)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debugging logs")
}

// parseTimeout parses timeout string to time.Duration
// Supports formats: "10m", "30s", "1h", "600" (number of seconds)
func parseTimeout(timeoutStr string) (time.Duration, error) {
	if timeoutStr == "" {
		timeoutStr = "30m"
	}

	duration, err := time.ParseDuration(timeoutStr)
	if err == nil {
		return duration, nil
	}

	seconds, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf(
			"invalid timeout format: %s (use duration like '10m' or '30s', or seconds like '600')",
			timeoutStr)
	}

	return time.Duration(seconds) * time.Second, nil
}

func printHeader(cmd *cobra.Command) {
	output.Header(output.Bold("☁ " + constants.ProjectName + " " + cmd.CalledAs()))
}

// getConfigFromContext retrieves the config from the command context.
func getConfigFromContext(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(constants.ConfigCtxKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

func getStartTimeFromContext(cmd *cobra.Command) time.Time {
	startTime, ok := cmd.Context().Value(constants.StartTimeCtxKey).(time.Time)
	if !ok {
		return time.Time{}
	}
	return startTime
}

// resolveCredsPath returns the key file path from the --creds flag, falling
// back to the config file and then the standard GOOGLE_APPLICATION_CREDENTIALS
// variable.
func resolveCredsPath(cfg *config.Config) string {
	if credsPath != "" {
		return credsPath
	}
	if cfg != nil && cfg.CredentialsFile != "" {
		return cfg.CredentialsFile
	}
	return os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
}

// resolveProject returns the project from the flag value, falling back to
// the one named in the key file. Commands that touch cloud resources must
// fail fast here rather than issue API calls against an empty project path.
func resolveProject(flagValue, keyFileProject string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if keyFileProject != "" {
		return keyFileProject, nil
	}
	return "", errors.New("no project: pass --project or use a key file that names one")
}

// buildClients loads credentials and constructs the GCP client bundle plus
// the ledger store used by the lifecycle commands.
func buildClients(cmd *cobra.Command) (*gcp.Clients, *gcp.Credentials, ledger.Store, error) {
	cfg, err := getConfigFromContext(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	creds, err := gcp.LoadCredentials(cmd.Context(), resolveCredsPath(cfg))
	if err != nil {
		return nil, nil, nil, err
	}

	clients, err := gcp.NewClients(cmd.Context(), creds, cfg.Region)
	if err != nil {
		return nil, nil, nil, err
	}

	return clients, creds, ledger.NewFileStore(cfg.LedgerPath), nil
}

// RootCmd returns the root command for use by tools like doc generators.
func RootCmd() *cobra.Command {
	return rootCmd
}
