// Package constants defines global constants used throughout gcpsetup.
// It includes version information, paths, resource names, and timeouts.
package constants

// ProjectName is the name of the CLI tool and application
const ProjectName = "gcpsetup"

// ConfigDirName is the name of the configuration directory in the user's home directory
const ConfigDirName = ".gcpsetup"

// ConfigFileName is the name of the global configuration file
const ConfigFileName = "config.yaml"

// ConfigDirPath returns the full path to the global configuration directory.
func ConfigDirPath(homeDir string) string {
	return homeDir + "/" + ConfigDirName
}

// ConfigFilePath returns the full path to the global configuration file
func ConfigFilePath(homeDir string) string {
	return ConfigDirPath(homeDir) + "/" + ConfigFileName
}

// Environment represents the execution environment (CLI or a deployed service).
type Environment string

// Environment types for logger configuration
const (
	CLI     Environment = "cli"
	Service Environment = "service"
)

// ConfigCtxKeyType is the type for the config context key
type ConfigCtxKeyType string

// ConfigCtxKey is the key used to store config in context
const ConfigCtxKey ConfigCtxKeyType = "config"

// StartTimeCtxKeyType is the type for the command start time context key
type StartTimeCtxKeyType string

// StartTimeCtxKey is the key used to store the command start time in context
const StartTimeCtxKey StartTimeCtxKeyType = "start-time"

// HeaderSeparatorLength is the width of the separator under section headers
const HeaderSeparatorLength = 40
