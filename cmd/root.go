package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/motortwin/motortwin/twin"
)

var (
	// Persistent CLI flags shared by all subcommands
	logLevel        string // Log verbosity level
	databaseURL     string // Realtime Database URL
	motor           string // Path prefix the motor's data lives under
	credentialsFile string // Service account key file for admin writes
	authToken       string // Auth token passed through to the streaming API
	configPath      string // Optional pipeline config YAML
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "motortwin",
	Short: "Digital-twin telemetry pipeline for a three-phase motor",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// pipelineConfig loads the pipeline parameters: defaults, overridden by
// --config when given.
func pipelineConfig() twin.Config {
	if configPath == "" {
		return twin.DefaultConfig()
	}
	cfg, err := twin.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("Invalid pipeline config: %v", err)
	}
	return cfg
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&databaseURL, "database-url", "", "Realtime Database URL")
	pf.StringVar(&motor, "motor", "motor01", "Database path prefix for the motor")
	pf.StringVar(&credentialsFile, "credentials", "", "Service account key file (admin writes)")
	pf.StringVar(&authToken, "auth", "", "Auth token for the streaming API")
	pf.StringVar(&configPath, "config", "", "Pipeline config YAML (defaults apply when omitted)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
