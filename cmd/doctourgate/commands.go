package main

import (
	"fmt"
	"os"

	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
	rulesPath  string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "doctourgate",
		Short: "Safety gate for a historical-medicine consultation assistant",
		Long: `DoctourGate validates model responses against a blocklist of toxic
substances, dangerous practices and emergency symptoms before they reach
the person asking.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadEnvironment,
		RunE:              runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the API and admin servers",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate one input/response pair and print the verdict as JSON",
		Long: `Validate one input/response pair and print the verdict as JSON.
Exits with status 2 when the verdict is emergency or blocked.`,
		RunE: runCheck, // Defined in cmd_check.go
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive consultation on stdin",
		RunE:  runChat, // Defined in cmd_chat.go
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token signed with server.secret_key",
		RunE:  runToken, // Defined in cmd_token.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE:  runVersion,
	}
)

// exitError carries a process exit status out of a command without treating
// it as a failure to report.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config", "directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env or $ENV_FILE)")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "safety rule file, overrides safety.rules_path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default $LOG_LEVEL or info)")

	checkCmd.Flags().String("input", "", "user input to screen for emergencies")
	checkCmd.Flags().String("response", "", "candidate response to validate")
	_ = checkCmd.MarkFlagRequired("response")

	chatCmd.Flags().String("session", "", "resume an existing session id")

	tokenCmd.Flags().String("subject", "admin", "token subject")

	rootCmd.AddCommand(serveCmd, checkCmd, chatCmd, tokenCmd, versionCmd)
}

func loadEnvironment(_ *cobra.Command, _ []string) error {
	file := envFile
	if file == "" {
		file = os.Getenv("ENV_FILE")
	}
	if file == "" {
		file = ".env"
	}
	// A missing default .env is fine; an explicitly requested one is not.
	if err := godotenv.Load(file); err != nil && envFile != "" {
		return fmt.Errorf("failed to load env file %s: %w", file, err)
	}

	return config.Load(configPath)
}
