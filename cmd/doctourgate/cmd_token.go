package main

import (
	"fmt"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/jwt"
	"github.com/NeuralTrust/DoctourGate/pkg/version"
	"github.com/spf13/cobra"
)

func runToken(cmd *cobra.Command, _ []string) error {
	cfg := config.GetConfig()
	subject, _ := cmd.Flags().GetString("subject")

	manager := jwt.NewJwtManager(cfg.Server.SecretKey, config.Duration(cfg.Server.TokenTTL, 24*time.Hour))
	token, err := manager.CreateToken(subject)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := version.GetInfo()
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (built %s, %s, %s)\n",
		info.AppName, info.Version, info.BuildDate, info.GoVersion, info.Platform)
	return nil
}
