package main

import (
	"encoding/json"
	"fmt"

	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/NeuralTrust/DoctourGate/pkg/dependency_container"
	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	infraLogger "github.com/NeuralTrust/DoctourGate/pkg/infra/logger"
	"github.com/spf13/cobra"
)

// exitDisqualified is returned when the verdict withholds the response.
const exitDisqualified = 2

func runCheck(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	response, _ := cmd.Flags().GetString("response")

	logger := infraLogger.NewCLILogger(logLevel)
	pipeline, err := dependency_container.NewPipeline(config.GetConfig(), logger, rulesPath)
	if err != nil {
		return err
	}

	verdict := pipeline.Validate(cmd.Context(), input, response)
	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode verdict: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if verdict.Level == safety.Emergency || verdict.Level == safety.Blocked {
		return &exitError{code: exitDisqualified}
	}
	return nil
}
