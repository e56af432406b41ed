package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/app/consultation"
	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/NeuralTrust/DoctourGate/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/DoctourGate/pkg/infra/logger"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/repository"
	"github.com/spf13/cobra"
)

var exitWords = map[string]bool{"quit": true, "exit": true, "bye": true}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg := config.GetConfig()
	sessionID, _ := cmd.Flags().GetString("session")

	logger := infraLogger.NewCLILogger(logLevel)
	pipeline, err := dependency_container.NewPipeline(cfg, logger, rulesPath)
	if err != nil {
		return err
	}
	generator, err := dependency_container.NewGenerator(cfg, logger)
	if err != nil {
		return err
	}
	responder := consultation.NewResponder(
		logger,
		pipeline,
		generator,
		consultation.NewNoopRetriever(),
		repository.NewMemorySessionRepository(config.Duration(cfg.Conversation.TTL, 24*time.Hour)),
		consultation.Options{
			MaxTurns:         cfg.Conversation.MaxTurns,
			MaxContextTokens: cfg.Conversation.MaxContextTokens,
			TopK:             cfg.Conversation.TopK,
		},
	)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "DoctourGate consultation. Type quit, exit or bye to leave.")
	fmt.Fprint(out, strings.TrimSpace(appSafety.MedicalDisclaimer)+"\n\n")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if exitWords[strings.ToLower(query)] {
			fmt.Fprintln(out, "Fare thee well.")
			return nil
		}

		result, err := responder.Consult(cmd.Context(), sessionID, query)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		sessionID = result.SessionID
		fmt.Fprintf(out, "%s\n\n", result.Response)
	}
	return scanner.Err()
}
