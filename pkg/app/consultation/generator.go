package consultation

import (
	"context"
	"fmt"
	"strings"

	"github.com/NeuralTrust/DoctourGate/pkg/domain/conversation"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/httpx"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers"
)

type GenerateRequest struct {
	Query     string
	History   []conversation.Message
	Documents []Document
}

//go:generate mockery --name=Generator --dir=. --output=./mocks --filename=generator_mock.go --case=underscore --with-expecter
type Generator interface {
	Model() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

type providerGenerator struct {
	client  providers.Client
	config  providers.Config
	breaker httpx.CircuitBreaker
}

// NewProviderGenerator adapts a provider client to Generator. A nil breaker
// calls the provider directly.
func NewProviderGenerator(client providers.Client, config providers.Config, breaker httpx.CircuitBreaker) Generator {
	return &providerGenerator{
		client:  client,
		config:  config,
		breaker: breaker,
	}
}

func (g *providerGenerator) Model() string {
	return g.config.Model
}

func (g *providerGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	cfg := g.config
	cfg.Instructions = make([]string, 0, len(req.Documents))
	for _, d := range req.Documents {
		cfg.Instructions = append(cfg.Instructions, d.Text)
	}

	messages := make([]providers.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		messages = append(messages, providers.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, providers.Message{Role: string(conversation.RoleUser), Content: req.Query})

	var resp *providers.CompletionResponse
	call := func() error {
		var err error
		resp, err = g.client.Ask(ctx, &cfg, messages)
		return err
	}

	var err error
	if g.breaker != nil {
		err = g.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Response)
	if text == "" {
		return "", fmt.Errorf("provider returned an empty response")
	}
	return text, nil
}
