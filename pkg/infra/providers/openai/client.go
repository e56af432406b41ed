package openai

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/sync/singleflight"
)

const (
	roleSystem    = "system"
	roleAssistant = "assistant"
)

type client struct {
	clientPool *sync.Map
	sf         singleflight.Group
}

func NewOpenaiClient() providers.Client {
	return &client{
		clientPool: &sync.Map{},
	}
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	messages []providers.Message,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	openaiClient := c.getOrCreateClient(config.Credentials)

	params := openai.ChatCompletionNewParams{
		Model:    config.Model,
		Messages: buildMessages(config, messages),
	}
	if config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(config.MaxTokens))
	}
	if config.Temperature > 0 {
		params.Temperature = openai.Float(config.Temperature)
	}

	resp, err := openaiClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       resp.ID,
		Model:    resp.Model,
		Response: resp.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func buildMessages(config *providers.Config, messages []providers.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+2)
	if config.SystemPrompt != "" {
		out = append(out, openai.SystemMessage(config.SystemPrompt))
	}
	if len(config.Instructions) > 0 {
		out = append(out, openai.SystemMessage(providers.FormatInstructions(config.Instructions)))
	}
	for _, m := range messages {
		switch m.Role {
		case roleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case roleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func (c *client) getOrCreateClient(creds providers.Credentials) *openai.Client {
	key := creds.BaseURL + "|" + creds.ApiKey
	if v, ok := c.clientPool.Load(key); ok {
		if cli, ok := v.(*openai.Client); ok {
			return cli
		}
	}
	v, _, _ := c.sf.Do(key, func() (any, error) {
		if existing, ok := c.clientPool.Load(key); ok {
			return existing, nil
		}
		opts := []option.RequestOption{option.WithAPIKey(creds.ApiKey)}
		if creds.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(creds.BaseURL))
		}
		cli := openai.NewClient(opts...)
		c.clientPool.Store(key, &cli)
		return &cli, nil
	})
	if cli, ok := v.(*openai.Client); ok {
		return cli
	}
	cli := openai.NewClient(option.WithAPIKey(creds.ApiKey))
	return &cli
}
