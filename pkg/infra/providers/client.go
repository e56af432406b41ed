package providers

import (
	"context"
)

type Config struct {
	Credentials  Credentials `json:"credentials"`
	Model        string      `json:"model"`
	MaxTokens    int         `json:"max_tokens,omitempty"`
	Temperature  float64     `json:"temperature,omitempty"`
	SystemPrompt string      `json:"system_prompt,omitempty"`
	// Instructions carries retrieved source passages for a single request.
	Instructions []string `json:"instructions,omitempty"`
}

type Credentials struct {
	ApiKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Ask(ctx context.Context, config *Config, messages []Message) (*CompletionResponse, error)
}
