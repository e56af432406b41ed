package placeholder

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers"
)

const (
	maxPassages     = 2
	maxPassageChars = 200

	noSourcesText = "Historical remedies often focused on natural ingredients and balance."

	responseTemplate = "Based on historical medical texts, here's what was traditionally recommended:\n\n" +
		"%s\n\n" +
		"IMPORTANT DISCLAIMER: This information is for historical and educational purposes only.\n" +
		"Modern medical science has advanced significantly. Always consult with a qualified \n" +
		"healthcare provider for medical advice and treatment."
)

// client answers from a fixed template built around the retrieved passages.
// It stands in for a model when none is configured.
type client struct{}

func NewPlaceholderClient() providers.Client {
	return client{}
}

func (client) Ask(_ context.Context, config *providers.Config, _ []providers.Message) (*providers.CompletionResponse, error) {
	text := fmt.Sprintf(responseTemplate, sourceContext(config.Instructions))
	return &providers.CompletionResponse{
		ID:       "placeholder",
		Model:    config.Model,
		Response: text,
	}, nil
}

func sourceContext(passages []string) string {
	if len(passages) == 0 {
		return noSourcesText
	}
	if len(passages) > maxPassages {
		passages = passages[:maxPassages]
	}
	out := ""
	for i, p := range passages {
		if r := []rune(p); len(r) > maxPassageChars {
			p = string(r[:maxPassageChars])
		}
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}
