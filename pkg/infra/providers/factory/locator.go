package factory

import (
	"fmt"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers/openai"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers/placeholder"
)

const (
	ProviderOpenAI      = "openai"
	ProviderPlaceholder = "placeholder"
)

//go:generate mockery --name=ProviderLocator --dir=. --output=./mocks --filename=provider_locator_mock.go --case=underscore --with-expecter
type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
}

type providerLocator struct{}

func NewProviderLocator() ProviderLocator {
	return &providerLocator{}
}

func (f *providerLocator) Get(provider string) (providers.Client, error) {
	switch provider {
	case ProviderOpenAI:
		return openai.NewOpenaiClient(), nil
	case ProviderPlaceholder, "":
		return placeholder.NewPlaceholderClient(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
