package consultation

import "context"

type Document struct {
	Text   string  `json:"text"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score,omitempty"`
}

// Retriever supplies historical passages relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}

type noopRetriever struct{}

// NewNoopRetriever returns a retriever with no corpus behind it.
func NewNoopRetriever() Retriever {
	return noopRetriever{}
}

func (noopRetriever) Retrieve(context.Context, string, int) ([]Document, error) {
	return []Document{}, nil
}
