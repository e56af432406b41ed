package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "A poultice of honey was favoured."}
	}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20}
}`

func TestAsk_MissingAPIKey(t *testing.T) {
	resp, err := openai.NewOpenaiClient().Ask(context.Background(), &providers.Config{Model: "gpt-4o-mini"}, nil)
	assert.Nil(t, resp)
	assert.ErrorContains(t, err, "API key is required")
}

func TestAsk_MissingModel(t *testing.T) {
	cfg := &providers.Config{Credentials: providers.Credentials{ApiKey: "sk-test"}}
	resp, err := openai.NewOpenaiClient().Ask(context.Background(), cfg, nil)
	assert.Nil(t, resp)
	assert.ErrorContains(t, err, "model is required")
}

func TestAsk_SendsConversation(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	cfg := &providers.Config{
		Credentials:  providers.Credentials{ApiKey: "sk-test", BaseURL: srv.URL + "/"},
		Model:        "gpt-4o-mini",
		MaxTokens:    128,
		SystemPrompt: "You are a medieval physician.",
		Instructions: []string{"Honey was applied to wounds."},
	}
	resp, err := openai.NewOpenaiClient().Ask(context.Background(), cfg, []providers.Message{
		{Role: "user", Content: "I have a cut"},
		{Role: "assistant", Content: "Where?"},
		{Role: "user", Content: "On my hand"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A poultice of honey was favoured.", resp.Response)
	assert.Equal(t, 20, resp.Usage.TotalTokens)

	msgs, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 5)
	first := msgs[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
	last := msgs[4].(map[string]interface{})
	assert.Equal(t, "user", last["role"])
	assert.Equal(t, "On my hand", last["content"])
	assert.EqualValues(t, 128, captured["max_tokens"])
}

func TestAsk_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad model", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	cfg := &providers.Config{
		Credentials: providers.Credentials{ApiKey: "sk-test", BaseURL: srv.URL + "/"},
		Model:       "nope",
	}
	resp, err := openai.NewOpenaiClient().Ask(context.Background(), cfg, []providers.Message{{Role: "user", Content: "hi"}})
	assert.Nil(t, resp)
	assert.ErrorContains(t, err, "OpenAI request failed")
}
