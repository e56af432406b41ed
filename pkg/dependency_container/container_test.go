package dependency_container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/NeuralTrust/DoctourGate/pkg/domain/safety"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blocklist.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"toxic_substances": {"arsenic": {"status": "blocked"}}}`), 0600))
	return &config.Config{
		Safety: config.SafetyConfig{RulesPath: path, FailMode: "open"},
		Conversation: config.ConversationConfig{
			Store:    config.StoreMemory,
			MaxTurns: 10,
			TTL:      "1h",
		},
		Model:     config.ModelConfig{Provider: "placeholder"},
		WebSocket: config.WebSocketConfig{MaxConnections: 2},
	}
}

func TestNewContainer_MemoryStore(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c, err := NewContainer(ContainerDI{Cfg: testConfig(t), Logger: logger})
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	assert.NotEmpty(t, c.InstanceID)
	assert.Nil(t, c.Cache)
	assert.Nil(t, c.RedisListener)
	assert.Nil(t, c.Watcher)
	assert.NotNil(t, c.HandlerTransport)
	assert.NotNil(t, c.WSHandlerTransport)
	assert.NotNil(t, c.MiddlewareTransport.WebsocketMiddleware)

	assert.True(t, c.Pipeline.RuleSet().Loaded())
	assert.Equal(t, safety.Blocked, c.Pipeline.Validate(context.Background(), "cough", "arsenic").Level)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()

	result, err := c.Responder.Consult(context.Background(), "", "I have a cough")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
}

func TestNewContainer_WatchesRuleFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Safety.Watch = true
	logger, _ := test.NewNullLogger()

	c, err := NewContainer(ContainerDI{Cfg: cfg, Logger: logger})
	require.NoError(t, err)
	assert.NotNil(t, c.Watcher)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestReloadOnChange_KeepsAdminSelectedSource(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := test.NewNullLogger()
	pipeline, err := NewPipeline(cfg, logger, "")
	require.NoError(t, err)
	ctx := context.Background()
	onChange := reloadOnChange(logger, pipeline, cfg.Safety.RulesPath)

	require.NoError(t, os.WriteFile(cfg.Safety.RulesPath, []byte(`{"toxic_substances": {"hemlock": {"status": "blocked"}}}`), 0600))
	onChange(ctx)
	assert.Equal(t, safety.Blocked, pipeline.Validate(ctx, "cough", "hemlock").Level)

	other := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"toxic_substances": {"mercury": {"status": "blocked"}}}`), 0600))
	_, err = pipeline.Reload(ctx, other, appSafety.TriggerAdmin)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfg.Safety.RulesPath, []byte(`{"toxic_substances": {"arsenic": {"status": "blocked"}}}`), 0600))
	onChange(ctx)
	assert.Equal(t, other, pipeline.RuleSet().Source())
	assert.Equal(t, safety.Blocked, pipeline.Validate(ctx, "cough", "mercury").Level)
	assert.Equal(t, safety.Safe, pipeline.Validate(ctx, "cough", "arsenic").Level)
}

func TestNewContainer_RulesPathOverride(t *testing.T) {
	cfg := testConfig(t)
	other := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"dangerous_practices": {"bloodletting": {"status": "blocked"}}}`), 0600))
	logger, _ := test.NewNullLogger()

	c, err := NewContainer(ContainerDI{Cfg: cfg, Logger: logger, RulesPath: other})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, other, c.Pipeline.RuleSet().Source())
}

func TestNewContainer_InvalidSettings(t *testing.T) {
	logger, _ := test.NewNullLogger()
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "fail mode", mutate: func(c *config.Config) { c.Safety.FailMode = "ajar" }},
		{name: "redis store without redis", mutate: func(c *config.Config) { c.Conversation.Store = config.StoreRedis }},
		{name: "unknown store", mutate: func(c *config.Config) { c.Conversation.Store = "parchment" }},
		{name: "unknown provider", mutate: func(c *config.Config) { c.Model.Provider = "oracle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			_, err := NewContainer(ContainerDI{Cfg: cfg, Logger: logger})
			assert.Error(t, err)
		})
	}
}

func TestNewPipeline_MissingFileUsesFailMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Safety.FailMode = "closed"
	logger, _ := test.NewNullLogger()

	p, err := NewPipeline(cfg, logger, filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, appSafety.FailClosed, p.FailMode())
	assert.Equal(t, safety.LayerRulesUnavailable, p.Validate(context.Background(), "cough", "rest").Layer)
}
