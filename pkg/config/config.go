package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Safety       SafetyConfig       `mapstructure:"safety"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Model        ModelConfig        `mapstructure:"model"`
	WebSocket    WebSocketConfig    `mapstructure:"websocket"`
}

type ServerConfig struct {
	APIPort     int    `mapstructure:"api_port"`
	AdminPort   int    `mapstructure:"admin_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	SecretKey   string `mapstructure:"secret_key"`
	TokenTTL    string `mapstructure:"token_ttl"`
}

type MetricsConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	EnableLatency    bool `mapstructure:"enable_latency"`
	EnableTermLabels bool `mapstructure:"enable_term_labels"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
	CACert   string `mapstructure:"ca_cert"`

	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

type SafetyConfig struct {
	RulesPath         string `mapstructure:"rules_path"`
	FailMode          string `mapstructure:"fail_mode"`
	ParallelDetectors bool   `mapstructure:"parallel_detectors"`
	Advisories        bool   `mapstructure:"advisories"`
	Watch             bool   `mapstructure:"watch"`
	WatchDebounce     string `mapstructure:"watch_debounce"`
}

type ConversationConfig struct {
	MaxTurns         int    `mapstructure:"max_turns"`
	MaxContextTokens int    `mapstructure:"max_context_tokens"`
	TopK             int    `mapstructure:"top_k"`
	TTL              string `mapstructure:"ttl"`
	Store            string `mapstructure:"store"`
}

type ModelConfig struct {
	Provider     string        `mapstructure:"provider"`
	Name         string        `mapstructure:"name"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float64       `mapstructure:"temperature"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Breaker      BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxFailures uint32 `mapstructure:"max_failures"`
	MaxRequests uint32 `mapstructure:"max_requests"`
	Timeout     string `mapstructure:"timeout"`
}

type WebSocketConfig struct {
	MaxConnections int    `mapstructure:"max_connections"`
	PongWait       string `mapstructure:"pong_wait"`
	PingPeriod     string `mapstructure:"ping_period"`
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var globalConfig Config

func Load(configPath string) error {
	cfg, err := loadConfigFile(configPath, "config")
	if err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	globalConfig = *cfg
	return nil
}

func loadConfigFile(configPath, fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}
	setDefaultValues(&cfg)
	return &cfg, nil
}

// registerDefaults makes every key known to viper so env overrides apply
// even when the file omits the key.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.api_port", 8081)
	v.SetDefault("server.admin_port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.secret_key", "")
	v.SetDefault("server.token_ttl", "24h")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)
	v.SetDefault("metrics.enable_term_labels", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
	v.SetDefault("redis.ca_cert", "")
	v.SetDefault("redis.insecure_skip_verify", false)

	v.SetDefault("safety.rules_path", "data/safety_blocklist.json")
	v.SetDefault("safety.fail_mode", "open")
	v.SetDefault("safety.parallel_detectors", false)
	v.SetDefault("safety.advisories", false)
	v.SetDefault("safety.watch", false)
	v.SetDefault("safety.watch_debounce", "500ms")

	v.SetDefault("conversation.max_turns", 50)
	v.SetDefault("conversation.max_context_tokens", 4000)
	v.SetDefault("conversation.top_k", 3)
	v.SetDefault("conversation.ttl", "24h")
	v.SetDefault("conversation.store", StoreMemory)

	v.SetDefault("model.provider", "placeholder")
	v.SetDefault("model.name", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.max_tokens", 512)
	v.SetDefault("model.temperature", 0.7)
	v.SetDefault("model.system_prompt", "")
	v.SetDefault("model.breaker.max_failures", 5)
	v.SetDefault("model.breaker.max_requests", 1)
	v.SetDefault("model.breaker.timeout", "30s")

	v.SetDefault("websocket.max_connections", 1000)
	v.SetDefault("websocket.pong_wait", "45s")
	v.SetDefault("websocket.ping_period", "30s")
}

func setDefaultValues(cfg *Config) {
	cfg.Safety.FailMode = strings.ToLower(strings.TrimSpace(cfg.Safety.FailMode))
	if cfg.Safety.FailMode == "" {
		cfg.Safety.FailMode = "open"
	}
	cfg.Conversation.Store = strings.ToLower(strings.TrimSpace(cfg.Conversation.Store))
	if cfg.Conversation.Store == "" {
		cfg.Conversation.Store = StoreMemory
	}
	if cfg.Conversation.MaxTurns <= 0 {
		cfg.Conversation.MaxTurns = 50
	}
	if cfg.Conversation.MaxContextTokens <= 0 {
		cfg.Conversation.MaxContextTokens = 4000
	}
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "placeholder"
	}
}

func GetConfig() *Config {
	return &globalConfig
}

// Duration parses a config duration, falling back when raw is empty or
// malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
