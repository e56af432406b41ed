package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	SessionKeyPattern = "doctourgate:session:%s"
	SessionKeyScan    = "doctourgate:session:*"

	opTimeout = 2 * time.Second
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	RedisClient() *redis.Client
}

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      *tls.Config
}

type client struct {
	redisClient *redis.Client
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	options := &redis.Options{
		Addr:      fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:  config.Password,
		DB:        config.DB,
		TLSConfig: config.TLS,
	}
	redisClient := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return NewClientFromRedis(redisClient), nil
}

// NewClientFromRedis wraps an existing connection, e.g. a redismock client.
func NewClientFromRedis(redisClient *redis.Client) Client {
	return &client{redisClient: redisClient}
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.redisClient.Get(ctx, key).Result()
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return c.redisClient.Set(ctx, key, value, expiration).Err()
}

func (c *client) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

func (c *client) Scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		keys, nextCursor, err := c.redisClient.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("error scanning keys: %w", err)
		}
		out = append(out, keys...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}
