package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	PredictionKeyPattern = "prediction:%s:%s"

	DefaultTTL         = 24 * time.Hour
	DefaultLocalTTL    = 5 * time.Minute
	DefaultLocalSize   = 10000
	DefaultReadTimeout = 500 * time.Millisecond
	redisWriteTimeout  = 2 * time.Second
	redisPingTimeout   = 5 * time.Second
)

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TLS       bool          `mapstructure:"tls"`
	TTL       time.Duration `mapstructure:"ttl"`
	LocalTTL  time.Duration `mapstructure:"local_ttl"`
	LocalSize int           `mapstructure:"local_size"`

	// ReadTimeout bounds each lookup; a slow cache counts as a miss upstream.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// PredictionCache stores labels in Redis behind an in-process TTL map.
type PredictionCache struct {
	redisClient *redis.Client
	local       *TTLMap[model.Label]
	ttl         time.Duration
	readTimeout time.Duration
}

func NewClient(config Config, logger *logrus.Logger) (*PredictionCache, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	redisClient := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
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

	return NewPredictionCache(redisClient, config), nil
}

// NewPredictionCache wraps an existing client; zero durations and sizes
// fall back to the package defaults.
func NewPredictionCache(redisClient *redis.Client, config Config) *PredictionCache {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	localTTL := config.LocalTTL
	if localTTL <= 0 {
		localTTL = DefaultLocalTTL
	}
	size := config.LocalSize
	if size <= 0 {
		size = DefaultLocalSize
	}
	readTimeout := config.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &PredictionCache{
		redisClient: redisClient,
		local:       NewTTLMap[model.Label](localTTL, size),
		ttl:         ttl,
		readTimeout: readTimeout,
	}
}

// Key hashes the cleaned text so arbitrary input stays a bounded key.
func Key(run, cleaned string) string {
	sum := sha256.Sum256([]byte(cleaned))
	return fmt.Sprintf(PredictionKeyPattern, run, hex.EncodeToString(sum[:]))
}

func (c *PredictionCache) Get(ctx context.Context, run, cleaned string) (model.Label, bool, error) {
	key := Key(run, cleaned)
	if label, ok := c.local.Get(key); ok {
		return label, true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()
	raw, err := c.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid cached label %q: %w", raw, err)
	}
	label := model.Label(n)
	c.local.Set(key, label)
	return label, true, nil
}

func (c *PredictionCache) Set(ctx context.Context, run, cleaned string, label model.Label) error {
	key := Key(run, cleaned)
	ctx, cancel := context.WithTimeout(ctx, redisWriteTimeout)
	defer cancel()
	if err := c.redisClient.Set(ctx, key, strconv.Itoa(int(label)), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	c.local.Set(key, label)
	return nil
}

func (c *PredictionCache) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *PredictionCache) Close() error {
	c.local.Clear()
	return c.redisClient.Close()
}
