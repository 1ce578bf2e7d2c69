// Package cache stores finished transcripts so unchanged audio is not sent to
// the model twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"audio-transcriber/internal/app/model"
	"audio-transcriber/internal/config"
)

const keyPrefix = "transcript:"

// TranscriptCache looks up and stores transcripts by content key.
type TranscriptCache interface {
	Get(ctx context.Context, key string) (*model.Transcript, bool, error)
	Put(ctx context.Context, key string, tr *model.Transcript) error
	Close() error
}

// Decoding holds the engine settings that change what the model returns for
// the same audio.
type Decoding struct {
	Model       string
	Language    string
	Device      string
	ComputeType string
	BeamSize    int
	VADFilter   bool
	Prompt      string
	Temperature float32
}

// digest folds the settings other than model and language into a short
// fixed-width token so free-text prompts never leak into the key.
func (d Decoding) digest() string {
	data, _ := json.Marshal(struct {
		Device      string  `json:"device"`
		ComputeType string  `json:"compute_type"`
		BeamSize    int     `json:"beam_size"`
		VADFilter   bool    `json:"vad_filter"`
		Prompt      string  `json:"prompt"`
		Temperature float32 `json:"temperature"`
	}{d.Device, d.ComputeType, d.BeamSize, d.VADFilter, d.Prompt, d.Temperature})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:6])
}

// Key identifies a transcript by provider, decoding settings and audio
// content. Any change to d yields a different key.
func Key(providerName string, d Decoding, fileHash string) string {
	return keyPrefix + strings.Join([]string{providerName, d.Model, d.Language, d.digest(), fileHash}, "|")
}

// kv is the subset of the redis client used here.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

type RedisCache struct {
	client kv
	ttl    time.Duration
}

// NewRedisCache connects to cfg.RedisAddr. The connection is lazy; the first
// Get or Put reports an unreachable server.
func NewRedisCache(cfg config.CacheConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{client: client, ttl: cfg.TTL}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.Transcript, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var tr model.Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return &tr, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, tr *model.Transcript) error {
	data, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NopCache never hits.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*model.Transcript, bool, error) { return nil, false, nil }

func (NopCache) Put(context.Context, string, *model.Transcript) error { return nil }

func (NopCache) Close() error { return nil }
