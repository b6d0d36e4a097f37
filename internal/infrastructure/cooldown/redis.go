package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
	redis "github.com/redis/go-redis/v9"
)

const DefaultKey = "legal-doc-assistant:cooldown:gemini"

type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// Redis shares the cooldown between API replicas and workers.
type Redis struct {
	client redisClient
	key    string
}

// OpenRedis connects and pings the server. addr may be host:port or a
// redis:// URL.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	var opts *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, domain.WrapError(domain.ErrConfiguration, "parse redis url", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr, Password: password, DB: db}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedis(client *redis.Client, key string) *Redis {
	return newRedis(client, key)
}

func newRedis(client redisClient, key string) *Redis {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) Start(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	left, err := r.Remaining(ctx)
	if err != nil {
		return err
	}
	if left >= d {
		return nil
	}
	until := time.Now().Add(d).UTC().Format(time.RFC3339)
	if err := r.client.Set(ctx, r.key, until, d).Err(); err != nil {
		return domain.WrapError(domain.ErrTemporary, "redis set cooldown", err)
	}
	return nil
}

func (r *Redis) Remaining(ctx context.Context) (time.Duration, error) {
	ttl, err := r.client.PTTL(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, domain.WrapError(domain.ErrTemporary, "redis pttl cooldown", err)
	}
	// PTTL reports -2 for a missing key and -1 for a key without expiry.
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}
