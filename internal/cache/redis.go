package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"attendify/internal/stats"
)

const (
	keyDashboard = "attendify:dashboard:"
	keyPrompt    = "attendify:prompt:"
	keyActive    = "attendify:active"
)

// Redis stores cached state in a Redis instance.
type Redis struct {
	Client       *redis.Client
	DashboardTTL time.Duration
	PromptTTL    time.Duration
}

// NewRedisClient connects to redis with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// NewRedis wraps client with the given TTLs.
func NewRedis(client *redis.Client, dashboardTTL, promptTTL time.Duration) *Redis {
	return &Redis{Client: client, DashboardTTL: dashboardTTL, PromptTTL: promptTTL}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

func (r *Redis) Dashboard(ctx context.Context, owner string) (stats.Dashboard, bool, error) {
	var d stats.Dashboard
	ok, err := r.getJSON(ctx, keyDashboard+owner, &d)
	return d, ok, err
}

func (r *Redis) SetDashboard(ctx context.Context, owner string, d stats.Dashboard) error {
	return r.setJSON(ctx, keyDashboard+owner, d, r.DashboardTTL)
}

func (r *Redis) Invalidate(ctx context.Context, owner string) error {
	return r.Client.Del(ctx, keyDashboard+owner).Err()
}

// TouchOwner records owner as active at now. Scores are unix seconds.
func (r *Redis) TouchOwner(ctx context.Context, owner string, now time.Time) error {
	return r.Client.ZAdd(ctx, keyActive, redis.Z{Score: float64(now.Unix()), Member: owner}).Err()
}

// ActiveOwners returns owners seen since since and drops older ones.
func (r *Redis) ActiveOwners(ctx context.Context, since time.Time) ([]string, error) {
	lo := strconv.FormatInt(since.Unix(), 10)
	if err := r.Client.ZRemRangeByScore(ctx, keyActive, "-inf", "("+lo).Err(); err != nil {
		return nil, err
	}
	return r.Client.ZRangeByScore(ctx, keyActive, &redis.ZRangeBy{Min: lo, Max: "+inf"}).Result()
}

func (r *Redis) SetPrompt(ctx context.Context, owner string, p Prompt) error {
	return r.setJSON(ctx, keyPrompt+owner, p, r.PromptTTL)
}

func (r *Redis) Prompt(ctx context.Context, owner string) (Prompt, bool, error) {
	var p Prompt
	ok, err := r.getJSON(ctx, keyPrompt+owner, &p)
	return p, ok, err
}

func (r *Redis) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, raw, ttl).Err()
}
