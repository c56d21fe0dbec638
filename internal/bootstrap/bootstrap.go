// Package bootstrap builds the dependencies shared by the API and the worker
// from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"attendify/internal/attendance"
	"attendify/internal/auth"
	"attendify/internal/cache"
	"attendify/internal/config"
	"attendify/internal/queue"
	"attendify/internal/store"
)

// Deps are the long-lived clients of one process.
type Deps struct {
	Service  *attendance.Service
	Store    store.Backend
	Cache    cache.Cache
	Queue    queue.Queue
	Verifier auth.Verifier
	Redis    *redis.Client

	closers []func() error
}

// Close releases every client opened by Build.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Printf("bootstrap: close: %v", err)
		}
	}
}

// RedisHealthy reports redis connectivity; true when redis is not in use.
func (d *Deps) RedisHealthy(ctx context.Context) bool {
	if d.Redis == nil {
		return true
	}
	return d.Redis.Ping(ctx).Err() == nil
}

// Build picks the store once: Firestore with a local fallback when a
// Firebase project is configured, otherwise the local store alone.
func Build(ctx context.Context, cfg config.App) (*Deps, error) {
	d := &Deps{}

	local, err := openLocal(ctx, cfg, d)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Store = local

	var fbApp *firebase.App
	if cfg.Firestore() || cfg.FirebaseAuth {
		fbApp, err = newFirebase(ctx, cfg)
		if err != nil {
			d.Close()
			return nil, err
		}
	}
	if cfg.Firestore() {
		fs, err := fbApp.Firestore(ctx)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		d.closers = append(d.closers, fs.Close)
		d.Store = &store.Fallback{Primary: store.NewFirestore(fs), Local: local}
	}
	log.Printf("store: using %s", d.Store.Name())

	if cfg.FirebaseAuth {
		client, err := fbApp.Auth(ctx)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("firebase auth client: %w", err)
		}
		d.Verifier = auth.Firebase{Client: client}
	} else {
		d.Verifier = auth.HMAC{Key: cfg.JWTSigningKey, Issuer: cfg.JWTIssuer}
	}

	if cfg.CacheBackend == "redis" || cfg.QueueBackend == "redis" {
		d.Redis = cache.NewRedisClient(cfg.RedisAddr)
		d.closers = append(d.closers, d.Redis.Close)
	}
	if cfg.CacheBackend == "redis" {
		d.Cache = cache.NewRedis(d.Redis, cfg.DashboardTTL, cfg.PromptTTL)
	} else {
		d.Cache = cache.NewMemory(cfg.DashboardTTL, cfg.PromptTTL)
	}
	if cfg.QueueBackend == "redis" {
		d.Queue = queue.NewRedisQueue(d.Redis, cfg.QueueKey)
	} else {
		d.Queue = queue.NewInMemory(256)
	}

	loc := cfg.Location()
	d.Service = attendance.NewService(d.Store,
		attendance.WithCache(d.Cache),
		attendance.WithQueue(d.Queue),
		attendance.WithClock(func() time.Time { return time.Now().In(loc) }),
	)
	return d, nil
}

func openLocal(ctx context.Context, cfg config.App, d *Deps) (store.Backend, error) {
	var (
		db  *store.DB
		err error
	)
	switch cfg.LocalStore {
	case "memory":
		return store.NewMemory(), nil
	case "postgres":
		db, err = store.NewDB(cfg.DatabaseURL)
	case "sqlite", "":
		db, err = store.NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown LOCAL_STORE %q", cfg.LocalStore)
	}
	if db != nil {
		d.closers = append(d.closers, db.Close)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.LocalStore, err)
	}
	return store.NewSQL(ctx, db)
}

func newFirebase(ctx context.Context, cfg config.App) (*firebase.App, error) {
	var opts []option.ClientOption
	switch {
	case cfg.FirebaseCredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	case cfg.FirebaseCredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	default:
		log.Println("firebase: no explicit credentials, using application default")
	}
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	return fbApp, nil
}
