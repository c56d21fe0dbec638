package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendify/internal/auth"
	"attendify/internal/bootstrap"
	"attendify/internal/catalog"
	"attendify/internal/config"
	"attendify/internal/handler"
	"attendify/internal/httpmiddleware"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()
	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := handler.RegisterValidations(); err != nil {
		return err
	}

	h := &handler.Handler{
		Service: deps.Service,
		Catalog: catalog.Load(cfg.CatalogPath),
	}
	if !cfg.FirebaseAuth {
		// Single-user mode: every local token belongs to the same owner.
		h.Issue = func(name string) (auth.Token, error) {
			return auth.Issue("local", name, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, time.Now())
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.Metrics())

	limiter := httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		storeErr := deps.Store.Ping(c.Request.Context())
		redisHealthy := deps.RedisHealthy(c.Request.Context())
		status := http.StatusOK
		if storeErr != nil || !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "store": deps.Store.Name(), "storeHealthy": storeErr == nil, "redis": redisHealthy})
	})

	h.Register(r, auth.RequireOwner(deps.Verifier), limiter.GinMiddleware(httpmiddleware.ByContextKey("owner")))

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		// Credentials cannot be combined with a literal wildcard; echo the origin instead.
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
