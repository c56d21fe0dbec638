package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"attendify/internal/bootstrap"
	"attendify/internal/config"
	"attendify/internal/metrics"
	"attendify/internal/queue"
)

// Worker rebuilds cached dashboards after changes and raises prompts for
// classes in progress.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer deps.Close()
	svc := deps.Service

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err = c.AddFunc(cfg.PromptSchedule, func() {
		runCtx, done := context.WithTimeout(ctx, 50*time.Second)
		defer done()
		n, err := svc.RaisePrompts(runCtx, cfg.ActiveWindow)
		if err != nil {
			log.Printf("class check failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("class check raised %d prompt(s)", n)
		}
	})
	if err != nil {
		log.Fatalf("schedule class check %q: %v", cfg.PromptSchedule, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	messages, err := deps.Queue.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Printf("worker started, class check %q, waiting for messages...", cfg.PromptSchedule)
	for msg := range messages {
		if msg.Type != queue.TypeChanged || msg.Owner == "" {
			metrics.WorkerMessages.WithLabelValues(msg.Type, "skipped").Inc()
			continue
		}
		if _, err := svc.RefreshDashboard(ctx, msg.Owner); err != nil {
			log.Printf("refresh dashboard for %s failed: %v", msg.Owner, err)
			metrics.WorkerMessages.WithLabelValues(msg.Type, "failed").Inc()
			continue
		}
		metrics.WorkerMessages.WithLabelValues(msg.Type, "ok").Inc()
	}

	log.Println("worker stopped")
}
