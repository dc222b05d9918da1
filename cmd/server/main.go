package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockflow/backend/internal/cache"
	"stockflow/backend/internal/config"
	"stockflow/backend/internal/httpapi"
	"stockflow/backend/internal/payment"
	"stockflow/backend/internal/queue"
	"stockflow/backend/internal/service"
	"stockflow/backend/internal/store"
	"stockflow/backend/internal/store/memory"
	pgstore "stockflow/backend/internal/store/postgres"
	"stockflow/backend/internal/syncqueue"
)

func main() {
	cfg := config.Load()
	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 3)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Println("repository: postgres")
	} else {
		repo = memory.NewSeeded(cfg.CompanyID)
		log.Println("repository: in-memory")
	}

	reportCache := cache.ReportCache(cache.NoopReportCache{})
	var queueStore queue.Store = queue.NewMemoryStore()
	var queuePinger interface{ Ping(context.Context) error }

	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisReportCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop report cache and in-memory queue", err)
		} else {
			reportCache = redisCache
			closers = append(closers, redisCache.Close)

			redisQueue := queue.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.OfflineQueueKey)
			queueStore = redisQueue
			queuePinger = redisQueue
			closers = append(closers, redisQueue.Close)
			log.Println("cache and offline queue: redis")
		}
	} else {
		log.Println("cache and offline queue: in-memory")
	}

	momo := payment.NewMomoClient()
	svc := service.New(repo, reportCache, momo, cfg.CompanyID, time.Duration(cfg.ReportCacheTTLSeconds)*time.Second)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute, repo)

	syncManager := syncqueue.New(queueStore, svc, func(message string) {
		log.Printf("[sync] conflict: %s", message)
	})

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// With a redis-backed queue, actions can outlive the process; watch the
	// backend and drain whatever is pending each time it comes back.
	if queuePinger != nil {
		online := make(chan bool, 1)
		go watchConnectivity(rootCtx, queuePinger, 15*time.Second, online)
		go syncManager.AutoSync(rootCtx, cfg.CompanyID, online)
	}

	api := httpapi.New(svc, auth, syncManager, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("stockflow backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	rootCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

// watchConnectivity pings the queue backend on a fixed interval and reports
// each up/down observation on the channel. The sync manager reacts to
// offline-to-online transitions by draining the queue.
func watchConnectivity(ctx context.Context, pinger interface{ Ping(context.Context) error }, interval time.Duration, online chan<- bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
			err := pinger.Ping(pingCtx)
			pingCancel()

			select {
			case online <- err == nil:
			case <-ctx.Done():
				return
			}
		}
	}
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	return nil
}
