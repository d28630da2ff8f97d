// cmd/redhio-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"redhio/internal/app"
	"redhio/pkg/config"
	"redhio/pkg/db"
	"redhio/pkg/logger"
	"redhio/pkg/middleware"
	"redhio/pkg/nonce"
	"redhio/pkg/session"
	"redhio/pkg/shops"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	// Shop store: Postgres when configured, then Redis, else in-memory.
	var store shops.Store
	switch {
	case pool != nil:
		if err := shops.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		store = shops.NewPostgresStore(pool, log)
	case rdb != nil:
		store = shops.NewRedisStore(rdb, log)
	default:
		store = shops.NewMemoryStore(log)
	}

	var tracker nonce.Tracker
	if rdb != nil {
		tracker = nonce.NewRedisTracker(rdb, cfg.NonceTTL)
	} else {
		tracker = nonce.NewMemoryTracker(cfg.NonceTTL)
	}

	addon := app.New(cfg, log, app.Options{
		Store:  store,
		Nonces: tracker,
		AfterAuth: func(ctx context.Context, s session.Session) error {
			log.Infow("shop installed", "shop", s.Shop)
			return nil
		},
	})

	r := chi.NewRouter()
	r.Use(middleware.Tracing(cfg))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("pong")) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Mount("/", addon.Handler())

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infow("redhio-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if pool != nil {
		pool.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	fmt.Println("redhio-service stopped")
}
