// The university binary is the receiving party: it validates student
// eligibility, processes notification batches idempotently, and pushes batch
// results back over the disbursing party's webhook.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"payrail/internal/audit"
	"payrail/internal/enrollment"
	enrollmentcache "payrail/internal/enrollment/cache"
	enrollmenthandler "payrail/internal/enrollment/handler"
	"payrail/internal/payments"
	paymenthandler "payrail/internal/payments/handler"
	paymentmetrics "payrail/internal/payments/metrics"
	"payrail/internal/payments/processor"
	"payrail/internal/payments/webhook"
	"payrail/internal/platform/config"
	"payrail/internal/platform/httpserver"
	"payrail/internal/platform/logger"
	"payrail/internal/platform/middleware"
	platformredis "payrail/internal/platform/redis"
)

func main() {
	cfg := config.UniversityFromEnv()
	log := logger.New("university")

	var (
		studentStore enrollment.StudentStore
		txnStore     payments.Store
		auditStore   audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(context.Background()); err != nil {
			log.Error("ping database", "error", err.Error())
			os.Exit(1)
		}
		studentStore = enrollment.NewPostgresStudentStore(db)
		txnStore = payments.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	} else {
		memStudents := enrollment.NewInMemoryStudentStore()
		if err := enrollment.SeedDemoStudents(context.Background(), memStudents); err != nil {
			log.Error("seed students", "error", err.Error())
			os.Exit(1)
		}
		studentStore = memStudents
		txnStore = payments.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		studentStore = enrollmentcache.New(studentStore, redisClient.Client, cfg.StudentCacheTTL, log)
	}

	recorder := audit.NewRecorder(auditStore, log)
	validator := enrollment.NewService(studentStore, log)
	metrics := paymentmetrics.New()
	proc := processor.New(txnStore, validator, log, metrics)
	dispatcher := webhook.New(cfg.WebhookURL, cfg.WebhookAPIKey, &http.Client{Timeout: config.OutboundTimeout}, log)

	studentHandler := enrollmenthandler.New(validator, recorder, log, cfg.APIKey)
	paymentHandler := paymenthandler.New(proc, dispatcher, recorder, log, cfg.APIKey)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.ContentTypeJSON)
	studentHandler.Register(r)
	paymentHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := httpserver.New(cfg.Addr, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting university API", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := dispatcher.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
