// The bank binary is the disbursing party: it dispatches payment
// notification batches to receiving parties, proxies student validation, and
// accepts the asynchronous status webhook that reconciles its local
// transaction records.
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
	"payrail/internal/gateway"
	gatewayhandler "payrail/internal/gateway/handler"
	gatewaymetrics "payrail/internal/gateway/metrics"
	"payrail/internal/payments"
	paymentmetrics "payrail/internal/payments/metrics"
	"payrail/internal/payments/reconciler"
	"payrail/internal/platform/config"
	"payrail/internal/platform/httpserver"
	"payrail/internal/platform/logger"
	"payrail/internal/platform/middleware"
)

func main() {
	cfg, err := config.BankFromEnv()
	if err != nil {
		logger.New("bank").Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}
	log := logger.New("bank")

	var (
		txnStore   payments.Store
		auditStore audit.Store
		directory  gateway.Directory
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
		txnStore = payments.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		directory = gateway.NewPostgresDirectory(db)
	} else {
		txnStore = payments.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		parties := make([]gateway.PartyConfig, 0, len(cfg.Parties))
		for _, p := range cfg.Parties {
			parties = append(parties, gateway.PartyConfig{Code: p.Code, BaseURL: p.BaseURL, APIKey: p.APIKey})
		}
		directory = gateway.NewInMemoryDirectory(parties)
	}

	recorder := audit.NewRecorder(auditStore, log)
	client := gateway.NewHTTPClient(&http.Client{Timeout: config.OutboundTimeout})
	svc := gateway.NewService(directory, txnStore, client, log, gatewaymetrics.New())
	rec := reconciler.New(txnStore, log, paymentmetrics.New())
	handler := gatewayhandler.New(svc, rec, recorder, log, cfg.WebhookAPIKey)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.ContentTypeJSON)
	handler.Register(r)
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
		log.Info("starting bank gateway", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
