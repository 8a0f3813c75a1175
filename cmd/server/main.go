// Command server runs the identity proofing service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"idport/internal/audit"
	"idport/internal/idv/attempter"
	idvmetrics "idport/internal/idv/metrics"
	"idport/internal/idv/proofer"
	"idport/internal/idv/sessionstore"
	"idport/internal/idv/step"
	"idport/internal/mfa/backupcode"
	"idport/internal/notify"
	"idport/internal/platform/config"
	"idport/internal/platform/database"
	"idport/internal/platform/httpserver"
	"idport/internal/platform/kafka"
	"idport/internal/platform/logger"
	"idport/internal/platform/metrics"
	"idport/internal/platform/redis"
	"idport/internal/sso"
	transport "idport/internal/transport/http"
	"idport/internal/user"
	"idport/migrations"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logger.New()
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres is optional in development; without it everything runs on
	// in-memory stores.
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		if err := migrations.Apply(ctx, pool.DB()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var producer *kafka.Producer
	if cfg.KafkaBrokers != "" {
		producer, err = kafka.New(kafka.DefaultConfig(cfg.KafkaBrokers), log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
	}

	var users user.Store
	var codeStore backupcode.Store
	var auditStore audit.Store
	if pool != nil {
		users = user.NewPostgres(pool.DB())
		codeStore = backupcode.NewPostgres(pool.DB())
		auditStore = audit.NewPostgres(pool.DB())
	} else {
		users = user.NewMemoryStore()
		codeStore = backupcode.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
		log.Warn("no DATABASE_URL configured, using in-memory stores")
	}
	if producer != nil {
		auditStore = audit.NewMultiStore(auditStore, audit.NewKafkaStore(producer, cfg.AuditTopic))
	}
	auditor := audit.NewPublisher(auditStore)

	var sessions sessionstore.Store
	if redisClient != nil {
		sessions = sessionstore.NewRedisStore(redisClient, cfg.SessionTTL)
	} else {
		sessions = sessionstore.NewMemoryStore(cfg.SessionTTL)
	}

	var vendor proofer.Proofer
	if cfg.VendorBaseURL != "" {
		vendor = proofer.NewHTTP(cfg.VendorBaseURL, cfg.VendorTimeout)
	} else {
		vendor = proofer.MockProofer{}
		log.Warn("no VENDOR_BASE_URL configured, using the mock vendor")
	}
	vendor = proofer.WithTracing(vendor)

	procMetrics := metrics.New()
	stepSvc := step.New(
		vendor,
		attempter.New(users,
			attempter.WithMaxAttempts(cfg.IdvMaxAttempts),
			attempter.WithLogger(log),
		),
		step.WithLogger(log),
		step.WithMetrics(idvmetrics.New()),
		step.WithAuditPublisher(auditor),
		step.WithVendorTimeout(cfg.VendorTimeout),
	)

	var smsSink notify.Notifier
	if producer != nil {
		smsSink = notify.NewKafkaNotifier(producer, cfg.SMSTopic)
	} else {
		smsSink = notify.NewMemoryNotifier()
		log.Warn("no KAFKA_BROKERS configured, notifications stay in memory")
	}
	dispatcher := notify.NewDispatcher(smsSink, log, notify.WithDroppedCounter(procMetrics.NotifyDropped))
	defer dispatcher.Close()

	issuer := sso.NewIssuer([]byte(cfg.JWTSigningKey), sso.WithLogger(log))
	codes := backupcode.New(codeStore)

	health := func(r *http.Request) error {
		if pool != nil {
			if err := pool.Health(r.Context()); err != nil {
				return err
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				return err
			}
		}
		return nil
	}

	router := transport.NewRouter(log, procMetrics, health,
		transport.NewUsersHandler(users, log, procMetrics.UsersCreated),
		transport.NewIdvHandler(stepSvc, sessions, log),
		transport.NewMFAHandler(users, codes, auditor, log),
		transport.NewSSOHandler(issuer, sessions, auditor, log),
		transport.NewSignInHandler(users, notify.NewNewDeviceSignInNotifier(dispatcher), auditor, log),
	)

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", "error", err)
	}
}
